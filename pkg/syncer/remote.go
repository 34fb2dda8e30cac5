package syncer

import (
	"context"

	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/ipc"
)

// RemoteBackend talks to the daemon over its socket.
type RemoteBackend struct {
	client *ipc.Client
}

// NewRemoteBackend wraps an established client.
func NewRemoteBackend(client *ipc.Client) *RemoteBackend {
	return &RemoteBackend{client: client}
}

func (r *RemoteBackend) ListNodes(ctx context.Context, product core.Product) ([]core.Node, error) {
	var result ipc.NodesResult
	if err := r.client.Call(ctx, ipc.MethodListNodes, ipc.ListNodesParams{Product: product}, &result); err != nil {
		return nil, err
	}
	return result.Nodes, nil
}

func (r *RemoteBackend) CreateNode(ctx context.Context, node core.Node) (core.Node, error) {
	var result ipc.NodeResult
	if err := r.client.Call(ctx, ipc.MethodCreateNode, ipc.CreateNodeParams{Node: node}, &result); err != nil {
		return core.Node{}, err
	}
	return result.Node, nil
}

func (r *RemoteBackend) RenameNode(ctx context.Context, id, name string) error {
	return r.client.Call(ctx, ipc.MethodRenameNode, ipc.RenameNodeParams{ID: id, Name: name}, nil)
}

func (r *RemoteBackend) MoveNode(ctx context.Context, id, parentID string, index *int) error {
	return r.client.Call(ctx, ipc.MethodMoveNode, ipc.MoveNodeParams{ID: id, ParentID: parentID, Index: index}, nil)
}

func (r *RemoteBackend) DeleteNode(ctx context.Context, id string) error {
	return r.client.Call(ctx, ipc.MethodDeleteNode, ipc.DeleteNodeParams{ID: id}, nil)
}

func (r *RemoteBackend) SetColor(ctx context.Context, id string, color core.FolderColor) error {
	return r.client.Call(ctx, ipc.MethodSetColor, ipc.SetColorParams{ID: id, Color: color}, nil)
}

func (r *RemoteBackend) Reorder(ctx context.Context, product core.Product, parentID string, ids []string) error {
	return r.client.Call(ctx, ipc.MethodReorderNodes, ipc.ReorderNodesParams{Product: product, ParentID: parentID, IDs: ids}, nil)
}
