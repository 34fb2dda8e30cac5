package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/config"
	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/ipc"
	"github.com/rexliu/navtree/pkg/storage/sqlite"
	gitvcs "github.com/rexliu/navtree/pkg/vcs/git"
)

type daemon struct {
	profileDir string
	cfg        *config.ProfileConfig
	store      *sqlite.Store
	repo       gitvcs.Repo
	hub        *eventHub
	logger     *zap.Logger
	started    time.Time

	// mu orders mutations so snapshots and commits follow the same sequence.
	mu sync.Mutex
}

func newDaemon(ctx context.Context, profileDir string, cfg *config.ProfileConfig, logger *zap.Logger) (*daemon, error) {
	store, err := sqlite.Open(config.ResolvePath(profileDir, cfg.Storage.DBPath), sqlite.Options{
		JournalMode:   cfg.Storage.JournalMode,
		Synchronous:   cfg.Storage.Synchronous,
		MaxDepth:      cfg.Workspace.MaxDepth,
		MaxNameLength: cfg.Workspace.MaxNameLength,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("init sqlite: %w", err), store.Close())
	}

	d := &daemon{
		profileDir: profileDir,
		cfg:        cfg,
		store:      store,
		hub:        newEventHub(logger.Named("events")),
		logger:     logger,
		started:    time.Now(),
	}
	if cfg.VCS.Enabled {
		repo := gitvcs.New(profileDir, gitvcs.Options{
			Branch:    cfg.VCS.Branch,
			Author:    cfg.VCS.Author,
			Email:     cfg.VCS.Email,
			RemoteURL: cfg.VCS.Remote.URL,
		})
		if err := repo.Init(ctx); err != nil {
			logger.Warn("git disabled", zap.Error(err))
		} else {
			d.repo = repo
		}
	}
	return d, nil
}

func (d *daemon) Close() error {
	return d.store.Close()
}

func (d *daemon) registerHandlers(srv *ipc.Server) {
	srv.Register(ipc.MethodPing, d.handlePing)
	srv.Register(ipc.MethodListNodes, d.handleListNodes)
	srv.Register(ipc.MethodCreateNode, d.handleCreateNode)
	srv.Register(ipc.MethodRenameNode, d.handleRenameNode)
	srv.Register(ipc.MethodMoveNode, d.handleMoveNode)
	srv.Register(ipc.MethodDeleteNode, d.handleDeleteNode)
	srv.Register(ipc.MethodSetColor, d.handleSetColor)
	srv.Register(ipc.MethodReorderNodes, d.handleReorderNodes)
	srv.Register(ipc.MethodGetSnapshot, d.handleGetSnapshot)
	srv.Register(ipc.MethodVCSPush, d.handleVCSPush)
	srv.Register(ipc.MethodVCSPull, d.handleVCSPull)
	srv.RegisterStream(ipc.MethodSubscribe, d.handleSubscribe)
}

func (d *daemon) handlePing(ctx context.Context, _ json.RawMessage) (any, *ipc.Error) {
	return ipc.PingResult{Version: version, Uptime: int64(time.Since(d.started).Seconds())}, nil
}

func (d *daemon) handleListNodes(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.ListNodesParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	nodes, err := d.store.ListNodes(ctx, req.Product)
	if err != nil {
		return nil, toRPCError(err)
	}
	return ipc.NodesResult{Nodes: nodes}, nil
}

func (d *daemon) handleCreateNode(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.CreateNodeParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	var created core.Node
	rpcErr := d.mutate(ctx, ipc.MethodCreateNode, req.Node.Product, func() (string, error) {
		var err error
		created, err = d.store.CreateNode(ctx, req.Node)
		return created.ID, err
	})
	if rpcErr != nil {
		return nil, rpcErr
	}
	return ipc.NodeResult{Node: created}, nil
}

func (d *daemon) handleRenameNode(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.RenameNodeParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.ID == "" {
		return nil, ipc.Errorf(ipc.CodeInvalidRequest, "id required", nil)
	}
	return ack(d.mutate(ctx, ipc.MethodRenameNode, "", func() (string, error) {
		return req.ID, d.store.RenameNode(ctx, req.ID, req.Name)
	}))
}

func (d *daemon) handleMoveNode(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.MoveNodeParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.ID == "" {
		return nil, ipc.Errorf(ipc.CodeInvalidRequest, "id required", nil)
	}
	return ack(d.mutate(ctx, ipc.MethodMoveNode, "", func() (string, error) {
		return req.ID, d.store.MoveNode(ctx, req.ID, req.ParentID, req.Index)
	}))
}

func (d *daemon) handleDeleteNode(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.DeleteNodeParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.ID == "" {
		return nil, ipc.Errorf(ipc.CodeInvalidRequest, "id required", nil)
	}
	return ack(d.mutate(ctx, ipc.MethodDeleteNode, "", func() (string, error) {
		return req.ID, d.store.DeleteNode(ctx, req.ID)
	}))
}

func (d *daemon) handleSetColor(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.SetColorParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.ID == "" {
		return nil, ipc.Errorf(ipc.CodeInvalidRequest, "id required", nil)
	}
	return ack(d.mutate(ctx, ipc.MethodSetColor, "", func() (string, error) {
		return req.ID, d.store.SetColor(ctx, req.ID, req.Color)
	}))
}

func (d *daemon) handleReorderNodes(ctx context.Context, params json.RawMessage) (any, *ipc.Error) {
	var req ipc.ReorderNodesParams
	if rpcErr := decode(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.Product == "" {
		return nil, ipc.Errorf(ipc.CodeInvalidRequest, "product required", nil)
	}
	return ack(d.mutate(ctx, ipc.MethodReorderNodes, req.Product, func() (string, error) {
		return req.ParentID, d.store.Reorder(ctx, req.Product, req.ParentID, req.IDs)
	}))
}

func (d *daemon) handleGetSnapshot(ctx context.Context, _ json.RawMessage) (any, *ipc.Error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return nil, toRPCError(err)
	}
	return snap, nil
}

func (d *daemon) handleVCSPush(ctx context.Context, _ json.RawMessage) (any, *ipc.Error) {
	if d.repo == nil {
		return nil, ipc.Errorf(ipc.CodeVCS, "git repo unavailable", nil)
	}
	if err := d.repo.Push(ctx); err != nil {
		return nil, ipc.Errorf(ipc.CodeVCS, err.Error(), nil)
	}
	return ipc.VCSResult{Status: "pushed", Branch: d.cfg.VCS.Branch}, nil
}

// handleVCSPull fast-forwards the profile repo. The snapshot file follows the
// remote; the database stays authoritative until the next mutation rewrites it.
func (d *daemon) handleVCSPull(ctx context.Context, _ json.RawMessage) (any, *ipc.Error) {
	if d.repo == nil {
		return nil, ipc.Errorf(ipc.CodeVCS, "git repo unavailable", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.repo.Pull(ctx); err != nil {
		return nil, ipc.Errorf(ipc.CodeVCS, err.Error(), nil)
	}
	d.hub.broadcast(ipc.Event{Type: ipc.EventTreeChanged, Method: ipc.MethodVCSPull, At: time.Now().UnixMilli()})
	return ipc.VCSResult{Status: "pulled", Branch: d.cfg.VCS.Branch}, nil
}

func (d *daemon) handleSubscribe(ctx context.Context, _ json.RawMessage) (<-chan []byte, *ipc.Error) {
	client := d.hub.register()
	go func() {
		<-ctx.Done()
		d.hub.unregister(client)
	}()
	return client.send, nil
}

// mutate runs fn under the daemon lock, then records the new state. A failed
// snapshot or commit is logged; the mutation itself has already succeeded.
func (d *daemon) mutate(ctx context.Context, method string, product core.Product, fn func() (string, error)) *ipc.Error {
	d.mu.Lock()
	defer d.mu.Unlock()

	nodeID, err := fn()
	if err != nil {
		d.logger.Debug("mutation rejected", zap.String("method", method), zap.String("node_id", nodeID), zap.Error(err))
		return toRPCError(err)
	}
	event := ipc.Event{Type: ipc.EventTreeChanged, Product: product, NodeID: nodeID, Method: method, At: time.Now().UnixMilli()}
	if details, err := d.record(ctx, method, nodeID); err != nil {
		d.logger.Warn("snapshot not recorded", zap.String("method", method), zap.Error(err))
	} else {
		event.Details = details
	}
	d.hub.broadcast(event)
	return nil
}

func (d *daemon) record(ctx context.Context, method, nodeID string) (map[string]any, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeSnapshot(d.profileDir, snap); err != nil {
		return nil, err
	}
	if d.repo == nil {
		return nil, nil
	}
	status, err := d.repo.Commit(ctx, fmt.Sprintf("%s %s", method, nodeID), []string{filepath.Join(d.profileDir, snapshotFile)})
	if err != nil {
		return nil, err
	}
	details := map[string]any{"committed": status.Committed, "hash": status.Hash}
	if status.Committed && d.cfg.VCS.AutoPush {
		if err := d.repo.Push(ctx); err != nil {
			d.logger.Warn("auto push failed", zap.Error(err))
			details["pushError"] = err.Error()
		}
	}
	return details, nil
}

func (d *daemon) snapshot(ctx context.Context) (ipc.Snapshot, error) {
	nodes, err := d.store.ListNodes(ctx, "")
	if err != nil {
		return ipc.Snapshot{}, err
	}
	var updated int64
	for _, node := range nodes {
		if node.UpdatedAt > updated {
			updated = node.UpdatedAt
		}
	}
	return ipc.Snapshot{Version: 1, UpdatedAt: updated, Nodes: nodes}, nil
}

func decode(params json.RawMessage, out any) *ipc.Error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return ipc.Errorf(ipc.CodeInvalidRequest, "invalid params", map[string]any{"error": err.Error()})
	}
	return nil
}

func ack(rpcErr *ipc.Error) (any, *ipc.Error) {
	if rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]any{"ok": true}, nil
}

var validationErrors = []error{
	core.ErrInvalidParent, core.ErrCycleDetected, core.ErrDepthExceeded, core.ErrOptimisticNode,
	core.ErrEmptyName, core.ErrDuplicateName, core.ErrIDConflict, core.ErrInvalidOrder, core.ErrInvalidColor,
}

func toRPCError(err error) *ipc.Error {
	if errors.Is(err, core.ErrInvalidNode) {
		return ipc.Errorf(ipc.CodeNotFound, err.Error(), nil)
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return ipc.Errorf(ipc.CodeValidationFailed, err.Error(), map[string]any{"reason": target.Error()})
		}
	}
	return ipc.Errorf(ipc.CodeStorage, err.Error(), nil)
}
