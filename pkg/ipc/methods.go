package ipc

import "github.com/rexliu/navtree/pkg/core"

// Methods served by the daemon.
const (
	MethodPing         = "ping"
	MethodListNodes    = "list_nodes"
	MethodCreateNode   = "create_node"
	MethodRenameNode   = "rename_node"
	MethodMoveNode     = "move_node"
	MethodDeleteNode   = "delete_node"
	MethodSetColor     = "set_color"
	MethodReorderNodes = "reorder_nodes"
	MethodGetSnapshot  = "get_snapshot"
	MethodVCSPush      = "vcs_push"
	MethodVCSPull      = "vcs_pull"
	MethodSubscribe    = "subscribe_events"
)

// EventTreeChanged is broadcast after every accepted mutation.
const EventTreeChanged = "tree_changed"

type PingResult struct {
	Version string `json:"version"`
	Uptime  int64  `json:"uptimeSeconds"`
}

type ListNodesParams struct {
	Product core.Product `json:"product,omitempty"`
}

type NodesResult struct {
	Nodes []core.Node `json:"nodes"`
}

type CreateNodeParams struct {
	Node core.Node `json:"node"`
}

type NodeResult struct {
	Node core.Node `json:"node"`
}

type RenameNodeParams struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MoveNodeParams struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

type DeleteNodeParams struct {
	ID string `json:"id"`
}

type SetColorParams struct {
	ID    string           `json:"id"`
	Color core.FolderColor `json:"color"`
}

type ReorderNodesParams struct {
	Product  core.Product `json:"product"`
	ParentID string       `json:"parentId,omitempty"`
	IDs      []string     `json:"ids"`
}

// Snapshot is the persisted form of the whole node table.
type Snapshot struct {
	Version   int         `json:"version"`
	UpdatedAt int64       `json:"updatedAt"`
	Nodes     []core.Node `json:"nodes"`
}

type VCSResult struct {
	Status string `json:"status"`
	Branch string `json:"branch,omitempty"`
}

// Event is a single frame of the subscribe_events stream.
type Event struct {
	Type    string         `json:"type"`
	Product core.Product   `json:"product,omitempty"`
	NodeID  string         `json:"nodeId,omitempty"`
	Method  string         `json:"method,omitempty"`
	At      int64          `json:"at"`
	Details map[string]any `json:"details,omitempty"`
}
