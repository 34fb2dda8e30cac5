// Package workspace holds the in-memory navigation tree for one product:
// folders and items, UI focus pointers, bounded undo/redo history, and the
// bookkeeping needed to reconcile optimistic nodes with a backend.
package workspace

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/core"
)

const (
	// DefaultMaxHistory bounds the number of undo snapshots.
	DefaultMaxHistory = 50
)

// Options configures a Store. Zero values fall back to package defaults.
type Options struct {
	MaxDepth      int
	MaxHistory    int
	MaxNameLength int
	Logger        *zap.Logger
	// Now overrides the clock; used by tests.
	Now func() time.Time
	// NewID overrides temp-ID generation; used by tests.
	NewID func() string
}

// Store is the single source of truth for a workspace tree. All methods are
// safe to call from multiple goroutines, but the store assumes one logical
// writer: actions apply in call order and history records that order.
type Store struct {
	mu sync.Mutex

	maxDepth      int
	maxHistory    int
	maxNameLength int
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string

	product  core.Product
	nodes    map[string]core.Node
	rootIDs  []string
	revision uint64

	expanded   map[string]bool
	selectedID string
	editingID  string
	draggingID string

	history      []Snapshot
	historyIndex int

	pending      []PendingOperation
	syncStatus   SyncStatus
	syncError    string
	lastSyncedAt int64
}

// State is a read-only copy of everything the store tracks.
type State struct {
	Product           core.Product         `json:"product"`
	Nodes             map[string]core.Node `json:"nodes"`
	RootIDs           []string             `json:"rootIds"`
	ExpandedFolderIDs map[string]bool      `json:"expandedFolderIds"`
	SelectedNodeID    string               `json:"selectedNodeId,omitempty"`
	EditingNodeID     string               `json:"editingNodeId,omitempty"`
	DraggingNodeID    string               `json:"draggingNodeId,omitempty"`
	PendingOperations []PendingOperation   `json:"pendingOperations"`
	SyncStatus        SyncStatus           `json:"syncStatus"`
	SyncError         string               `json:"syncError,omitempty"`
	LastSyncedAt      int64                `json:"lastSyncedAt,omitempty"`
	Revision          uint64               `json:"revision"`
}

// NewStore constructs an empty store.
func NewStore(opts Options) *Store {
	s := &Store{
		maxDepth:      opts.MaxDepth,
		maxHistory:    opts.MaxHistory,
		maxNameLength: opts.MaxNameLength,
		logger:        opts.Logger,
		now:           opts.Now,
		newID:         opts.NewID,
	}
	if s.maxDepth <= 0 {
		s.maxDepth = core.DefaultMaxDepth
	}
	if s.maxHistory <= 0 {
		s.maxHistory = DefaultMaxHistory
	}
	if s.maxNameLength <= 0 {
		s.maxNameLength = core.DefaultMaxNameLength
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = core.NewTempID
	}
	s.resetLocked()
	return s
}

// MaxDepth reports the deepest level a node may occupy.
func (s *Store) MaxDepth() int {
	return s.maxDepth
}

// Initialize replaces the tree with nodes for product and clears history.
// Expanded folders and focus pointers survive when their nodes still exist,
// so repeated calls after a re-fetch do not disturb the UI.
func (s *Store) Initialize(nodes []core.Node, product core.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]core.Node, len(nodes))
	for _, node := range nodes {
		next[node.ID] = node.Clone()
	}
	s.product = product
	s.nodes = next
	s.rebuildRootIDs()
	s.history = nil
	s.historyIndex = -1

	for id := range s.expanded {
		if node, ok := s.nodes[id]; !ok || !node.IsFolder() {
			delete(s.expanded, id)
		}
	}
	s.selectedID = s.existingOrEmpty(s.selectedID)
	s.editingID = s.existingOrEmpty(s.editingID)
	s.draggingID = s.existingOrEmpty(s.draggingID)
	s.revision++
	s.logger.Debug("workspace initialized", zap.String("product", string(product)), zap.Int("nodes", len(next)))
}

// Reset restores the empty initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.revision++
}

func (s *Store) resetLocked() {
	s.product = ""
	s.nodes = make(map[string]core.Node)
	s.rootIDs = nil
	s.expanded = make(map[string]bool)
	s.selectedID = ""
	s.editingID = ""
	s.draggingID = ""
	s.history = nil
	s.historyIndex = -1
	s.pending = nil
	s.syncStatus = SyncIdle
	s.syncError = ""
	s.lastSyncedAt = 0
}

// State returns a copy of the current workspace state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	expanded := make(map[string]bool, len(s.expanded))
	for id := range s.expanded {
		expanded[id] = true
	}
	return State{
		Product:           s.product,
		Nodes:             core.CloneNodes(s.nodes),
		RootIDs:           append([]string(nil), s.rootIDs...),
		ExpandedFolderIDs: expanded,
		SelectedNodeID:    s.selectedID,
		EditingNodeID:     s.editingID,
		DraggingNodeID:    s.draggingID,
		PendingOperations: append([]PendingOperation(nil), s.pending...),
		SyncStatus:        s.syncStatus,
		SyncError:         s.syncError,
		LastSyncedAt:      s.lastSyncedAt,
		Revision:          s.revision,
	}
}

// GetNode returns a copy of the node with id.
func (s *Store) GetNode(id string) (core.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	return node.Clone(), ok
}

// Product returns the scope the store was initialized with.
func (s *Store) Product() core.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product
}

// Revision increases whenever the node map or root order changes.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Store) existingOrEmpty(id string) string {
	if _, ok := s.nodes[id]; ok {
		return id
	}
	return ""
}

func (s *Store) stamp() int64 {
	return s.now().UnixMilli()
}

// rebuildRootIDs derives the root list from the node map, ordered by SortOrder.
func (s *Store) rebuildRootIDs() {
	roots := make([]core.Node, 0)
	for _, node := range s.nodes {
		if node.ParentID == nil {
			roots = append(roots, node)
		}
	}
	core.SortSiblings(roots)
	ids := make([]string, len(roots))
	for i, node := range roots {
		ids[i] = node.ID
	}
	s.rootIDs = ids
}

func (s *Store) warn(msg string, id string, err error) {
	s.logger.Warn(msg, zap.String("node_id", id), zap.String("reason", err.Error()))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for id := range set {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
