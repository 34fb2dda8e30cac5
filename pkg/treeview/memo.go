package treeview

import (
	"sync"

	"github.com/rexliu/navtree/pkg/workspace"
)

// Memo caches the nested tree for a store and rebuilds it only when the
// store revision changes.
type Memo struct {
	mu       sync.Mutex
	store    *workspace.Store
	revision uint64
	built    bool
	tree     []*TreeNode
}

// NewMemo binds a memo to store.
func NewMemo(store *workspace.Store) *Memo {
	return &Memo{store: store}
}

// Tree returns the nested tree for the current store state. Callers must
// treat the result as read-only; it is shared between calls.
func (m *Memo) Tree() []*TreeNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built && m.store.Revision() == m.revision {
		return m.tree
	}
	st := m.store.State()
	m.tree = Build("", st.Nodes, st.RootIDs, 0)
	m.revision = st.Revision
	m.built = true
	return m.tree
}

// Visible returns the IDs a keyboard cursor can land on right now.
func (m *Memo) Visible() []string {
	tree := m.Tree()
	return VisibleNodeIDs(tree, m.store.State().ExpandedFolderIDs)
}
