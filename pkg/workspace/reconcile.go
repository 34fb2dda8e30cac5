package workspace

import (
	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/core"
)

// ReplaceNodeID swaps a temporary ID for the server-assigned one everywhere the
// store can hold it: the node map, child parent links, every history snapshot,
// pending operations, focus pointers, the expanded set, and the root list.
// The node is no longer optimistic afterwards. It returns false when newID is
// empty or already taken by another node.
func (s *Store) ReplaceNodeID(oldID, newID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newID == core.RootParent {
		s.warn("replace id rejected", oldID, core.ErrInvalidNode)
		return false
	}
	if oldID == newID {
		s.confirmLocked(oldID)
		return true
	}
	if _, taken := s.nodes[newID]; taken {
		s.warn("replace id rejected", newID, core.ErrIDConflict)
		return false
	}

	if node, ok := s.nodes[oldID]; ok {
		node.IsOptimistic = false
		s.nodes = rekey(s.nodes, oldID, newID, node)
		s.revision++
	} else {
		s.nodes = rekey(s.nodes, oldID, newID, core.Node{})
	}
	for i, snap := range s.history {
		node, ok := snap.Nodes[oldID]
		if ok {
			node.IsOptimistic = false
		}
		s.history[i].Nodes = rekey(snap.Nodes, oldID, newID, node)
		s.history[i].RootIDs = swapID(snap.RootIDs, oldID, newID)
	}
	for i := range s.pending {
		if s.pending[i].NodeID == oldID {
			s.pending[i].NodeID = newID
		}
	}
	s.rootIDs = swapID(s.rootIDs, oldID, newID)
	if s.expanded[oldID] {
		delete(s.expanded, oldID)
		s.expanded[newID] = true
	}
	for _, ptr := range []*string{&s.selectedID, &s.editingID, &s.draggingID} {
		if *ptr == oldID {
			*ptr = newID
		}
	}
	s.logger.Debug("node id replaced", zap.String("old_id", oldID), zap.String("new_id", newID))
	return true
}

// rekey returns a copy of nodes where oldID is stored as replacement under newID
// (when present) and every parent link to oldID points at newID.
func rekey(nodes map[string]core.Node, oldID, newID string, replacement core.Node) map[string]core.Node {
	out := make(map[string]core.Node, len(nodes))
	for id, node := range nodes {
		if id == oldID {
			replacement.ID = newID
			out[newID] = replacement
			continue
		}
		if node.ParentID != nil && *node.ParentID == oldID {
			node = node.WithParent(newID)
		}
		out[id] = node
	}
	return out
}

func swapID(ids []string, oldID, newID string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if id == oldID {
			id = newID
		}
		out[i] = id
	}
	return out
}

// ConfirmOptimistic clears the optimistic flag when the server kept the client ID.
// History snapshots are updated too so undo and redo never revive the flag.
func (s *Store) ConfirmOptimistic(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmLocked(id)
}

func (s *Store) confirmLocked(id string) {
	for _, snap := range s.history {
		if node, ok := snap.Nodes[id]; ok && node.IsOptimistic {
			node.IsOptimistic = false
			snap.Nodes[id] = node
		}
	}
	node, ok := s.nodes[id]
	if !ok || !node.IsOptimistic {
		return
	}
	node.IsOptimistic = false
	s.nodes[id] = node
	s.revision++
}

// RollbackNode discards a rejected optimistic node. When the most recent undo
// step is the one that introduced id, Undo is used so history stays consistent;
// otherwise the node and its descendants are removed directly.
func (s *Store) RollbackNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return
	}
	undone := false
	if s.historyIndex >= 0 {
		if _, existed := s.history[s.historyIndex].Nodes[id]; !existed {
			undone = s.undoLocked()
		}
	}
	if !undone {
		s.removeSubtree(node)
		s.logger.Debug("node rolled back directly", zap.String("node_id", id))
	}
	for _, ptr := range []*string{&s.selectedID, &s.editingID, &s.draggingID} {
		if *ptr == id {
			*ptr = ""
		}
	}
}
