package workspace

import "github.com/rexliu/navtree/pkg/core"

// GetChildren returns the children of parentID (RootParent for the top level), sorted.
func (s *Store) GetChildren(parentID string) []core.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parentID == core.RootParent {
		out := make([]core.Node, 0, len(s.rootIDs))
		for _, id := range s.rootIDs {
			if node, ok := s.nodes[id]; ok {
				out = append(out, node.Clone())
			}
		}
		return out
	}
	children := core.Siblings(s.nodes, parentID, s.product)
	for i := range children {
		children[i] = children[i].Clone()
	}
	return children
}

// GetDepth counts the folders above id.
func (s *Store) GetDepth(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Depth(s.nodes, id)
}

// CanMoveToDepth reports whether nodeID's subtree fits under targetParentID.
func (s *Store) CanMoveToDepth(nodeID, targetParentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CanMoveToDepth(s.nodes, nodeID, targetParentID, s.maxDepth)
}

// IsDescendantOf reports whether ancestorID appears above nodeID.
func (s *Store) IsDescendantOf(nodeID, ancestorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.IsDescendantOf(s.nodes, nodeID, ancestorID)
}
