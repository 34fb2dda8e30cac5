package workspace

// ToggleExpand flips the expanded state of a folder.
func (s *Store) ToggleExpand(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok || !node.IsFolder() {
		return
	}
	if s.expanded[id] {
		delete(s.expanded, id)
		return
	}
	s.expanded[id] = true
}

// ExpandAll expands every folder.
func (s *Store) ExpandAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, node := range s.nodes {
		if node.IsFolder() {
			s.expanded[id] = true
		}
	}
}

// CollapseAll collapses every folder.
func (s *Store) CollapseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded = make(map[string]bool)
}

// ExpandedIDs lists expanded folders in lexical order.
func (s *Store) ExpandedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.expanded)
}

// SetSelected points selection at id; "" clears it.
func (s *Store) SetSelected(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFocus(&s.selectedID, id)
}

// SetEditing marks id as being renamed inline; "" clears it.
func (s *Store) SetEditing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFocus(&s.editingID, id)
}

// SetDragging marks id as being dragged; "" clears it.
func (s *Store) SetDragging(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFocus(&s.draggingID, id)
}

// Unknown IDs leave the pointer unchanged.
func (s *Store) setFocus(ptr *string, id string) {
	if id == "" {
		*ptr = ""
		return
	}
	if _, ok := s.nodes[id]; ok {
		*ptr = id
	}
}
