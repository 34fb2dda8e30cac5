package workspace

import (
	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/core"
)

const (
	defaultFolderName = "New Folder"
	defaultItemName   = "New Item"
)

// CreateFolder adds an optimistic folder under parentID (RootParent for the top level).
// It returns the temporary ID, or "" when the parent is unknown, not a folder,
// or already at the maximum depth.
func (s *Store) CreateFolder(parentID, name string, color core.FolderColor) string {
	if color == "" || !color.Valid() {
		color = core.ColorDefault
	}
	return s.create(core.Node{
		Kind:  core.KindFolder,
		Name:  name,
		Color: color,
	}, parentID, defaultFolderName)
}

// CreateItem adds an optimistic item linking to href. See CreateFolder for the result.
func (s *Store) CreateItem(parentID, name, href, iconName string) string {
	return s.create(core.Node{
		Kind:     core.KindItem,
		Name:     name,
		Href:     href,
		IconName: iconName,
	}, parentID, defaultItemName)
}

func (s *Store) create(node core.Node, parentID, fallbackName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := core.ValidateParent(s.nodes, parentID, s.maxDepth); err != nil {
		s.warn("create rejected", parentID, err)
		return ""
	}
	name, err := core.NormalizeName(node.Name, s.maxNameLength)
	if err != nil {
		name = fallbackName
	}

	s.pushHistory("create_" + string(node.Kind))

	node.ID = s.newID()
	node.Name = name
	node.ParentID = core.ParentRef(parentID)
	node.SortOrder = len(core.Siblings(s.nodes, parentID, s.product))
	node.Product = s.product
	node.UpdatedAt = s.stamp()
	node.IsOptimistic = true
	s.nodes[node.ID] = node
	s.rebuildRootIDs()
	s.revision++

	if parentID != core.RootParent {
		s.expanded[parentID] = true
	}
	s.selectedID = node.ID
	s.editingID = node.ID
	return node.ID
}

// Rename trims and caps name, then applies it. It fails on unknown nodes,
// blank names, and names already used by a sibling (case-insensitive).
// Renaming to the current name only ends editing.
func (s *Store) Rename(id, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return false
	}
	normalized, err := core.NormalizeName(name, s.maxNameLength)
	if err != nil {
		s.warn("rename rejected", id, err)
		return false
	}
	if normalized == node.Name {
		s.editingID = ""
		return true
	}
	if core.HasSiblingNamed(s.nodes, node.Parent(), node.Product, normalized, id) {
		s.warn("rename rejected", id, core.ErrDuplicateName)
		return false
	}

	s.pushHistory("rename")
	node.Name = normalized
	node.UpdatedAt = s.stamp()
	s.nodes[id] = node
	s.editingID = ""
	s.revision++
	return true
}

// DeleteNode removes id and, for folders, every descendant. Remaining siblings
// are renumbered from 0.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return
	}
	s.pushHistory("delete")
	s.removeSubtree(node)
	if s.selectedID == id {
		s.selectedID = ""
	}
}

// removeSubtree deletes node and its descendants without touching history.
func (s *Store) removeSubtree(node core.Node) {
	ids := []string{node.ID}
	if node.IsFolder() {
		ids = core.CollectSubtree(s.nodes, node.ID)
	}
	for _, removed := range ids {
		delete(s.nodes, removed)
		delete(s.expanded, removed)
		if s.editingID == removed {
			s.editingID = ""
		}
		if s.draggingID == removed {
			s.draggingID = ""
		}
	}
	core.Renumber(s.nodes, core.SiblingIDs(s.nodes, node.Parent(), node.Product), s.stamp())
	s.rebuildRootIDs()
	s.revision++
}

// SetColor repaints a folder. Items and unknown IDs are ignored.
func (s *Store) SetColor(id string, color core.FolderColor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok || !node.IsFolder() {
		return
	}
	if !color.Valid() {
		s.warn("color rejected", id, core.ErrInvalidColor)
		return
	}
	s.pushHistory("set_color")
	node.Color = color
	node.UpdatedAt = s.stamp()
	s.nodes[id] = node
	s.revision++
}

// Reorder assigns SortOrder 0..n-1 to orderedIDs under parentID. The list must
// be exactly the current children of parentID. Reordering is refused while any
// listed node is still optimistic.
func (s *Store) Reorder(parentID string, orderedIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range orderedIDs {
		if node, ok := s.nodes[id]; ok && node.IsOptimistic {
			s.warn("reorder blocked", id, core.ErrOptimisticNode)
			return false
		}
	}
	if !samePermutation(core.SiblingIDs(s.nodes, parentID, s.product), orderedIDs) {
		s.warn("reorder rejected", parentID, core.ErrInvalidOrder)
		return false
	}

	s.pushHistory("reorder")
	core.Renumber(s.nodes, orderedIDs, s.stamp())
	if parentID == core.RootParent {
		s.rebuildRootIDs()
	}
	s.revision++
	return true
}

// Move reparents id under newParentID (RootParent for the top level) at
// insertIndex, or at the end when insertIndex is nil. Out-of-range indexes
// are clamped. Moves involving optimistic nodes, cycles, or depth overflow fail.
func (s *Store) Move(id, newParentID string, insertIndex *int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return false
	}
	if node.IsOptimistic {
		s.warn("move blocked", id, core.ErrOptimisticNode)
		return false
	}
	if parent, ok := s.nodes[newParentID]; ok && parent.IsOptimistic {
		s.warn("move blocked", newParentID, core.ErrOptimisticNode)
		return false
	}
	if err := core.ValidateMove(s.nodes, id, newParentID, s.maxDepth); err != nil {
		s.warn("move rejected", id, err)
		return false
	}

	s.pushHistory("move")
	now := s.stamp()
	oldParentID := node.Parent()

	core.Renumber(s.nodes, core.Without(core.SiblingIDs(s.nodes, oldParentID, node.Product), id), now)

	target := core.Without(core.SiblingIDs(s.nodes, newParentID, node.Product), id)
	index := len(target)
	if insertIndex != nil {
		index = *insertIndex
	}
	target = core.InsertAt(target, id, index)

	node = s.nodes[id].WithParent(newParentID)
	node.UpdatedAt = now
	s.nodes[id] = node
	core.Renumber(s.nodes, target, now)

	s.rebuildRootIDs()
	s.revision++
	s.logger.Debug("node moved",
		zap.String("node_id", id),
		zap.String("from", oldParentID),
		zap.String("to", newParentID),
		zap.Int("index", s.nodes[id].SortOrder))
	return true
}

func samePermutation(current, proposed []string) bool {
	if len(current) != len(proposed) {
		return false
	}
	seen := make(map[string]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	for _, id := range proposed {
		if !seen[id] {
			return false
		}
		delete(seen, id)
	}
	return true
}
