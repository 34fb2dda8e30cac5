package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rexliu/navtree/pkg/core"
)

// CreateNode stores node under a fresh server ID and returns the stored copy.
// The client-side ID, SortOrder and optimistic flag are ignored: the node is
// appended to its siblings.
func (s *Store) CreateNode(ctx context.Context, node core.Node) (core.Node, error) {
	if node.Product == "" {
		return core.Node{}, fmt.Errorf("product required: %w", core.ErrInvalidNode)
	}
	switch node.Kind {
	case core.KindFolder:
		if node.Color == "" {
			node.Color = core.ColorDefault
		}
		if !node.Color.Valid() {
			return core.Node{}, core.ErrInvalidColor
		}
		node.Href, node.IconName = "", ""
	case core.KindItem:
		node.Color = ""
	default:
		return core.Node{}, core.ErrInvalidNode
	}
	name, err := core.NormalizeName(node.Name, s.opts.MaxNameLength)
	if err != nil {
		return core.Node{}, err
	}

	var stored core.Node
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		nodes, err := loadNodes(ctx, tx, node.Product)
		if err != nil {
			return err
		}
		parentID := node.Parent()
		if err := core.ValidateParent(nodes, parentID, s.opts.MaxDepth); err != nil {
			return err
		}
		now := nowMillis()
		stored = node.WithParent(parentID)
		stored.ID = core.NewNodeID()
		stored.Name = name
		stored.SortOrder = len(core.Siblings(nodes, parentID, node.Product))
		stored.UpdatedAt = now
		stored.IsOptimistic = false
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workspace_nodes(id, product, parent_id, kind, name, color, href, icon_name, sort_order, created_at, updated_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			stored.ID, string(stored.Product), stored.ParentID, string(stored.Kind), stored.Name,
			nullable(string(stored.Color)), nullable(stored.Href), nullable(stored.IconName), stored.SortOrder, now, now)
		return err
	})
	if err != nil {
		return core.Node{}, err
	}
	return stored, nil
}

// RenameNode applies the same name rules as the client store.
func (s *Store) RenameNode(ctx context.Context, id, name string) error {
	normalized, err := core.NormalizeName(name, s.opts.MaxNameLength)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		nodes, node, err := s.loadScope(ctx, tx, id)
		if err != nil {
			return err
		}
		if node.Name == normalized {
			return nil
		}
		if core.HasSiblingNamed(nodes, node.Parent(), node.Product, normalized, id) {
			return core.ErrDuplicateName
		}
		before := core.CloneNodes(nodes)
		node.Name = normalized
		node.UpdatedAt = nowMillis()
		nodes[id] = node
		return persistChanges(ctx, tx, before, nodes)
	})
}

// SetColor repaints a folder.
func (s *Store) SetColor(ctx context.Context, id string, color core.FolderColor) error {
	if !color.Valid() {
		return core.ErrInvalidColor
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		nodes, node, err := s.loadScope(ctx, tx, id)
		if err != nil {
			return err
		}
		if !node.IsFolder() {
			return core.ErrInvalidNode
		}
		before := core.CloneNodes(nodes)
		node.Color = color
		node.UpdatedAt = nowMillis()
		nodes[id] = node
		return persistChanges(ctx, tx, before, nodes)
	})
}

// MoveNode reparents id at index (end when nil), renumbering both sibling groups.
func (s *Store) MoveNode(ctx context.Context, id, parentID string, index *int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		nodes, node, err := s.loadScope(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := core.ValidateMove(nodes, id, parentID, s.opts.MaxDepth); err != nil {
			return err
		}
		before := core.CloneNodes(nodes)
		now := nowMillis()
		core.Renumber(nodes, core.Without(core.SiblingIDs(nodes, node.Parent(), node.Product), id), now)
		target := core.Without(core.SiblingIDs(nodes, parentID, node.Product), id)
		pos := len(target)
		if index != nil {
			pos = *index
		}
		target = core.InsertAt(target, id, pos)
		moved := nodes[id].WithParent(parentID)
		moved.UpdatedAt = now
		nodes[id] = moved
		core.Renumber(nodes, target, now)
		return persistChanges(ctx, tx, before, nodes)
	})
}

// Reorder assigns sort order following ids, which must be exactly the children of parentID.
func (s *Store) Reorder(ctx context.Context, product core.Product, parentID string, ids []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		nodes, err := loadNodes(ctx, tx, product)
		if err != nil {
			return err
		}
		current := core.SiblingIDs(nodes, parentID, product)
		if len(current) != len(ids) {
			return core.ErrInvalidOrder
		}
		want := make(map[string]bool, len(current))
		for _, id := range current {
			want[id] = true
		}
		for _, id := range ids {
			if !want[id] {
				return core.ErrInvalidOrder
			}
			delete(want, id)
		}
		before := core.CloneNodes(nodes)
		core.Renumber(nodes, ids, nowMillis())
		return persistChanges(ctx, tx, before, nodes)
	})
}

// DeleteNode removes id with its descendants and closes the gap among its siblings.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		nodes, node, err := s.loadScope(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM workspace_nodes WHERE id = ?`, id)
		if err := wrapRowsAffected(res, err); err != nil {
			return err
		}
		before := core.CloneNodes(nodes)
		for _, removed := range core.CollectSubtree(nodes, id) {
			delete(nodes, removed)
		}
		core.Renumber(nodes, core.SiblingIDs(nodes, node.Parent(), node.Product), nowMillis())
		return persistChanges(ctx, tx, before, nodes)
	})
}
