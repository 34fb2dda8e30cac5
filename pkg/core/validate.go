package core

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxDepth is the deepest level a node may occupy (root nodes sit at depth 0).
	DefaultMaxDepth = 2
	// DefaultMaxNameLength caps node names, counted in runes.
	DefaultMaxNameLength = 100
)

var (
	// ErrInvalidParent indicates a parent that does not exist or is not a folder.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrCycleDetected indicates a move that would introduce a cycle.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrInvalidNode indicates the referenced node does not exist or is wrong type.
	ErrInvalidNode = errors.New("invalid node")
	// ErrDepthExceeded indicates a create or move past the maximum depth.
	ErrDepthExceeded = errors.New("depth limit exceeded")
	// ErrOptimisticNode indicates a structural edit touching a node still awaiting sync.
	ErrOptimisticNode = errors.New("node pending sync")
	// ErrEmptyName indicates a blank name.
	ErrEmptyName = errors.New("empty name")
	// ErrDuplicateName indicates a sibling already uses the name (case-insensitive).
	ErrDuplicateName = errors.New("duplicate name")
	// ErrIDConflict indicates a replacement ID that is already taken.
	ErrIDConflict = errors.New("id already in use")
	// ErrInvalidOrder indicates a reorder list that is not a permutation of the siblings.
	ErrInvalidOrder = errors.New("invalid sibling order")
	// ErrInvalidColor indicates a color outside the palette.
	ErrInvalidColor = errors.New("invalid color")
)

// NormalizeName trims raw and caps it at maxLen runes.
func NormalizeName(raw string, maxLen int) (string, error) {
	name := strings.TrimSpace(raw)
	if maxLen > 0 && utf8.RuneCountInString(name) > maxLen {
		name = strings.TrimSpace(string([]rune(name)[:maxLen]))
	}
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Depth counts the ancestors above id. Unknown nodes report depth 0.
func Depth(nodes map[string]Node, id string) int {
	depth := 0
	node, ok := nodes[id]
	for ok && node.ParentID != nil && depth <= len(nodes) {
		node, ok = nodes[*node.ParentID]
		if !ok {
			break
		}
		depth++
	}
	return depth
}

// IsDescendantOf walks the ancestor chain of nodeID, starting at its parent.
// A node is never its own descendant.
func IsDescendantOf(nodes map[string]Node, nodeID, ancestorID string) bool {
	node, ok := nodes[nodeID]
	if !ok {
		return false
	}
	for steps := 0; node.ParentID != nil && steps <= len(nodes); steps++ {
		if *node.ParentID == ancestorID {
			return true
		}
		node, ok = nodes[*node.ParentID]
		if !ok {
			return false
		}
	}
	return false
}

// SubtreeDepth returns how many levels sit below id (0 for a leaf).
func SubtreeDepth(nodes map[string]Node, id string) int {
	children := childIndex(nodes)
	var walk func(id string, level int) int
	walk = func(id string, level int) int {
		deepest := 0
		if level > len(nodes) {
			return deepest
		}
		for _, child := range children[id] {
			if d := 1 + walk(child, level+1); d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	return walk(id, 0)
}

// CollectSubtree returns id followed by all of its descendants, depth first.
func CollectSubtree(nodes map[string]Node, id string) []string {
	if _, ok := nodes[id]; !ok {
		return nil
	}
	children := childIndex(nodes)
	out := []string{}
	seen := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, child := range children[id] {
			walk(child)
		}
	}
	walk(id)
	return out
}

// TargetDepth is the depth a child of parentID would occupy.
func TargetDepth(nodes map[string]Node, parentID string) int {
	if parentID == RootParent {
		return 0
	}
	return Depth(nodes, parentID) + 1
}

// ValidateParent checks that a new node may be created under parentID.
func ValidateParent(nodes map[string]Node, parentID string, maxDepth int) error {
	if parentID == RootParent {
		return nil
	}
	parent, ok := nodes[parentID]
	if !ok || !parent.IsFolder() {
		return ErrInvalidParent
	}
	if Depth(nodes, parentID) >= maxDepth {
		return ErrDepthExceeded
	}
	return nil
}

// CanMoveToDepth reports whether nodeID and its whole subtree fit under targetParentID.
func CanMoveToDepth(nodes map[string]Node, nodeID, targetParentID string, maxDepth int) bool {
	return TargetDepth(nodes, targetParentID)+SubtreeDepth(nodes, nodeID) <= maxDepth
}

// ValidateMove checks structural constraints for moving id under newParentID.
// Optimistic-state checks are left to the caller.
func ValidateMove(nodes map[string]Node, id, newParentID string, maxDepth int) error {
	if _, ok := nodes[id]; !ok {
		return ErrInvalidNode
	}
	if newParentID != RootParent {
		parent, ok := nodes[newParentID]
		if !ok || !parent.IsFolder() {
			return ErrInvalidParent
		}
		if newParentID == id || IsDescendantOf(nodes, newParentID, id) {
			return ErrCycleDetected
		}
	}
	if !CanMoveToDepth(nodes, id, newParentID, maxDepth) {
		return ErrDepthExceeded
	}
	return nil
}

// HasSiblingNamed reports whether another node under parentID in product is called name,
// compared case-insensitively.
func HasSiblingNamed(nodes map[string]Node, parentID string, product Product, name, exceptID string) bool {
	for _, node := range nodes {
		if node.ID == exceptID || node.Parent() != parentID || node.Product != product {
			continue
		}
		if strings.EqualFold(node.Name, name) {
			return true
		}
	}
	return false
}

func childIndex(nodes map[string]Node) map[string][]string {
	children := make(map[string][]string)
	for _, node := range nodes {
		if node.ParentID == nil {
			continue
		}
		parent := *node.ParentID
		children[parent] = append(children[parent], node.ID)
	}
	return children
}
