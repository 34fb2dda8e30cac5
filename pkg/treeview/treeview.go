// Package treeview projects a flat workspace node map into nested and
// flattened forms for rendering and keyboard navigation. Nothing here mutates
// its inputs.
package treeview

import (
	"github.com/rexliu/navtree/pkg/core"
)

// TreeNode is one node with its nested children. Items never have children.
type TreeNode struct {
	core.Node
	Depth    int         `json:"depth"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Build nests the children of parentID. Root children come from rootIDs in list
// order; deeper levels are gathered from nodes by parent link and sorted. Only
// folders are recursed into.
func Build(parentID string, nodes map[string]core.Node, rootIDs []string, depth int) []*TreeNode {
	var level []core.Node
	if parentID == core.RootParent {
		for _, id := range rootIDs {
			if node, ok := nodes[id]; ok {
				level = append(level, node)
			}
		}
	} else {
		for _, node := range nodes {
			if node.Parent() == parentID {
				level = append(level, node)
			}
		}
		core.SortSiblings(level)
	}

	out := make([]*TreeNode, 0, len(level))
	for _, node := range level {
		tn := &TreeNode{Node: node.Clone(), Depth: depth}
		if node.IsFolder() {
			tn.Children = Build(node.ID, nodes, rootIDs, depth+1)
		}
		out = append(out, tn)
	}
	return out
}

// Flatten walks tree depth-first, descending into a folder only when it is expanded.
func Flatten(tree []*TreeNode, expanded map[string]bool) []*TreeNode {
	out := make([]*TreeNode, 0)
	var walk func(level []*TreeNode)
	walk = func(level []*TreeNode) {
		for _, tn := range level {
			out = append(out, tn)
			if tn.IsFolder() && expanded[tn.ID] {
				walk(tn.Children)
			}
		}
	}
	walk(tree)
	return out
}

// VisibleNodeIDs is Flatten reduced to IDs, in display order.
func VisibleNodeIDs(tree []*TreeNode, expanded map[string]bool) []string {
	rows := Flatten(tree, expanded)
	ids := make([]string, len(rows))
	for i, tn := range rows {
		ids[i] = tn.ID
	}
	return ids
}

// Next returns the visible ID after current, or current when it is last.
// An unknown current selects the first visible node.
func Next(visible []string, current string) string {
	return step(visible, current, 1)
}

// Prev returns the visible ID before current, or current when it is first.
func Prev(visible []string, current string) string {
	return step(visible, current, -1)
}

func step(visible []string, current string, delta int) string {
	if len(visible) == 0 {
		return ""
	}
	for i, id := range visible {
		if id != current {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(visible) {
			return current
		}
		return visible[j]
	}
	return visible[0]
}
