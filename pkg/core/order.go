package core

import "sort"

// SortSiblings orders nodes by SortOrder, breaking ties by ID so renders stay stable.
func SortSiblings(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// Siblings returns the children of parentID within product, sorted.
func Siblings(nodes map[string]Node, parentID string, product Product) []Node {
	out := make([]Node, 0)
	for _, node := range nodes {
		if node.Parent() == parentID && node.Product == product {
			out = append(out, node)
		}
	}
	SortSiblings(out)
	return out
}

// SiblingIDs is Siblings reduced to IDs.
func SiblingIDs(nodes map[string]Node, parentID string, product Product) []string {
	sibs := Siblings(nodes, parentID, product)
	ids := make([]string, len(sibs))
	for i, node := range sibs {
		ids[i] = node.ID
	}
	return ids
}

// Renumber assigns SortOrder 0..len(ids)-1 following ids.
// Nodes whose order changes also get UpdatedAt = now.
func Renumber(nodes map[string]Node, ids []string, now int64) {
	for i, id := range ids {
		node, ok := nodes[id]
		if !ok || node.SortOrder == i {
			continue
		}
		node.SortOrder = i
		node.UpdatedAt = now
		nodes[id] = node
	}
}

// InsertAt places id into ids at index, clamping index into [0, len(ids)].
func InsertAt(ids []string, id string, index int) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}

// Without returns ids minus every occurrence of id.
func Without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// IsContiguous reports whether every sibling group holds SortOrder values 0..n-1.
func IsContiguous(nodes map[string]Node) bool {
	type groupKey struct {
		parent  string
		product Product
	}
	groups := make(map[groupKey][]int)
	for _, node := range nodes {
		key := groupKey{parent: node.Parent(), product: node.Product}
		groups[key] = append(groups[key], node.SortOrder)
	}
	for _, orders := range groups {
		sort.Ints(orders)
		for i, ord := range orders {
			if ord != i {
				return false
			}
		}
	}
	return true
}
