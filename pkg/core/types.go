package core

// NodeKind enumerates supported node types.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindItem   NodeKind = "item"
)

// RootParent is the parent ID used for nodes at the top of a workspace.
const RootParent = ""

// Product scopes a workspace tree to one application. Nodes never cross products.
type Product string

// FolderColor is the fixed palette a folder can be painted with.
type FolderColor string

const (
	ColorDefault FolderColor = "default"
	ColorBlue    FolderColor = "blue"
	ColorGreen   FolderColor = "green"
	ColorAmber   FolderColor = "amber"
	ColorRed     FolderColor = "red"
	ColorPurple  FolderColor = "purple"
)

// Colors lists the palette in display order.
var Colors = []FolderColor{ColorDefault, ColorBlue, ColorGreen, ColorAmber, ColorRed, ColorPurple}

// Valid reports whether c belongs to the palette.
func (c FolderColor) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// Node represents a folder or item in the workspace tree.
// Color is only meaningful for folders; Href and IconName only for items.
type Node struct {
	ID           string      `json:"id"`
	Kind         NodeKind    `json:"kind"`
	Name         string      `json:"name"`
	ParentID     *string     `json:"parentId"`
	SortOrder    int         `json:"sortOrder"`
	Product      Product     `json:"product"`
	UpdatedAt    int64       `json:"updatedAt"`
	IsOptimistic bool        `json:"isOptimistic"`
	Color        FolderColor `json:"color,omitempty"`
	Href         string      `json:"href,omitempty"`
	IconName     string      `json:"iconName,omitempty"`
}

// IsFolder reports whether the node can hold children.
func (n Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Parent returns the parent ID, or RootParent for top-level nodes.
func (n Node) Parent() string {
	if n.ParentID == nil {
		return RootParent
	}
	return *n.ParentID
}

// Clone returns a copy that shares no pointers with n.
func (n Node) Clone() Node {
	out := n
	if n.ParentID != nil {
		p := *n.ParentID
		out.ParentID = &p
	}
	return out
}

// WithParent returns a copy of n attached to parentID.
func (n Node) WithParent(parentID string) Node {
	out := n
	out.ParentID = ParentRef(parentID)
	return out
}

// ParentRef converts a parent ID into its JSON form (nil at the root).
func ParentRef(parentID string) *string {
	if parentID == RootParent {
		return nil
	}
	p := parentID
	return &p
}

// CloneNodes deep-copies a node map.
func CloneNodes(nodes map[string]Node) map[string]Node {
	out := make(map[string]Node, len(nodes))
	for id, node := range nodes {
		out[id] = node.Clone()
	}
	return out
}
