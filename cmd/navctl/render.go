package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/treeview"
)

var folderPalette = map[core.FolderColor]lipgloss.AdaptiveColor{
	core.ColorDefault: {Light: "#37474f", Dark: "#cfd8dc"},
	core.ColorBlue:    {Light: "#1565c0", Dark: "#64b5f6"},
	core.ColorGreen:   {Light: "#2e7d32", Dark: "#81c784"},
	core.ColorAmber:   {Light: "#f57c00", Dark: "#ffb74d"},
	core.ColorRed:     {Light: "#c62828", Dark: "#e57373"},
	core.ColorPurple:  {Light: "#6a1b9a", Dark: "#ba68c8"},
}

// treePrinter writes an indented tree with box-drawing branches. Colour is
// only emitted when w is a terminal.
type treePrinter struct {
	r        *lipgloss.Renderer
	expanded map[string]bool
	selected string
	showIDs  bool
}

func newTreePrinter(w io.Writer, expanded map[string]bool) *treePrinter {
	return &treePrinter{r: lipgloss.NewRenderer(w), expanded: expanded, showIDs: true}
}

func (p *treePrinter) render(tree []*treeview.TreeNode) string {
	if len(tree) == 0 {
		return p.r.NewStyle().Faint(true).Render("(empty)") + "\n"
	}
	var sb strings.Builder
	p.walk(&sb, tree, "")
	return sb.String()
}

func (p *treePrinter) walk(sb *strings.Builder, level []*treeview.TreeNode, indent string) {
	branchStyle := p.r.NewStyle().Faint(true)
	for i, tn := range level {
		last := i == len(level)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		if tn.Depth > 0 {
			sb.WriteString(branchStyle.Render(indent + branch))
		}
		sb.WriteString(p.line(tn))
		sb.WriteString("\n")
		if tn.IsFolder() && p.expanded[tn.ID] {
			childIndent := ""
			if tn.Depth > 0 {
				childIndent = indent + next
			}
			p.walk(sb, tn.Children, childIndent)
		}
	}
}

func (p *treePrinter) line(tn *treeview.TreeNode) string {
	var sb strings.Builder
	if tn.IsFolder() {
		indicator := "▸"
		if p.expanded[tn.ID] {
			indicator = "▾"
		}
		color, ok := folderPalette[tn.Color]
		if !ok {
			color = folderPalette[core.ColorDefault]
		}
		sb.WriteString(p.r.NewStyle().Foreground(color).Bold(true).Render(indicator + " " + tn.Name))
	} else {
		sb.WriteString("• " + tn.Name)
		if tn.Href != "" {
			sb.WriteString(p.r.NewStyle().Faint(true).Render(" " + tn.Href))
		}
	}
	if tn.IsOptimistic {
		sb.WriteString(p.r.NewStyle().Italic(true).Render(" (pending)"))
	}
	if p.showIDs {
		sb.WriteString(p.r.NewStyle().Faint(true).Render("  " + tn.ID))
	}
	if tn.ID == p.selected {
		sb.WriteString(" *")
	}
	return sb.String()
}
