package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/syncer"
	"github.com/rexliu/navtree/pkg/treeview"
)

// printTree renders the whole workspace, every folder expanded.
func printTree(w io.Writer, s *session, selected string) {
	s.store.ExpandAll()
	memo := treeview.NewMemo(s.store)
	p := newTreePrinter(w, s.store.State().ExpandedFolderIDs)
	p.selected = selected
	fmt.Fprint(w, p.render(memo.Tree()))
}

func newTreeCmd(app *App) *cobra.Command {
	var asJSON, collapsed, hideIDs bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the navigation tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := app.context(cmd)
			defer cancel()
			s, err := app.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if !collapsed {
				s.store.ExpandAll()
			}
			state := s.store.State()
			tree := treeview.Build(core.RootParent, state.Nodes, state.RootIDs, 0)
			if asJSON {
				raw, err := json.MarshalIndent(tree, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(raw))
				return nil
			}
			p := newTreePrinter(out, state.ExpandedFolderIDs)
			p.showIDs = !hideIDs
			fmt.Fprint(out, p.render(tree))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the nested tree as JSON")
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "Show top-level nodes only")
	cmd.Flags().BoolVar(&hideIDs, "no-ids", false, "Hide node IDs")
	return cmd
}

func newMkdirCmd(app *App) *cobra.Command {
	var parent, color string
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(s *session) (string, error) {
				return s.sync.CreateFolder(cmd.Context(), parent, args[0], core.FolderColor(color))
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder ID (top level when empty)")
	cmd.Flags().StringVar(&color, "color", string(core.ColorDefault), "Folder color: "+colorNames())
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var parent, href, icon string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a navigation item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(s *session) (string, error) {
				return s.sync.CreateItem(cmd.Context(), parent, args[0], href, icon)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder ID (top level when empty)")
	cmd.Flags().StringVar(&href, "href", "", "Link target")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(s *session) (string, error) {
				return args[0], s.sync.Rename(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	var parent string
	var index int
	cmd := &cobra.Command{
		Use:   "mv <id>",
		Short: "Move a node under another folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var at *int
			if cmd.Flags().Changed("index") {
				at = &index
			}
			return app.mutate(cmd, func(s *session) (string, error) {
				return args[0], s.sync.Move(cmd.Context(), args[0], parent, at)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "New parent folder ID (top level when empty)")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the new siblings (appends when omitted)")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a node and everything below it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(s *session) (string, error) {
				return "", s.sync.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func newColorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "color <id> <color>",
		Short: "Set a folder color (" + colorNames() + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(s *session) (string, error) {
				return args[0], s.sync.SetColor(cmd.Context(), args[0], core.FolderColor(args[1]))
			})
		},
	}
}

func newReorderCmd(app *App) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the order of every child of a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(s *session) (string, error) {
				return "", s.sync.Reorder(cmd.Context(), parent, args)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Folder whose children are listed (top level when empty)")
	return cmd
}

// mutate opens a session, applies fn through the syncer and prints the
// resulting tree with the affected node marked.
func (a *App) mutate(cmd *cobra.Command, fn func(s *session) (string, error)) error {
	ctx, cancel := a.context(cmd)
	defer cancel()
	cmd.SetContext(ctx)

	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := fn(s)
	if err != nil {
		return describe(err, a.Verbose)
	}
	printTree(cmd.OutOrStdout(), s, id)
	return nil
}

// describe points local rejections at the store's warnings, which name the reason.
func describe(err error, verbose bool) error {
	if errors.Is(err, syncer.ErrRejected) && !verbose {
		return fmt.Errorf("%w (rerun with --verbose for the reason)", err)
	}
	return err
}

func colorNames() string {
	names := make([]string, len(core.Colors))
	for i, c := range core.Colors {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
