package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexliu/navtree/pkg/config"
	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/ipc"
	"github.com/rexliu/navtree/pkg/storage/sqlite"
	"github.com/rexliu/navtree/pkg/treeview"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderTree(t *testing.T) {
	nodes := map[string]core.Node{
		"f1": {ID: "f1", Kind: core.KindFolder, Name: "Reports", Color: core.ColorBlue},
		"f2": {ID: "f2", Kind: core.KindFolder, Name: "Archive", SortOrder: 1},
		"i1": {ID: "i1", Kind: core.KindItem, Name: "Weekly", ParentID: core.ParentRef("f1"), Href: "/weekly"},
		"i2": {ID: "i2", Kind: core.KindItem, Name: "Monthly", ParentID: core.ParentRef("f1"), SortOrder: 1, IsOptimistic: true},
	}
	tree := treeview.Build(core.RootParent, nodes, []string{"f1", "f2"}, 0)

	var buf bytes.Buffer
	p := newTreePrinter(&buf, map[string]bool{"f1": true})
	p.showIDs = false
	p.selected = "i1"
	want := strings.Join([]string{
		"▾ Reports",
		"├── • Weekly /weekly *",
		"└── • Monthly (pending)",
		"▸ Archive",
		"",
	}, "\n")
	assert.Equal(t, want, p.render(tree))
	assert.Contains(t, p.render(nil), "(empty)")
}

func TestInitAndDiag(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "dev")
	out, err := runCmd(t, "init", "--profile", profile, "--product", "mail")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized profile dev")

	_, err = runCmd(t, "init", "--profile", profile)
	assert.ErrorContains(t, err, "already exists")

	out, err = runCmd(t, "diag", "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "Product: mail")
	assert.Contains(t, out, filepath.Join(profile, "state.db"))
}

func TestCommandsNeedProfile(t *testing.T) {
	_, err := runCmd(t, "tree", "--profile", filepath.Join(t.TempDir(), "none"))
	assert.ErrorContains(t, err, "navctl init")
}

// serveBackend exposes a SQLite store over a socket with just the calls the
// create path needs.
func serveBackend(t *testing.T, profile string) {
	t.Helper()
	cfg := config.DefaultProfile("dev")
	require.NoError(t, config.Save(filepath.Join(profile, config.FileName), cfg))

	db, err := sqlite.Open(filepath.Join(profile, "state.db"), sqlite.Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, db.Init(ctx))

	srv := ipc.NewServer(nil)
	srv.Register(ipc.MethodListNodes, func(ctx context.Context, raw json.RawMessage) (any, *ipc.Error) {
		var p ipc.ListNodesParams
		_ = json.Unmarshal(raw, &p)
		nodes, err := db.ListNodes(ctx, p.Product)
		if err != nil {
			return nil, ipc.Errorf(ipc.CodeStorage, err.Error(), nil)
		}
		return ipc.NodesResult{Nodes: nodes}, nil
	})
	srv.Register(ipc.MethodCreateNode, func(ctx context.Context, raw json.RawMessage) (any, *ipc.Error) {
		var p ipc.CreateNodeParams
		_ = json.Unmarshal(raw, &p)
		node, err := db.CreateNode(ctx, p.Node)
		if err != nil {
			return nil, ipc.Errorf(ipc.CodeValidationFailed, err.Error(), nil)
		}
		return ipc.NodeResult{Node: node}, nil
	})
	require.NoError(t, srv.Start(ctx, filepath.Join(profile, cfg.IPC.SocketPath)))
	t.Cleanup(func() {
		cancel()
		srv.Stop()
		db.Close()
	})
}

func TestMkdirAndAddThroughDaemon(t *testing.T) {
	profile, err := os.MkdirTemp("", "navctl")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(profile) })
	serveBackend(t, profile)

	out, err := runCmd(t, "mkdir", "Reports", "--color", "green", "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "▾ Reports")
	assert.NotContains(t, out, core.TempIDPrefix)

	out, err = runCmd(t, "tree", "--profile", profile, "--json")
	require.NoError(t, err)
	var tree []*treeview.TreeNode
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, core.ColorGreen, tree[0].Color)

	out, err = runCmd(t, "add", "Weekly", "--parent", tree[0].ID, "--href", "/weekly", "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "└── • Weekly /weekly")

	_, err = runCmd(t, "mkdir", "   ", "--parent", "missing", "--profile", profile)
	assert.ErrorContains(t, err, "rejected")
}
