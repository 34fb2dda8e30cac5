package workspace

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rexliu/navtree/pkg/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	seq := 0
	clock := time.UnixMilli(1_700_000_000_000)
	return NewStore(Options{
		Now: func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("%s%d", core.TempIDPrefix, seq)
		},
	})
}

func folder(id, parent string, order int) core.Node {
	return core.Node{ID: id, Kind: core.KindFolder, Name: id, ParentID: core.ParentRef(parent), SortOrder: order, Product: "flow", Color: core.ColorDefault}
}

func item(id, parent string, order int) core.Node {
	return core.Node{ID: id, Kind: core.KindItem, Name: id, ParentID: core.ParentRef(parent), SortOrder: order, Product: "flow", Href: "/" + id}
}

func childIDs(nodes []core.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func intPtr(v int) *int { return &v }

func TestInitializeAndChildren(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0), item("X", "A", 0)}, "flow")

	assert.Equal(t, []string{"A"}, childIDs(s.GetChildren(core.RootParent)))
	assert.Equal(t, []string{"X"}, childIDs(s.GetChildren("A")))
	assert.Equal(t, 1, s.GetDepth("X"))
	assert.False(t, s.CanUndo())

	// Re-initializing keeps surviving focus and expansion.
	s.ToggleExpand("A")
	s.SetSelected("X")
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	st := s.State()
	assert.True(t, st.ExpandedFolderIDs["A"])
	assert.Empty(t, st.SelectedNodeID)
}

func TestInitializeOrdersRootsBySortOrder(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("B", "", 1), folder("C", "", 2), folder("A", "", 0)}, "flow")
	assert.Equal(t, []string{"A", "B", "C"}, s.State().RootIDs)
}

func TestCreateFolderOnEmptyStore(t *testing.T) {
	s := newTestStore(t)
	id := s.CreateFolder(core.RootParent, "Reports", "")

	require.True(t, strings.HasPrefix(id, core.TempIDPrefix))
	st := s.State()
	assert.Equal(t, id, st.EditingNodeID)
	assert.Equal(t, id, st.SelectedNodeID)
	assert.True(t, s.CanUndo())
	node := st.Nodes[id]
	assert.True(t, node.IsOptimistic)
	assert.Equal(t, "Reports", node.Name)
	assert.Equal(t, core.ColorDefault, node.Color)
	assert.Equal(t, []string{id}, st.RootIDs)
}

func TestCreateExpandsParentAndAppends(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("F", "", 0), item("a", "F", 0)}, "flow")

	id := s.CreateItem("F", "  Dashboard ", "/dash", "chart")
	require.NotEmpty(t, id)
	node, ok := s.GetNode(id)
	require.True(t, ok)
	assert.Equal(t, "Dashboard", node.Name)
	assert.Equal(t, 1, node.SortOrder)
	assert.Equal(t, "chart", node.IconName)
	assert.Equal(t, core.Product("flow"), node.Product)
	assert.Contains(t, s.ExpandedIDs(), "F")

	blank := s.CreateFolder(core.RootParent, "   ", core.ColorBlue)
	node, _ = s.GetNode(blank)
	assert.Equal(t, defaultFolderName, node.Name)
	assert.Equal(t, core.ColorBlue, node.Color)
}

func TestCreateRejectsDepthAndBadParent(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("R", "", 0), folder("F", "R", 0), folder("C", "F", 0), item("I", "R", 1)}, "flow")
	s.SetSelected("R")
	before := s.State()

	assert.Empty(t, s.CreateFolder("C", "Too Deep", ""))
	assert.Empty(t, s.CreateItem("I", "under item", "/x", ""))
	assert.Empty(t, s.CreateItem("missing", "orphan", "/x", ""))

	after := s.State()
	assert.Equal(t, before.Nodes, after.Nodes)
	assert.Equal(t, "R", after.SelectedNodeID)
	assert.Empty(t, after.EditingNodeID)
	assert.False(t, s.CanUndo())
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("F", "", 0), folder("G", "", 1), item("I", "F", 0)}, "flow")

	t.Run("duplicate sibling any case", func(t *testing.T) {
		assert.False(t, s.Rename("F", "g"))
		n, _ := s.GetNode("F")
		assert.Equal(t, "F", n.Name)
		assert.False(t, s.CanUndo())
	})

	t.Run("blank", func(t *testing.T) {
		assert.False(t, s.Rename("F", "  \t"))
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.False(t, s.Rename("nope", "x"))
	})

	t.Run("same name in other folder is fine", func(t *testing.T) {
		assert.True(t, s.Rename("I", "G"))
	})

	t.Run("unchanged name ends editing without history", func(t *testing.T) {
		s.SetEditing("F")
		depth := len(s.History())
		assert.True(t, s.Rename("F", " F "))
		assert.Empty(t, s.State().EditingNodeID)
		assert.Len(t, s.History(), depth)
	})

	t.Run("applies and truncates", func(t *testing.T) {
		s.SetEditing("F")
		assert.True(t, s.Rename("F", strings.Repeat("x", 120)))
		n, _ := s.GetNode("F")
		assert.Len(t, n.Name, core.DefaultMaxNameLength)
		assert.Empty(t, s.State().EditingNodeID)
	})
}

func TestDeleteCascadesAndRenumbers(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{
		folder("A", "", 0), folder("B", "", 1), folder("C", "", 2),
		folder("B1", "B", 0), item("B1x", "B1", 0), item("B2", "B", 1),
	}, "flow")
	s.SetSelected("B")
	s.ToggleExpand("B1")

	s.DeleteNode("B")
	st := s.State()
	assert.Len(t, st.Nodes, 2)
	assert.Equal(t, []string{"A", "C"}, st.RootIDs)
	assert.Equal(t, 1, st.Nodes["C"].SortOrder)
	assert.Empty(t, st.SelectedNodeID)
	assert.NotContains(t, st.ExpandedFolderIDs, "B1")
	assert.True(t, core.IsContiguous(st.Nodes))

	s.Undo()
	assert.Len(t, s.State().Nodes, 6)

	s.DeleteNode("missing")
	assert.True(t, s.CanRedo())
}

func TestDeleteKeepsSelectionOfOtherNode(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0), item("x", "A", 0), item("y", "A", 1)}, "flow")
	s.SetSelected("y")
	s.DeleteNode("x")
	st := s.State()
	assert.Equal(t, "y", st.SelectedNodeID)
	assert.Equal(t, 0, st.Nodes["y"].SortOrder)
}

func TestSetColor(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("F", "", 0), item("I", "", 1)}, "flow")

	s.SetColor("I", core.ColorRed)
	s.SetColor("missing", core.ColorRed)
	s.SetColor("F", "neon")
	assert.False(t, s.CanUndo())

	s.SetColor("F", core.ColorGreen)
	n, _ := s.GetNode("F")
	assert.Equal(t, core.ColorGreen, n.Color)
	assert.True(t, s.CanUndo())
}

func TestReorder(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0), folder("B", "", 1), folder("C", "", 2), item("x", "A", 0), item("y", "A", 1)}, "flow")

	require.True(t, s.Reorder(core.RootParent, []string{"C", "A", "B"}))
	assert.Equal(t, []string{"C", "A", "B"}, s.State().RootIDs)

	require.True(t, s.Reorder("A", []string{"y", "x"}))
	assert.Equal(t, []string{"y", "x"}, childIDs(s.GetChildren("A")))

	assert.False(t, s.Reorder("A", []string{"y"}), "partial lists are refused")
	assert.False(t, s.Reorder("A", []string{"y", "B"}), "foreign ids are refused")
}

func TestReorderBlockedByOptimisticNode(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	s := NewStore(Options{Logger: zap.New(obs)})
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	tmp := s.CreateFolder("", "Pending", "")
	depth := len(s.History())

	assert.False(t, s.Reorder("", []string{tmp, "A"}))
	assert.Equal(t, []string{"A", tmp}, s.State().RootIDs)
	assert.Len(t, s.History(), depth)
	require.Equal(t, 1, logs.FilterMessage("reorder blocked").Len())
}

func TestMove(t *testing.T) {
	seed := func() *Store {
		s := newTestStore(t)
		s.Initialize([]core.Node{
			folder("A", "", 0), folder("B", "", 1),
			item("a1", "A", 0), item("a2", "A", 1), item("a3", "A", 2),
			folder("B1", "B", 0),
		}, "flow")
		return s
	}

	t.Run("cycle after legal move", func(t *testing.T) {
		s := seed()
		s.DeleteNode("B1")
		require.True(t, s.Move("A", "B", nil))
		assert.False(t, s.Move("B", "A", nil))
		a, _ := s.GetNode("A")
		assert.Equal(t, "B", a.Parent())
		b, _ := s.GetNode("B")
		assert.Equal(t, core.RootParent, b.Parent())
		assert.Equal(t, []string{"B"}, s.State().RootIDs)
	})

	t.Run("into itself", func(t *testing.T) {
		s := seed()
		assert.False(t, s.Move("A", "A", nil))
	})

	t.Run("subtree depth blocks deep destination", func(t *testing.T) {
		s := seed()
		// A holds items at depth 1; under B1 (depth 1) they would land at depth 3.
		assert.False(t, s.Move("A", "B1", nil))
		assert.False(t, s.CanMoveToDepth("A", "B1"))
		assert.True(t, s.CanMoveToDepth("a1", "B1"))
		assert.True(t, s.Move("a1", "B1", nil))
		assert.Equal(t, 2, s.GetDepth("a1"))
	})

	t.Run("into item", func(t *testing.T) {
		s := seed()
		assert.False(t, s.Move("a1", "a2", nil))
	})

	t.Run("reorders within same parent", func(t *testing.T) {
		s := seed()
		require.True(t, s.Move("a3", "A", intPtr(0)))
		assert.Equal(t, []string{"a3", "a1", "a2"}, childIDs(s.GetChildren("A")))
		assert.True(t, core.IsContiguous(s.State().Nodes))
	})

	t.Run("clamps index and renumbers both sides", func(t *testing.T) {
		s := seed()
		require.True(t, s.Move("a2", "B", intPtr(99)))
		assert.Equal(t, []string{"B1", "a2"}, childIDs(s.GetChildren("B")))
		assert.Equal(t, []string{"a1", "a3"}, childIDs(s.GetChildren("A")))
		require.True(t, s.Move("a3", "B", intPtr(-4)))
		assert.Equal(t, []string{"a3", "B1", "a2"}, childIDs(s.GetChildren("B")))
		assert.True(t, core.IsContiguous(s.State().Nodes))
	})

	t.Run("to root at index", func(t *testing.T) {
		s := seed()
		require.True(t, s.Move("a1", core.RootParent, intPtr(1)))
		assert.Equal(t, []string{"A", "a1", "B"}, s.State().RootIDs)
		assert.True(t, core.IsContiguous(s.State().Nodes))
	})

	t.Run("blocked on optimistic node or destination", func(t *testing.T) {
		s := seed()
		tmp := s.CreateFolder("B", "pending", "")
		before := s.State().Nodes
		assert.False(t, s.Move(tmp, core.RootParent, nil))
		assert.False(t, s.Move("a1", tmp, nil))
		assert.Equal(t, before, s.State().Nodes)
	})

	t.Run("unknown", func(t *testing.T) {
		s := seed()
		assert.False(t, s.Move("nope", "A", nil))
		assert.False(t, s.Move("a1", "nope", nil))
	})
}

func TestUndoRedo(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	s.Undo()
	s.Redo()
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	initial := s.State()
	id := s.CreateFolder("A", "Child", "")
	afterCreate := s.State()
	require.True(t, s.Rename(id, "Renamed"))
	afterRename := s.State()

	s.SetEditing(id)
	s.Undo()
	assert.Equal(t, afterCreate.Nodes, s.State().Nodes)
	assert.Empty(t, s.State().EditingNodeID)
	assert.True(t, s.CanRedo())

	s.Undo()
	assert.Equal(t, initial.Nodes, s.State().Nodes)
	assert.False(t, s.CanUndo())

	s.Redo()
	assert.Equal(t, afterCreate.Nodes, s.State().Nodes)
	s.Redo()
	assert.Equal(t, afterRename.Nodes, s.State().Nodes)
	assert.False(t, s.CanRedo())
	s.Redo()
	assert.Equal(t, afterRename.Nodes, s.State().Nodes)

	// Undo from a redone tip must not record a second live entry.
	s.Undo()
	assert.Equal(t, afterCreate.Nodes, s.State().Nodes)

	// A new action discards the redo branch.
	s.SetColor("A", core.ColorAmber)
	assert.False(t, s.CanRedo())
	s.Undo()
	assert.Equal(t, afterCreate.Nodes, s.State().Nodes)
}

func TestHistoryIsBounded(t *testing.T) {
	s := NewStore(Options{MaxHistory: 3})
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	for _, c := range []core.FolderColor{core.ColorBlue, core.ColorGreen, core.ColorAmber, core.ColorRed, core.ColorPurple} {
		s.SetColor("A", c)
	}
	require.Len(t, s.History(), 3)

	undos := 0
	for s.CanUndo() {
		s.Undo()
		undos++
	}
	assert.Equal(t, 3, undos)
	n, _ := s.GetNode("A")
	assert.Equal(t, core.ColorGreen, n.Color, "oldest snapshots are evicted first")
}

func TestSnapshotsAreNotAliased(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	s.SetColor("A", core.ColorBlue)
	s.Undo()
	s.SetColor("A", core.ColorRed)

	hist := s.History()
	require.NotEmpty(t, hist)
	assert.Equal(t, core.ColorDefault, hist[0].Nodes["A"].Color)

	hist[0].Nodes["A"] = folder("A", "", 9)
	assert.Equal(t, 0, s.History()[0].Nodes["A"].SortOrder)
}

func TestFocusState(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0), folder("B", "A", 0), item("x", "", 1)}, "flow")

	s.ToggleExpand("x")
	assert.Empty(t, s.ExpandedIDs())
	s.ToggleExpand("A")
	assert.Equal(t, []string{"A"}, s.ExpandedIDs())
	s.ToggleExpand("A")
	assert.Empty(t, s.ExpandedIDs())
	s.ExpandAll()
	assert.Equal(t, []string{"A", "B"}, s.ExpandedIDs())
	s.CollapseAll()
	assert.Empty(t, s.ExpandedIDs())

	s.SetSelected("x")
	s.SetDragging("A")
	s.SetEditing("B")
	s.SetSelected("missing")
	st := s.State()
	assert.Equal(t, "x", st.SelectedNodeID)
	assert.Equal(t, "A", st.DraggingNodeID)
	assert.Equal(t, "B", st.EditingNodeID)
	s.SetDragging("")
	assert.Empty(t, s.State().DraggingNodeID)
}

func TestReplaceNodeID(t *testing.T) {
	s := newTestStore(t)
	tmp := s.CreateFolder(core.RootParent, "Reports", "")
	child := s.CreateItem(tmp, "Daily", "/daily", "")
	s.SetSelected(tmp)
	s.SetDragging(tmp)
	s.AddPendingOperation(PendingOperation{Type: OpCreate, NodeID: tmp})

	require.True(t, s.ReplaceNodeID(tmp, "srv-1"))

	st := s.State()
	_, stale := st.Nodes[tmp]
	assert.False(t, stale)
	require.Contains(t, st.Nodes, "srv-1")
	assert.False(t, st.Nodes["srv-1"].IsOptimistic)
	assert.Equal(t, "srv-1", st.Nodes["srv-1"].ID)
	assert.Equal(t, "srv-1", st.Nodes[child].Parent())
	assert.Equal(t, "srv-1", st.SelectedNodeID)
	assert.Equal(t, "srv-1", st.DraggingNodeID)
	assert.True(t, st.ExpandedFolderIDs["srv-1"])
	assert.Equal(t, []string{"srv-1"}, st.RootIDs)
	assert.Equal(t, "srv-1", st.PendingOperations[0].NodeID)
	for _, snap := range s.History() {
		assertNoReference(t, snap.Nodes, snap.RootIDs, tmp)
	}

	// Undo past the rename still produces a consistent tree.
	s.Undo()
	st = s.State()
	require.Contains(t, st.Nodes, "srv-1")
	assert.NotContains(t, st.Nodes, child)
}

func TestReplaceNodeIDConflictAndSameID(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	tmp := s.CreateFolder("", "x", "")
	assert.False(t, s.ReplaceNodeID(tmp, "A"))
	n, _ := s.GetNode(tmp)
	assert.True(t, n.IsOptimistic)

	assert.True(t, s.ReplaceNodeID(tmp, tmp))
	n, _ = s.GetNode(tmp)
	assert.False(t, n.IsOptimistic)
}

func TestConfirmOptimistic(t *testing.T) {
	s := newTestStore(t)
	tmp := s.CreateItem("", "Docs", "/docs", "")
	s.ConfirmOptimistic(tmp)
	s.ConfirmOptimistic("missing")
	n, _ := s.GetNode(tmp)
	assert.False(t, n.IsOptimistic)
	assert.Equal(t, tmp, n.ID)
}

func TestConfirmedNodesStayConfirmedAcrossUndo(t *testing.T) {
	s := newTestStore(t)
	a := s.CreateFolder(core.RootParent, "Reports", "")
	b := s.CreateFolder(core.RootParent, "Archive", "")
	s.ConfirmOptimistic(a)
	s.ConfirmOptimistic(b)

	for _, snap := range s.History() {
		for id, node := range snap.Nodes {
			assert.False(t, node.IsOptimistic, "%s optimistic in %s snapshot", id, snap.Action)
		}
	}

	s.Undo()
	n, ok := s.GetNode(a)
	require.True(t, ok)
	assert.False(t, n.IsOptimistic)

	s.Redo()
	n, ok = s.GetNode(b)
	require.True(t, ok)
	assert.False(t, n.IsOptimistic)

	s.Undo()
	assert.True(t, s.Move(a, core.RootParent, intPtr(0)))
}

func TestReplaceNodeIDRejectsEmptyID(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("F", "", 0), item("f1", "F", 0)}, "flow")
	before := s.State()

	assert.False(t, s.ReplaceNodeID("F", core.RootParent))

	st := s.State()
	assert.Equal(t, before.Nodes, st.Nodes)
	assert.Equal(t, []string{"F"}, st.RootIDs)
	assert.NotContains(t, st.Nodes, core.RootParent)
	assert.Equal(t, "F", st.Nodes["f1"].Parent())
}

func TestUndoClearsFocusOnVanishedNodes(t *testing.T) {
	s := newTestStore(t)
	s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
	tmp := s.CreateFolder("A", "Drafts", "")
	require.Equal(t, tmp, s.State().SelectedNodeID)
	s.SetDragging(tmp)

	s.Undo()
	st := s.State()
	assert.NotContains(t, st.Nodes, tmp)
	assert.Empty(t, st.SelectedNodeID)
	assert.Empty(t, st.DraggingNodeID)

	s.SetSelected("A")
	s.Redo()
	assert.Equal(t, "A", s.State().SelectedNodeID)
}

func TestRollbackNode(t *testing.T) {
	t.Run("prefers undo", func(t *testing.T) {
		s := newTestStore(t)
		s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
		tmp := s.CreateFolder("A", "pending", "")
		s.RollbackNode(tmp)
		st := s.State()
		assert.NotContains(t, st.Nodes, tmp)
		assert.Empty(t, st.SelectedNodeID)
		assert.Empty(t, st.EditingNodeID)
		assert.False(t, s.CanUndo())
		assert.True(t, s.CanRedo())
	})

	t.Run("direct removal without history", func(t *testing.T) {
		s := newTestStore(t)
		s.Initialize([]core.Node{folder("A", "", 0), item("x", "", 1), {ID: "temp-9", Kind: core.KindItem, Name: "t", SortOrder: 2, Product: "flow", IsOptimistic: true}}, "flow")
		s.SetSelected("temp-9")
		s.RollbackNode("temp-9")
		st := s.State()
		assert.Equal(t, []string{"A", "x"}, st.RootIDs)
		assert.Empty(t, st.SelectedNodeID)
		assert.False(t, s.CanUndo())
	})

	t.Run("direct removal when later actions touched the node", func(t *testing.T) {
		s := newTestStore(t)
		s.Initialize([]core.Node{folder("A", "", 0)}, "flow")
		tmp := s.CreateFolder("", "pending", "")
		require.True(t, s.Rename(tmp, "renamed"))
		s.RollbackNode(tmp)
		st := s.State()
		assert.NotContains(t, st.Nodes, tmp)
		assert.Equal(t, []string{"A"}, st.RootIDs)
		a, _ := s.GetNode("A")
		assert.Equal(t, "A", a.Name)
	})

	t.Run("unknown", func(t *testing.T) {
		s := newTestStore(t)
		s.RollbackNode("nope")
		assert.Empty(t, s.State().Nodes)
	})
}

func TestPendingOperationsAndSyncStatus(t *testing.T) {
	s := newTestStore(t)
	op := s.AddPendingOperation(PendingOperation{Type: OpRename, NodeID: "A"})
	require.NotEmpty(t, op.ID)
	require.NotZero(t, op.Timestamp)
	assert.Equal(t, 1, s.IncrementRetry(op.ID))
	assert.Equal(t, -1, s.IncrementRetry("missing"))
	assert.Equal(t, 1, s.PendingOperations()[0].RetryCount)
	s.RemovePendingOperation(op.ID)
	assert.Empty(t, s.PendingOperations())

	s.SetSyncStatus(SyncError, fmt.Errorf("offline"))
	st := s.State()
	assert.Equal(t, SyncError, st.SyncStatus)
	assert.Equal(t, "offline", st.SyncError)
	s.SetSyncStatus(SyncIdle, nil)
	assert.NotZero(t, s.State().LastSyncedAt)
}

func TestResetAndRevision(t *testing.T) {
	s := newTestStore(t)
	rev := s.Revision()
	s.CreateFolder("", "x", "")
	assert.Greater(t, s.Revision(), rev)
	s.AddPendingOperation(PendingOperation{Type: OpCreate})
	s.Reset()
	st := s.State()
	assert.Empty(t, st.Nodes)
	assert.Empty(t, st.PendingOperations)
	assert.Equal(t, SyncIdle, st.SyncStatus)
	assert.False(t, s.CanUndo())
}

func assertNoReference(t *testing.T, nodes map[string]core.Node, rootIDs []string, id string) {
	t.Helper()
	assert.NotContains(t, nodes, id)
	assert.NotContains(t, rootIDs, id)
	for _, n := range nodes {
		assert.NotEqual(t, id, n.ID)
		assert.NotEqual(t, id, n.Parent())
	}
}
