package workspace

import (
	"github.com/rexliu/navtree/pkg/core"
)

// Snapshot is an immutable copy of the tree taken before a mutating action.
type Snapshot struct {
	Nodes     map[string]core.Node `json:"nodes"`
	RootIDs   []string             `json:"rootIds"`
	Action    string               `json:"action"`
	Timestamp int64                `json:"timestamp"`
}

func (s *Store) snapshot(action string) Snapshot {
	return Snapshot{
		Nodes:     core.CloneNodes(s.nodes),
		RootIDs:   append([]string(nil), s.rootIDs...),
		Action:    action,
		Timestamp: s.stamp(),
	}
}

// restore swaps the live tree for a copy of snap so the snapshot stays untouched.
// Focus pointers to nodes the snapshot lacks are cleared.
func (s *Store) restore(snap Snapshot) {
	s.nodes = core.CloneNodes(snap.Nodes)
	s.rootIDs = append([]string(nil), snap.RootIDs...)
	for id := range s.expanded {
		if _, ok := s.nodes[id]; !ok {
			delete(s.expanded, id)
		}
	}
	s.selectedID = s.existingOrEmpty(s.selectedID)
	s.editingID = s.existingOrEmpty(s.editingID)
	s.draggingID = s.existingOrEmpty(s.draggingID)
	s.revision++
}

// pushHistory records the pre-mutation state, discarding any redo entries and
// evicting the oldest snapshots beyond the cap.
func (s *Store) pushHistory(action string) {
	s.history = append(s.history[:s.historyIndex+1], s.snapshot(action))
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append([]Snapshot(nil), s.history[over:]...)
	}
	s.historyIndex = len(s.history) - 1
}

// Undo rewinds one action. Leaving the live tip records the current tree so
// Redo can return to it; that extra entry does not count against the cap.
func (s *Store) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoLocked()
}

func (s *Store) undoLocked() bool {
	if s.historyIndex < 0 {
		return false
	}
	if s.historyIndex == len(s.history)-1 {
		s.history = append(s.history, s.snapshot("live"))
	}
	s.restore(s.history[s.historyIndex])
	s.historyIndex--
	s.editingID = ""
	return true
}

// Redo replays the action most recently undone.
func (s *Store) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canRedoLocked() {
		return
	}
	s.restore(s.history[s.historyIndex+2])
	s.historyIndex++
}

// CanUndo reports whether Undo would change anything.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyIndex >= 0
}

// CanRedo reports whether Redo would change anything.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRedoLocked()
}

// While rewound, the live tree equals history[historyIndex+1].
func (s *Store) canRedoLocked() bool {
	return s.historyIndex+2 < len(s.history)
}

// History returns copies of the recorded snapshots, oldest first.
func (s *Store) History() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.history))
	for i, snap := range s.history {
		out[i] = Snapshot{
			Nodes:     core.CloneNodes(snap.Nodes),
			RootIDs:   append([]string(nil), snap.RootIDs...),
			Action:    snap.Action,
			Timestamp: snap.Timestamp,
		}
	}
	return out
}
