package workspace

import (
	"encoding/json"

	"github.com/google/uuid"
)

// OpType names the backend call a pending operation stands for.
type OpType string

const (
	OpCreate  OpType = "create"
	OpRename  OpType = "rename"
	OpDelete  OpType = "delete"
	OpMove    OpType = "move"
	OpReorder OpType = "reorder"
	OpColor   OpType = "color"
)

// PendingOperation is a backend call not yet confirmed. The store only queues
// these; retrying is up to the sync layer.
type PendingOperation struct {
	ID         string          `json:"id"`
	Type       OpType          `json:"type"`
	NodeID     string          `json:"nodeId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  int64           `json:"timestamp"`
	RetryCount int             `json:"retryCount"`
}

// SyncStatus summarises the sync layer's progress for the UI.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)

// AddPendingOperation queues op, filling in ID and Timestamp when missing.
func (s *Store) AddPendingOperation(op PendingOperation) PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Timestamp == 0 {
		op.Timestamp = s.stamp()
	}
	s.pending = append(s.pending, op)
	return op
}

// RemovePendingOperation drops the operation with id.
func (s *Store) RemovePendingOperation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending[:0]
	for _, op := range s.pending {
		if op.ID != id {
			out = append(out, op)
		}
	}
	s.pending = out
}

// IncrementRetry bumps the retry counter of id and returns the new value,
// or -1 when the operation is unknown.
func (s *Store) IncrementRetry(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending {
		if s.pending[i].ID == id {
			s.pending[i].RetryCount++
			return s.pending[i].RetryCount
		}
	}
	return -1
}

// PendingOperations returns the queue in insertion order.
func (s *Store) PendingOperations() []PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PendingOperation(nil), s.pending...)
}

// SetSyncStatus records sync progress. Returning to idle stamps LastSyncedAt.
func (s *Store) SetSyncStatus(status SyncStatus, syncErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncStatus = status
	s.syncError = ""
	if syncErr != nil {
		s.syncError = syncErr.Error()
	}
	if status == SyncIdle {
		s.lastSyncedAt = s.stamp()
	}
}

// SyncStatus returns the last recorded sync status.
func (s *Store) SyncStatus() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncStatus
}
