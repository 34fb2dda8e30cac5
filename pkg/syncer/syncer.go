// Package syncer pushes workspace edits to an authoritative backend.
//
// Creates follow the optimistic protocol: the node appears locally under a
// temporary ID, the backend call is queued as a pending operation, and the
// node is either re-keyed to the server ID or rolled back. Structural edits
// (rename, move, delete, color, reorder) apply locally first; when the
// backend refuses one, the tree is reloaded from the backend.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/ipc"
	"github.com/rexliu/navtree/pkg/workspace"
)

// ErrRejected is returned when the local store refuses an edit, so nothing
// was sent to the backend.
var ErrRejected = errors.New("edit rejected by workspace")

// Backend is the authoritative node store.
type Backend interface {
	ListNodes(ctx context.Context, product core.Product) ([]core.Node, error)
	CreateNode(ctx context.Context, node core.Node) (core.Node, error)
	RenameNode(ctx context.Context, id, name string) error
	MoveNode(ctx context.Context, id, parentID string, index *int) error
	DeleteNode(ctx context.Context, id string) error
	SetColor(ctx context.Context, id string, color core.FolderColor) error
	Reorder(ctx context.Context, product core.Product, parentID string, ids []string) error
}

// Options tunes retry behaviour.
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Syncer serialises backend calls for one workspace store.
type Syncer struct {
	mu         sync.Mutex
	store      *workspace.Store
	backend    Backend
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// New binds store to backend.
func New(store *workspace.Store, backend Backend, opts Options) *Syncer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Syncer{
		store:      store,
		backend:    backend,
		logger:     opts.Logger,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
}

// Load replaces the workspace with the backend's nodes for product.
func (s *Syncer) Load(ctx context.Context, product core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, product)
}

func (s *Syncer) loadLocked(ctx context.Context, product core.Product) error {
	s.store.SetSyncStatus(workspace.SyncSyncing, nil)
	nodes, err := s.backend.ListNodes(ctx, product)
	if err != nil {
		err = fmt.Errorf("list nodes: %w", err)
		s.store.SetSyncStatus(workspace.SyncError, err)
		return err
	}
	s.store.Initialize(nodes, product)
	s.store.SetSyncStatus(workspace.SyncIdle, nil)
	return nil
}

// CreateFolder creates a folder optimistically and returns its confirmed ID.
func (s *Syncer) CreateFolder(ctx context.Context, parentID, name string, color core.FolderColor) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, s.store.CreateFolder(parentID, name, color))
}

// CreateItem creates an item optimistically and returns its confirmed ID.
func (s *Syncer) CreateItem(ctx context.Context, parentID, name, href, iconName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, s.store.CreateItem(parentID, name, href, iconName))
}

func (s *Syncer) createLocked(ctx context.Context, tempID string) (string, error) {
	if tempID == "" {
		return "", ErrRejected
	}
	node, ok := s.store.GetNode(tempID)
	if !ok {
		return "", ErrRejected
	}

	var created core.Node
	err := s.push(ctx, workspace.OpCreate, tempID, node, func(ctx context.Context) error {
		var err error
		created, err = s.backend.CreateNode(ctx, node)
		return err
	})
	if err != nil {
		s.store.RollbackNode(tempID)
		return "", s.fail(err)
	}
	if created.ID == tempID {
		s.store.ConfirmOptimistic(tempID)
	} else if !s.store.ReplaceNodeID(tempID, created.ID) {
		// The server ID collides locally; the backend view wins.
		s.logger.Warn("server id rejected locally", zap.String("temp_id", tempID), zap.String("node_id", created.ID))
		return created.ID, s.reloadLocked(ctx, nil)
	}
	s.settle()
	return created.ID, nil
}

// Rename renames id locally and on the backend.
func (s *Syncer) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Rename(id, name) {
		return ErrRejected
	}
	node, _ := s.store.GetNode(id)
	return s.structural(ctx, workspace.OpRename, id, ipc.RenameNodeParams{ID: id, Name: node.Name}, func(ctx context.Context) error {
		return s.backend.RenameNode(ctx, id, node.Name)
	})
}

// Move reparents id locally and on the backend.
func (s *Syncer) Move(ctx context.Context, id, parentID string, index *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Move(id, parentID, index) {
		return ErrRejected
	}
	return s.structural(ctx, workspace.OpMove, id, ipc.MoveNodeParams{ID: id, ParentID: parentID, Index: index}, func(ctx context.Context) error {
		return s.backend.MoveNode(ctx, id, parentID, index)
	})
}

// Delete removes id and its subtree locally and on the backend.
func (s *Syncer) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.store.GetNode(id)
	if !ok {
		return ErrRejected
	}
	s.store.DeleteNode(id)
	if node.IsOptimistic {
		// Never reached the backend.
		return nil
	}
	return s.structural(ctx, workspace.OpDelete, id, ipc.DeleteNodeParams{ID: id}, func(ctx context.Context) error {
		return s.backend.DeleteNode(ctx, id)
	})
}

// SetColor repaints folder id locally and on the backend.
func (s *Syncer) SetColor(ctx context.Context, id string, color core.FolderColor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.store.GetNode(id)
	if !ok || !node.IsFolder() || !color.Valid() {
		return ErrRejected
	}
	s.store.SetColor(id, color)
	return s.structural(ctx, workspace.OpColor, id, ipc.SetColorParams{ID: id, Color: color}, func(ctx context.Context) error {
		return s.backend.SetColor(ctx, id, color)
	})
}

// Reorder sets the sibling order under parentID locally and on the backend.
func (s *Syncer) Reorder(ctx context.Context, parentID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Reorder(parentID, ids) {
		return ErrRejected
	}
	product := s.store.Product()
	params := ipc.ReorderNodesParams{Product: product, ParentID: parentID, IDs: ids}
	return s.structural(ctx, workspace.OpReorder, parentID, params, func(ctx context.Context) error {
		return s.backend.Reorder(ctx, product, parentID, ids)
	})
}

func (s *Syncer) structural(ctx context.Context, typ workspace.OpType, nodeID string, payload any, call func(context.Context) error) error {
	if err := s.push(ctx, typ, nodeID, payload, call); err != nil {
		return s.reloadLocked(ctx, err)
	}
	s.settle()
	return nil
}

// push queues a pending operation and runs call until it succeeds, fails
// permanently, or exhausts its retries. The operation leaves the queue either way.
func (s *Syncer) push(ctx context.Context, typ workspace.OpType, nodeID string, payload any, call func(context.Context) error) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", typ, err)
	}
	op := s.store.AddPendingOperation(workspace.PendingOperation{Type: typ, NodeID: nodeID, Payload: raw})
	defer s.store.RemovePendingOperation(op.ID)
	s.store.SetSyncStatus(workspace.SyncSyncing, nil)

	var errs error
	for {
		err := call(ctx)
		if err == nil {
			return nil
		}
		errs = multierr.Append(errs, err)
		if !Retryable(err) || ctx.Err() != nil {
			break
		}
		attempt := s.store.IncrementRetry(op.ID)
		if attempt < 0 || attempt > s.maxRetries {
			break
		}
		s.logger.Debug("retrying backend call",
			zap.String("op", string(typ)),
			zap.String("node_id", nodeID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if err := sleep(ctx, s.retryDelay); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
	}
	return fmt.Errorf("%s %s: %w", typ, nodeID, errs)
}

// reloadLocked re-fetches the authoritative tree after cause. The returned
// error combines cause with any reload failure.
func (s *Syncer) reloadLocked(ctx context.Context, cause error) error {
	err := multierr.Append(cause, s.loadLocked(ctx, s.store.Product()))
	if err != nil {
		s.store.SetSyncStatus(workspace.SyncError, err)
		s.logger.Warn("backend rejected edit", zap.Error(err))
	}
	return err
}

func (s *Syncer) fail(err error) error {
	s.store.SetSyncStatus(workspace.SyncError, err)
	s.logger.Warn("backend rejected edit", zap.Error(err))
	return err
}

func (s *Syncer) settle() {
	if len(s.store.PendingOperations()) == 0 {
		s.store.SetSyncStatus(workspace.SyncIdle, nil)
	}
}

// Retryable reports whether err may succeed on a later attempt. Validation
// failures never do.
func Retryable(err error) bool {
	for _, permanent := range []error{
		core.ErrInvalidParent, core.ErrCycleDetected, core.ErrInvalidNode, core.ErrDepthExceeded,
		core.ErrOptimisticNode, core.ErrEmptyName, core.ErrDuplicateName, core.ErrIDConflict,
		core.ErrInvalidOrder, core.ErrInvalidColor, context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	var ipcErr *ipc.Error
	if errors.As(err, &ipcErr) {
		switch ipcErr.Code {
		case ipc.CodeStorage, ipc.CodeInternal, ipc.CodeVCS:
			return true
		default:
			return false
		}
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
