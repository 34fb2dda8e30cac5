package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rexliu/navtree/pkg/core"
)

// Options tunes pragmas and the structural limits enforced server-side.
type Options struct {
	JournalMode   string
	Synchronous   string
	MaxDepth      int
	MaxNameLength int
}

// Store owns the SQLite database for a profile. It is the authority that
// assigns server IDs to nodes the client created optimistically.
type Store struct {
	db   *sql.DB
	path string
	opts Options
}

// Path returns the underlying SQLite file path.
func (s *Store) Path() string {
	return s.path
}

// Open initializes a SQLite database at path.
func Open(path string, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps pragmas such as foreign_keys in effect for every statement.
	db.SetMaxOpenConns(1)
	if opts.JournalMode == "" {
		opts.JournalMode = "DELETE"
	}
	if opts.Synchronous == "" {
		opts.Synchronous = "FULL"
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = core.DefaultMaxDepth
	}
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = core.DefaultMaxNameLength
	}
	return &Store{db: db, path: path, opts: opts}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init ensures pragmas and schema are configured.
func (s *Store) Init(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("nil store")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA journal_mode = %s;", s.opts.JournalMode),
		fmt.Sprintf("PRAGMA synchronous = %s;", s.opts.Synchronous),
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	return s.applySchema(ctx)
}

func (s *Store) applySchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES ('schemaVersion','1');`,
		`CREATE TABLE IF NOT EXISTS workspace_nodes (
			id TEXT PRIMARY KEY,
			product TEXT NOT NULL,
			parent_id TEXT REFERENCES workspace_nodes(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK (kind IN ('folder','item')),
			name TEXT NOT NULL,
			color TEXT,
			href TEXT,
			icon_name TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_product_parent_order ON workspace_nodes(product, parent_id, sort_order);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_name_nocase ON workspace_nodes(name COLLATE NOCASE);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ListNodes returns every node of product. An empty product lists all products.
func (s *Store) ListNodes(ctx context.Context, product core.Product) ([]core.Node, error) {
	nodes, err := loadNodes(ctx, s.db, product)
	if err != nil {
		return nil, err
	}
	out := make([]core.Node, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node)
	}
	core.SortSiblings(out)
	return out, nil
}

func loadNodes(ctx context.Context, q querier, product core.Product) (map[string]core.Node, error) {
	query := `
		SELECT id, product, parent_id, kind, name, color, href, icon_name, sort_order, updated_at
		FROM workspace_nodes`
	args := []any{}
	if product != "" {
		query += ` WHERE product = ?`
		args = append(args, string(product))
	}
	rows, err := q.QueryContext(ctx, query+` ORDER BY parent_id IS NOT NULL, parent_id, sort_order;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make(map[string]core.Node)
	for rows.Next() {
		var (
			node                  core.Node
			prod, kind            string
			color, href, iconName *string
		)
		if err := rows.Scan(&node.ID, &prod, &node.ParentID, &kind, &node.Name, &color, &href, &iconName, &node.SortOrder, &node.UpdatedAt); err != nil {
			return nil, err
		}
		node.Product = core.Product(prod)
		node.Kind = core.NodeKind(kind)
		if color != nil {
			node.Color = core.FolderColor(*color)
		}
		if href != nil {
			node.Href = *href
		}
		if iconName != nil {
			node.IconName = *iconName
		}
		nodes[node.ID] = node
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Store) productOf(ctx context.Context, tx *sql.Tx, id string) (core.Product, error) {
	var product string
	err := tx.QueryRowContext(ctx, `SELECT product FROM workspace_nodes WHERE id = ?`, id).Scan(&product)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrInvalidNode
	}
	return core.Product(product), err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// loadScope loads the product that id belongs to, inside tx.
func (s *Store) loadScope(ctx context.Context, tx *sql.Tx, id string) (map[string]core.Node, core.Node, error) {
	product, err := s.productOf(ctx, tx, id)
	if err != nil {
		return nil, core.Node{}, err
	}
	nodes, err := loadNodes(ctx, tx, product)
	if err != nil {
		return nil, core.Node{}, err
	}
	return nodes, nodes[id], nil
}

// persistChanges writes every node in after that differs from before.
func persistChanges(ctx context.Context, tx *sql.Tx, before, after map[string]core.Node) error {
	for id, node := range after {
		prev, ok := before[id]
		if !ok || sameNode(prev, node) {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE workspace_nodes
			SET parent_id = ?, name = ?, color = ?, href = ?, icon_name = ?, sort_order = ?, updated_at = ?
			WHERE id = ?`,
			node.ParentID, node.Name, nullable(string(node.Color)), nullable(node.Href), nullable(node.IconName),
			node.SortOrder, node.UpdatedAt, id)
		if err := wrapRowsAffected(res, err); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
	}
	return nil
}

func sameNode(a, b core.Node) bool {
	return a.Parent() == b.Parent() && a.Name == b.Name && a.Color == b.Color && a.Href == b.Href &&
		a.IconName == b.IconName && a.SortOrder == b.SortOrder && a.UpdatedAt == b.UpdatedAt
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func wrapRowsAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("no rows affected")
	}
	return nil
}
