// Package store owns the open handle of the live database file.
// The daemon is the only process touching the file; everything else goes through here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/db/dsn"
	"github.com/ledgerdesk/ledgerdesk/internal/logger/adapter/gormlog"
)

const slowQueryThreshold = 500 * time.Millisecond

var (
	// ErrEmptySQL is returned when no statement text is given.
	ErrEmptySQL = errors.New("sql can not be empty")
	// ErrUnknownTable is returned for table names not present in the database.
	ErrUnknownTable = errors.New("unknown table")
	// ErrClosed is returned after Close or a failed reopen.
	ErrClosed = errors.New("database is closed")
)

// ExecResult is the outcome of a write statement.
type ExecResult struct {
	Changes      int64
	LastInsertID int64
}

// Store wraps the gorm handle of the live database.
// Reads, writes and backups share the handle; Restore takes it exclusively while it swaps the file.
type Store struct {
	mu       sync.RWMutex
	db       *gorm.DB
	cfg      config.DB
	traceSQL bool
}

// Open opens the database at cfg.Path with the configured pragmas.
func Open(cfg config.DB, traceSQL bool) (*Store, error) {
	s := &Store{cfg: cfg, traceSQL: traceSQL}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil { //nolint:mnd
		return nil, pkgerrors.Wrap(err, "create database directory")
	}

	if err := s.open(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) open() error {
	db, err := gorm.Open(sqlite.Open(dsn.Create(s.cfg.Path, &s.cfg)), &gorm.Config{
		Logger: gormlog.New(s.traceSQL, slowQueryThreshold),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return pkgerrors.Wrap(err, "get sql handle")
	}

	// one connection keeps last_insert_rowid() and changes() tied to the statement that produced them
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return pkgerrors.Wrap(err, "ping database")
	}

	s.db = db

	return nil
}

func (s *Store) closeHandle() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.db = nil

	return sqlDB.Close() //nolint:wrapcheck
}

// Path returns the live database file path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// View runs fn with the gorm handle while holding the shared lock.
func (s *Store) View(fn func(db *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrClosed
	}

	return fn(s.db)
}

func (s *Store) sqlDB() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	return s.db.DB() //nolint:wrapcheck
}

// Query runs a read statement with positional parameters and returns every row as a column map.
func (s *Store) Query(ctx context.Context, query string, params ...any) ([]map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptySQL
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlDB, err := s.sqlDB()
	if err != nil {
		return nil, err
	}

	rows, err := sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return scanRows(rows)
}

// Exec runs a write statement with positional parameters.
func (s *Store) Exec(ctx context.Context, query string, params ...any) (ExecResult, error) {
	if strings.TrimSpace(query) == "" {
		return ExecResult{}, ErrEmptySQL
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlDB, err := s.sqlDB()
	if err != nil {
		return ExecResult{}, err
	}

	// changes() keeps the count of the last modifying statement, so DDL and reads
	// would report a stale value. total_changes() on the same connection tells them apart.
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return ExecResult{}, pkgerrors.Wrap(err, "acquire connection")
	}
	defer conn.Close()

	before, err := totalChanges(ctx, conn)
	if err != nil {
		return ExecResult{}, err
	}

	res, err := conn.ExecContext(ctx, query, params...)
	if err != nil {
		return ExecResult{}, err //nolint:wrapcheck
	}

	after, err := totalChanges(ctx, conn)
	if err != nil {
		return ExecResult{}, err
	}

	var out ExecResult

	if after != before {
		if out.Changes, err = res.RowsAffected(); err != nil {
			return ExecResult{}, err //nolint:wrapcheck
		}
	}

	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return ExecResult{}, err //nolint:wrapcheck
	}

	return out, nil
}

func totalChanges(ctx context.Context, conn *sql.Conn) (int64, error) {
	var n int64

	if err := conn.QueryRowContext(ctx, "SELECT total_changes()").Scan(&n); err != nil {
		return 0, pkgerrors.Wrap(err, "read total changes")
	}

	return n, nil
}

// Tables lists the user tables of the database.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if name, ok := r["name"].(string); ok {
			out = append(out, name)
		}
	}

	return out, nil
}

// Table returns every row of an existing table.
// The name must match a table in sqlite_master, so it is never spliced into SQL unchecked.
func (s *Store) Table(ctx context.Context, name string) ([]map[string]any, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range tables {
		if t == name {
			return s.Query(ctx, "SELECT * FROM "+QuoteIdent(name))
		}
	}

	return nil, pkgerrors.Wrap(ErrUnknownTable, name)
}

// QuoteIdent quotes an SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Close closes the handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().Str("path", s.cfg.Path).Msg("closing database")

	return s.closeHandle()
}

// TableColumns returns the column names of an existing table in declaration order.
func (s *Store) TableColumns(ctx context.Context, name string) ([]string, error) {
	rows, err := s.Query(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", name)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, pkgerrors.Wrap(ErrUnknownTable, name)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if col, ok := r["name"].(string); ok {
			out = append(out, col)
		}
	}

	return out, nil
}
