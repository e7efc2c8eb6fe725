// Package bootstrap creates a fresh database file from a schema script and fixed seed rows.
package bootstrap

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ledgerdesk/ledgerdesk/internal/logger/adapter/gormlog"
)

// DefaultSchema is the schema of the blank database template.
//
//go:embed schema.sql
var DefaultSchema string

var (
	// ErrEmptySchema is returned when the script holds no statement.
	ErrEmptySchema = errors.New("schema script has no statements")
	// ErrEmptyPath is returned when no target path is given.
	ErrEmptyPath = errors.New("target path can not be empty")
)

// sidecarSuffixes are the files SQLite may leave next to the main database file.
var sidecarSuffixes = []string{"-wal", "-shm", "-journal"} //nolint:gochecknoglobals

// Options of a bootstrap run.
type Options struct {
	Schema string // semicolon delimited script, DefaultSchema when empty
	Path   string // target file, replaced if present
}

// StatementResult is the outcome of one executed statement.
type StatementResult struct {
	Index int
	SQL   string
	Seed  bool
	Err   error
}

// Report lists every statement the run executed, in order.
type Report struct {
	Path       string
	Statements []StatementResult
	Duration   time.Duration
}

// Failed returns the first failed statement or nil.
func (r *Report) Failed() *StatementResult {
	for i := range r.Statements {
		if r.Statements[i].Err != nil {
			return &r.Statements[i]
		}
	}

	return nil
}

// StatementError is returned when a statement aborts the transaction.
type StatementError struct {
	Index int
	SQL   string
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d failed: %v: %s", e.Index+1, e.Err, e.SQL)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Run deletes any file at opts.Path and builds a new database from the schema and the seed rows.
// All statements run in one transaction; the first failure rolls it back and no file is left behind.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Path == "" {
		return nil, ErrEmptyPath
	}

	if opts.Schema == "" {
		opts.Schema = DefaultSchema
	}

	statements := Split(opts.Schema)
	if len(statements) == 0 {
		return nil, ErrEmptySchema
	}

	report := &Report{Path: opts.Path}
	start := time.Now()

	if err := RemoveDatabase(opts.Path); err != nil {
		return report, err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil { //nolint:mnd
		return report, pkgerrors.Wrap(err, "create target directory")
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{Logger: gormlog.New(false, 0)})
	if err != nil {
		return report, pkgerrors.Wrap(err, "open target database")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, stmt := range statements {
			res := StatementResult{Index: i, SQL: stmt, Err: tx.Exec(stmt).Error}
			report.Statements = append(report.Statements, res)

			if res.Err != nil {
				return &StatementError{Index: res.Index, SQL: res.SQL, Err: res.Err}
			}
		}

		for _, seed := range seedStatements() {
			res := StatementResult{
				Index: len(report.Statements),
				SQL:   seed.sql,
				Seed:  true,
				Err:   tx.Exec(seed.sql, seed.args...).Error,
			}
			report.Statements = append(report.Statements, res)

			if res.Err != nil {
				return &StatementError{Index: res.Index, SQL: res.SQL, Err: res.Err}
			}
		}

		return nil
	})

	if errClose := closeDB(db); errClose != nil && err == nil {
		err = pkgerrors.Wrap(errClose, "close target database")
	}

	report.Duration = time.Since(start)

	if err != nil {
		if errRemove := RemoveDatabase(opts.Path); errRemove != nil {
			log.Warn().Err(errRemove).Str("path", opts.Path).Msg("could not remove partial database")
		}

		return report, err
	}

	log.Info().
		Str("path", opts.Path).
		Int("statements", len(report.Statements)).
		Dur("duration", report.Duration).
		Msg("database bootstrapped")

	return report, nil
}

// RemoveDatabase deletes a database file and its SQLite sidecar files; missing files are fine.
func RemoveDatabase(path string) error {
	for _, p := range append([]string{path}, sidecars(path)...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return pkgerrors.Wrapf(err, "remove %s", p)
		}
	}

	return nil
}

func sidecars(path string) []string {
	out := make([]string, 0, len(sidecarSuffixes))
	for _, s := range sidecarSuffixes {
		out = append(out, path+s)
	}

	return out
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}
