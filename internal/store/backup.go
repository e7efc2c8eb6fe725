package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// sqliteHeader starts every SQLite 3 database file.
var sqliteHeader = []byte("SQLite format 3\x00") //nolint:gochecknoglobals

var (
	// ErrNotSQLite is returned when a restore source is not an SQLite database.
	ErrNotSQLite = errors.New("file is not an SQLite database")
	// ErrBackupExists is returned when the backup target already exists.
	ErrBackupExists = errors.New("backup target already exists")
)

// Backup writes a consistent copy of the live database to dest using VACUUM INTO.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return pkgerrors.Wrap(ErrBackupExists, dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create backup directory")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlDB, err := s.sqlDB()
	if err != nil {
		return err
	}

	if _, err = sqlDB.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return pkgerrors.Wrap(err, "vacuum into backup")
	}

	log.Info().Str("target", dest).Msg("database backup written")

	return nil
}

// CheckSQLiteFile verifies that path exists and carries the SQLite header.
func CheckSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return pkgerrors.Wrap(err, "open restore source")
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err = io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteHeader) {
		return pkgerrors.Wrap(ErrNotSQLite, path)
	}

	return nil
}

// Restore replaces the live database with the file at src and reopens the handle.
// The shared lock holders drain first; calls arriving meanwhile wait for the swap.
func (s *Store) Restore(src string) error {
	if err := CheckSQLiteFile(src); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeHandle(); err != nil {
		return pkgerrors.Wrap(err, "close live database")
	}

	swapErr := replaceFile(src, s.cfg.Path)

	if err := s.open(); err != nil {
		if swapErr != nil {
			return errors.Join(swapErr, err)
		}

		return err
	}

	if swapErr != nil {
		return swapErr
	}

	log.Info().Str("source", src).Str("path", s.cfg.Path).Msg("database restored")

	return nil
}

// replaceFile copies src next to dst and renames it over dst, dropping stale sidecar files.
func replaceFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return pkgerrors.Wrap(err, "open restore source")
	}
	defer in.Close()

	tmp := dst + ".restore"

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:mnd
	if err != nil {
		return pkgerrors.Wrap(err, "create restore file")
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)

		return pkgerrors.Wrap(err, "copy restore file")
	}

	if err = out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)

		return pkgerrors.Wrap(err, "sync restore file")
	}

	if err = out.Close(); err != nil {
		_ = os.Remove(tmp)
		return pkgerrors.Wrap(err, "close restore file")
	}

	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if errRm := os.Remove(dst + suffix); errRm != nil && !os.IsNotExist(errRm) {
			_ = os.Remove(tmp)
			return pkgerrors.Wrap(errRm, "remove sidecar file")
		}
	}

	return pkgerrors.Wrap(os.Rename(tmp, dst), "replace live database")
}
