package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

const (
	backupPrefix     = "ledgerdesk-backup-"
	preRestorePrefix = "ledgerdesk-pre-restore-"
	stampLayout      = "20060102-150405"
)

var (
	// ErrNoBackup is returned by db-restore when no source is given and no backup exists.
	ErrNoBackup = errors.New("no backup found")
	// ErrRestoreSelf is returned when the restore source is the live database.
	ErrRestoreSelf = errors.New("restore source is the live database")
)

// backupTarget returns a fresh file name in the backup directory.
func (b *Bridge) backupTarget(prefix string) string {
	path := filepath.Join(b.cfg.BackupDir, prefix+b.now().Format(stampLayout)+".db")

	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(b.cfg.BackupDir, prefix+b.now().Format(stampLayout)+"-"+uuid.NewString()[:8]+".db")
	}

	return path
}

func (b *Bridge) callBackup(ctx context.Context, _ json.RawMessage) any {
	return b.Backup(ctx)
}

// Backup writes a snapshot of the live database to the backup directory.
func (b *Bridge) Backup(ctx context.Context) BackupResult {
	path := b.backupTarget(backupPrefix)

	if err := b.store.Backup(ctx, path); err != nil {
		return BackupResult{Status: fail(err)}
	}

	if err := b.state.RecordBackup(b.now(), path); err != nil {
		return BackupResult{Status: fail(err)}
	}

	return BackupResult{Status: ok(), FilePath: path}
}

func (b *Bridge) callRestore(ctx context.Context, raw json.RawMessage) any {
	var req RestoreRequest
	if err := b.decode(raw, &req); err != nil {
		return RestoreResult{Status: fail(err)}
	}

	return b.Restore(ctx, req)
}

// Restore replaces the live database with the given file or the newest backup.
// The current database is saved as a pre-restore snapshot first.
func (b *Bridge) Restore(ctx context.Context, req RestoreRequest) RestoreResult {
	src := req.FilePath

	if src == "" {
		newest, err := b.newestBackup()
		if err != nil {
			return RestoreResult{Status: fail(err)}
		}

		src = newest
	}

	if same, _ := sameFile(src, b.store.Path()); same {
		return RestoreResult{Status: fail(ErrRestoreSelf)}
	}

	if err := store.CheckSQLiteFile(src); err != nil {
		return RestoreResult{Status: fail(err)}
	}

	if err := b.store.Backup(ctx, b.backupTarget(preRestorePrefix)); err != nil {
		return RestoreResult{Status: fail(pkgerrors.Wrap(err, "pre-restore snapshot"))}
	}

	if err := b.store.Restore(src); err != nil {
		return RestoreResult{Status: fail(err)}
	}

	if err := b.state.RecordRestore(b.now()); err != nil {
		return RestoreResult{Status: fail(err)}
	}

	return RestoreResult{Status: ok()}
}

// newestBackup returns the most recently modified regular backup.
func (b *Bridge) newestBackup() (string, error) {
	matches, err := filepath.Glob(filepath.Join(b.cfg.BackupDir, backupPrefix+"*.db"))
	if err != nil {
		return "", pkgerrors.Wrap(err, "list backups")
	}

	var (
		newest string
		best   os.FileInfo
	)

	for _, m := range matches {
		fi, errStat := os.Stat(m)
		if errStat != nil || !fi.Mode().IsRegular() {
			continue
		}

		if best == nil || fi.ModTime().After(best.ModTime()) ||
			(fi.ModTime().Equal(best.ModTime()) && m > newest) {
			newest, best = m, fi
		}
	}

	if newest == "" {
		return "", ErrNoBackup
	}

	return newest, nil
}

func sameFile(a, b string) (bool, error) {
	fa, err := os.Stat(a)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	fb, err := os.Stat(b)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	return os.SameFile(fa, fb), nil
}
