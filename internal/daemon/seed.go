package daemon

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/bootstrap"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// ensureDatabase creates the live database on first start.
// It copies the shipped blank template when there is one and bootstraps a fresh file otherwise.
func ensureDatabase(ctx context.Context, cfg config.DB) error {
	if _, err := os.Stat(cfg.Path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrap(err, "stat database")
	}

	if cfg.Template != "" {
		if err := store.CheckSQLiteFile(cfg.Template); err == nil {
			log.Info().Str("template", cfg.Template).Str("path", cfg.Path).Msg("creating database from template")
			return copyFile(cfg.Template, cfg.Path)
		}

		log.Warn().Str("template", cfg.Template).Msg("database template unusable, bootstrapping a fresh database")
	}

	_, err := bootstrap.Run(ctx, bootstrap.Options{Path: cfg.Path})

	return err //nolint:wrapcheck
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create database directory")
	}

	in, err := os.Open(src)
	if err != nil {
		return pkgerrors.Wrap(err, "open template")
	}
	defer in.Close()

	tmp := dst + ".tmp"

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:mnd
	if err != nil {
		return pkgerrors.Wrap(err, "create database")
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)

		return pkgerrors.Wrap(err, "copy template")
	}

	if err = out.Close(); err != nil {
		_ = os.Remove(tmp)
		return pkgerrors.Wrap(err, "close database")
	}

	return pkgerrors.Wrap(os.Rename(tmp, dst), "move database into place")
}
