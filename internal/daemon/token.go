package daemon

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/uniuri"
)

// TokenFile is the name of the bridge token file inside the data directory.
const TokenFile = "bridge.token"

// ensureToken fills cfg.Webserver.Token when it is not configured.
// The token is kept in the data directory so the shell and later runs see the same value.
func ensureToken(cfg *config.Config) error {
	if cfg.Webserver.Token != "" {
		return nil
	}

	path := filepath.Join(cfg.DB.DataDir, TokenFile)

	raw, err := os.ReadFile(path)

	switch {
	case err == nil:
		if token := string(bytes.TrimSpace(raw)); token != "" {
			cfg.Webserver.Token = token
			return nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return pkgerrors.Wrap(err, "read bridge token")
	}

	token, err := uniuri.New()
	if err != nil {
		return pkgerrors.Wrap(err, "generate bridge token")
	}

	if err := os.MkdirAll(cfg.DB.DataDir, 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create data directory")
	}

	if err := os.WriteFile(path, []byte(token), 0o600); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "write bridge token")
	}

	log.Info().Str("path", path).Msg("bridge token generated")

	cfg.Webserver.Token = token

	return nil
}
