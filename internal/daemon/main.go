// Package daemon wires the store, the bridge, the reminder and the web service into one process.
package daemon

import (
	"context"
	"net"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/appstate"
	"github.com/ledgerdesk/ledgerdesk/internal/bridge"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/notify"
	"github.com/ledgerdesk/ledgerdesk/internal/reminder"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
	"github.com/ledgerdesk/ledgerdesk/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	store      *store.Store
	bridge     *bridge.Bridge
	reminder   *reminder.Service
	webService *web.Service
}

// New prepares the database file and creates the daemon with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if err := ensureDatabase(ctx, cfg.DB); err != nil {
		return nil, err
	}

	if err := ensureToken(cfg); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DB, cfg.Log.SQLLog)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	state, err := appstate.Load(cfg.DB.DataDir)
	if err != nil {
		_ = st.Close()
		return nil, err //nolint:wrapcheck
	}

	hub := notify.NewHub()
	b := bridge.New(cfg.DB, st, state)

	return &Daemon{
		cfg:        cfg,
		store:      st,
		bridge:     b,
		reminder:   reminder.New(cfg.Reminder, state, hub),
		webService: web.New(cfg, b, hub),
	}, nil
}

// Bridge returns the bridge, for in-process callers.
func (d *Daemon) Bridge() *bridge.Bridge {
	return d.bridge
}

// Start serves the bridge until SIGINT or SIGTERM, then releases the database.
func (d *Daemon) Start() error {
	if d.cfg.Reminder.Enabled {
		if err := d.reminder.Start(); err != nil {
			return pkgerrors.Wrap(err, "start backup reminder")
		}
	}

	addr := net.JoinHostPort(d.cfg.Webserver.Host, strconv.Itoa(d.cfg.Webserver.Port))

	log.Info().Str("addr", addr).Str("db", d.store.Path()).Msg("bridge listening")

	go d.webService.WaitShutdown()

	errServe := d.webService.Start(addr)

	return d.stop(errServe)
}

// Close releases the resources without serving, for one shot commands.
func (d *Daemon) Close() error {
	return d.stop(nil)
}

func (d *Daemon) stop(errServe error) error {
	d.reminder.Stop()

	if err := d.store.Close(); err != nil && errServe == nil {
		return pkgerrors.Wrap(err, "close database")
	}

	return errServe
}
