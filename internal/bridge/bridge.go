// Package bridge implements the named request/response channels the UI uses to reach persisted state.
// Every call answers with an outcome object; errors and panics never cross the boundary.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/appstate"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
	"github.com/ledgerdesk/ledgerdesk/internal/version"
)

// Channel names understood by the bridge.
const (
	ChannelSaveFile   = "save-file"
	ChannelLoadFile   = "load-file"
	ChannelExportPDF  = "export-pdf"
	ChannelQuery      = "db-query"
	ChannelUpdate     = "db-update"
	ChannelGetTable   = "db-get-table"
	ChannelBackup     = "db-backup"
	ChannelRestore    = "db-restore"
	ChannelAppInfo    = "get-app-info"
	ChannelDBPath     = "get-db-path"
	ChannelExportXLSX = "db-export-xlsx"
)

// ErrUnknownChannel is returned for channel names the bridge does not serve.
var ErrUnknownChannel = errors.New("unknown channel")

type handler func(ctx context.Context, raw json.RawMessage) any

// Bridge dispatches channel calls to the store and the file helpers.
type Bridge struct {
	store    *store.Store
	state    *appstate.State
	cfg      config.DB
	validate *validator.Validate
	now      func() time.Time
	handlers map[string]handler
}

// New creates a bridge over an open store and the application state.
func New(cfg config.DB, st *store.Store, state *appstate.State) *Bridge {
	b := &Bridge{
		store:    st,
		state:    state,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}

	b.handlers = map[string]handler{
		ChannelSaveFile:   b.callSave,
		ChannelLoadFile:   b.callLoad,
		ChannelExportPDF:  b.callExportPDF,
		ChannelQuery:      b.callQuery,
		ChannelUpdate:     b.callUpdate,
		ChannelGetTable:   b.callGetTable,
		ChannelBackup:     b.callBackup,
		ChannelRestore:    b.callRestore,
		ChannelAppInfo:    func(context.Context, json.RawMessage) any { return b.AppInfo() },
		ChannelDBPath:     func(context.Context, json.RawMessage) any { return b.DBPath() },
		ChannelExportXLSX: b.callExportXLSX,
	}

	registerMetrics()

	return b
}

// Channels returns the served channel names, sorted.
func (b *Bridge) Channels() []string {
	out := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// Call runs the handler of channel with the raw JSON request and returns its outcome.
func (b *Bridge) Call(ctx context.Context, channel string, raw json.RawMessage) (result any) {
	start := time.Now()
	metricChannel := channel

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("channel", channel).Interface("panic", r).Msg("bridge handler panicked")
			result = fail(fmt.Errorf("%s: internal error: %v", channel, r)) //nolint:err113
		}

		observe(metricChannel, result, time.Since(start))
	}()

	h, found := b.handlers[channel]
	if !found {
		metricChannel = unknownChannelLabel

		return fail(fmt.Errorf("%w: %s", ErrUnknownChannel, channel))
	}

	result = h(ctx, raw)

	if o, isOutcome := result.(outcome); isOutcome && !o.OK() {
		log.Warn().Str("channel", channel).Interface("result", result).Msg("bridge call failed")
	}

	return result
}

// AppInfo describes the running backend.
func (b *Bridge) AppInfo() AppInfo {
	return AppInfo{
		IsElectron: true,
		Platform:   platform(),
		Version:    version.Version,
		DBPath:     b.DBPath(),
	}
}

// DBPath returns the live database path.
func (b *Bridge) DBPath() string {
	return b.store.Path()
}

// platform uses the names the UI already knows from its desktop shell.
func platform() string {
	if runtime.GOOS == "windows" {
		return "win32"
	}

	return runtime.GOOS
}

func (b *Bridge) callQuery(ctx context.Context, raw json.RawMessage) any {
	var req SQLRequest
	if err := b.decode(raw, &req); err != nil {
		return QueryResult{Status: fail(err)}
	}

	return b.Query(ctx, req)
}

// Query runs a read statement.
func (b *Bridge) Query(ctx context.Context, req SQLRequest) QueryResult {
	params, err := bindParams(req.Params)
	if err != nil {
		return QueryResult{Status: fail(err)}
	}

	rows, err := b.store.Query(ctx, req.SQL, params...)
	if err != nil {
		return QueryResult{Status: fail(err)}
	}

	return QueryResult{Status: ok(), Data: rows}
}

func (b *Bridge) callUpdate(ctx context.Context, raw json.RawMessage) any {
	var req SQLRequest
	if err := b.decode(raw, &req); err != nil {
		return UpdateResult{Status: fail(err)}
	}

	return b.Update(ctx, req)
}

// Update runs a write statement.
func (b *Bridge) Update(ctx context.Context, req SQLRequest) UpdateResult {
	params, err := bindParams(req.Params)
	if err != nil {
		return UpdateResult{Status: fail(err)}
	}

	res, err := b.store.Exec(ctx, req.SQL, params...)
	if err != nil {
		return UpdateResult{Status: fail(err)}
	}

	return UpdateResult{Status: ok(), Changes: res.Changes, LastInsertRowid: res.LastInsertID}
}

func (b *Bridge) callGetTable(ctx context.Context, raw json.RawMessage) any {
	var req TableRequest
	if err := b.decode(raw, &req); err != nil {
		return TableResult{Status: fail(err)}
	}

	return b.GetTable(ctx, req)
}

// GetTable returns every row of an existing table.
func (b *Bridge) GetTable(ctx context.Context, req TableRequest) TableResult {
	rows, err := b.store.Table(ctx, req.Table)
	if err != nil {
		return TableResult{Status: fail(err)}
	}

	return TableResult{Status: ok(), Data: rows}
}
