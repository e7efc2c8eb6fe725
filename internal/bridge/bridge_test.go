package bridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/appstate"
	"github.com/ledgerdesk/ledgerdesk/internal/bootstrap"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DB{
		Path:          filepath.Join(dir, "ledgerdesk.db"),
		BackupDir:     filepath.Join(dir, "backups"),
		DataDir:       filepath.Join(dir, "data"),
		BusyTimeoutMS: 5000,
		JournalMode:   "WAL",
		Synchronous:   "NORMAL",
		ForeignKeys:   true,
	}

	_, err := bootstrap.Run(context.Background(), bootstrap.Options{Path: cfg.Path})
	require.NoError(t, err)

	st, err := store.Open(cfg, false)
	require.NoError(t, err)

	t.Cleanup(func() { _ = st.Close() })

	state, err := appstate.Load(cfg.DataDir)
	require.NoError(t, err)

	return New(cfg, st, state)
}

// call runs a channel and returns the outcome as decoded JSON, the way the UI sees it.
func call(t *testing.T, b *Bridge, channel, request string) map[string]any {
	t.Helper()

	raw, err := json.Marshal(b.Call(context.Background(), channel, json.RawMessage(request)))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	return out
}

func requireSuccess(t *testing.T, out map[string]any) {
	t.Helper()

	require.Equal(t, true, out["success"], "error: %v", out["error"])
	assert.NotContains(t, out, "error")
}

func requireFailure(t *testing.T, out map[string]any) {
	t.Helper()

	require.Equal(t, false, out["success"])

	msg, _ := out["error"].(string)
	assert.NotEmpty(t, msg)
}

func TestSaveThenLoad(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelSaveFile, `{"fileName":"x.json","data":{"a":1}}`)
	requireSuccess(t, out)
	assert.True(t, strings.HasSuffix(out["filePath"].(string), "x.json"))

	out = call(t, b, ChannelLoadFile, ``)
	requireSuccess(t, out)
	assert.Equal(t, map[string]any{"a": float64(1)}, out["data"])
}

func TestSaveStripsDirectories(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelSaveFile, `{"fileName":"../../etc/evil.json","data":[1,2]}`)
	requireSuccess(t, out)

	path := out["filePath"].(string)
	assert.Equal(t, "evil.json", filepath.Base(path))
	assert.Equal(t, filesDir, filepath.Base(filepath.Dir(path)))

	out = call(t, b, ChannelLoadFile, `{"fileName":"evil.json"}`)
	requireSuccess(t, out)
	assert.Equal(t, []any{float64(1), float64(2)}, out["data"])
}

func TestSaveLoadFailures(t *testing.T) {
	b := newTestBridge(t)

	requireFailure(t, call(t, b, ChannelLoadFile, ``))
	requireFailure(t, call(t, b, ChannelLoadFile, `{"fileName":"missing.json"}`))
	requireFailure(t, call(t, b, ChannelSaveFile, `{"data":{}}`))
	requireFailure(t, call(t, b, ChannelSaveFile, `{"fileName":"..","data":{}}`))
	requireFailure(t, call(t, b, ChannelSaveFile, `not json`))
}

func TestQuery(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelQuery, `{"sql":"SELECT key, value FROM settings WHERE key = ?","params":["company_name"]}`)
	requireSuccess(t, out)

	data := out["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "company_name", data[0].(map[string]any)["key"])

	out = call(t, b, ChannelQuery, `{"sql":"SELECT * FROM customers"}`)
	requireSuccess(t, out)
	assert.Equal(t, []any{}, out["data"])

	requireFailure(t, call(t, b, ChannelQuery, `{"sql":"SELECT * FROM nowhere"}`))
	requireFailure(t, call(t, b, ChannelQuery, `{"params":[1]}`))
}

func TestUpdate(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelUpdate,
		`{"sql":"INSERT INTO customers (name, credit_days, opening_balance) VALUES (?, ?, ?)","params":["Hari Traders",30,1200.5]}`)
	requireSuccess(t, out)
	assert.InDelta(t, 1, out["changes"], 0)
	assert.InDelta(t, 1, out["lastInsertRowid"], 0)

	out = call(t, b, ChannelUpdate, `{"sql":"UPDATE settings SET value = ? WHERE key LIKE ?","params":["x","company_%"]}`)
	requireSuccess(t, out)
	assert.InDelta(t, 4, out["changes"], 0)

	out = call(t, b, ChannelUpdate, `{"sql":"DELETE FROM customers WHERE id = ?","params":[999]}`)
	requireSuccess(t, out)
	assert.InDelta(t, 0, out["changes"], 0)

	out = call(t, b, ChannelUpdate, `{"sql":"UPDATE settings SET value = 'y'"}`)
	requireSuccess(t, out)
	assert.InDelta(t, 5, out["changes"], 0)

	out = call(t, b, ChannelUpdate, `{"sql":"CREATE TABLE notes (body TEXT)"}`)
	requireSuccess(t, out)
	assert.InDelta(t, 0, out["changes"], 0, "DDL after a multi-row update modifies nothing")

	out = call(t, b, ChannelUpdate, `{"sql":"SELECT 1"}`)
	requireSuccess(t, out)
	assert.InDelta(t, 0, out["changes"], 0)

	out = call(t, b, ChannelQuery, `{"sql":"SELECT credit_days, opening_balance FROM customers"}`)
	requireSuccess(t, out)

	row := out["data"].([]any)[0].(map[string]any)
	assert.InDelta(t, 30, row["credit_days"], 0)
	assert.InDelta(t, 1200.5, row["opening_balance"], 0)

	requireFailure(t, call(t, b, ChannelUpdate, `{"sql":"INSERT INTO nowhere VALUES (1)"}`))
}

func TestGetTable(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelGetTable, `{"table":"currencies"}`)
	requireSuccess(t, out)
	assert.Len(t, out["data"], 1)

	requireFailure(t, call(t, b, ChannelGetTable, `{"table":"sqlite_master"}`))
	requireFailure(t, call(t, b, ChannelGetTable, `{"table":"settings WHERE 1=1"}`))
	requireFailure(t, call(t, b, ChannelGetTable, `{}`))
}

func TestBackupAndRestore(t *testing.T) {
	b := newTestBridge(t)

	requireFailure(t, call(t, b, ChannelRestore, ``))

	out := call(t, b, ChannelBackup, ``)
	requireSuccess(t, out)

	backup := out["filePath"].(string)
	assert.FileExists(t, backup)
	assert.NotNil(t, b.state.Snapshot().LastBackupAt)

	requireSuccess(t, call(t, b, ChannelUpdate, `{"sql":"DELETE FROM settings"}`))

	requireSuccess(t, call(t, b, ChannelRestore, ``))

	out = call(t, b, ChannelQuery, `{"sql":"SELECT COUNT(*) AS n FROM settings"}`)
	requireSuccess(t, out)
	assert.InDelta(t, 5, out["data"].([]any)[0].(map[string]any)["n"], 0)

	snapshots, err := filepath.Glob(filepath.Join(b.cfg.BackupDir, preRestorePrefix+"*.db"))
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestRestoreRejectsNonSQLite(t *testing.T) {
	b := newTestBridge(t)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	require.NoError(t, os.WriteFile(bogus, []byte("hello"), 0o600))

	raw, err := json.Marshal(RestoreRequest{FilePath: bogus})
	require.NoError(t, err)

	requireFailure(t, call(t, b, ChannelRestore, string(raw)))

	raw, err = json.Marshal(RestoreRequest{FilePath: b.DBPath()})
	require.NoError(t, err)

	requireFailure(t, call(t, b, ChannelRestore, string(raw)))

	requireSuccess(t, call(t, b, ChannelQuery, `{"sql":"SELECT 1"}`))
}

func TestBackupTargetsAreUnique(t *testing.T) {
	b := newTestBridge(t)

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	first := call(t, b, ChannelBackup, ``)
	second := call(t, b, ChannelBackup, ``)

	requireSuccess(t, first)
	requireSuccess(t, second)
	assert.NotEqual(t, first["filePath"], second["filePath"])
}

func TestExportPDF(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelExportPDF, `{"marginsType":0,"printBackground":true,"landscape":false,"printSelectionOnly":false}`)
	requireSuccess(t, out)
	assert.FileExists(t, out["filePath"].(string))

	out = call(t, b, ChannelExportPDF, `{"landscape":true,"printSelectionOnly":true,"document":{
		"title":"Sales Register",
		"columns":[{"key":"invoice","title":"Invoice"},{"key":"total"}],
		"rows":[{"invoice":"INV-1","total":100},{"invoice":"INV-2","total":250.75}],
		"selection":[1]}}`)
	requireSuccess(t, out)
	assert.Contains(t, filepath.Base(out["filePath"].(string)), "sales-register-")

	requireFailure(t, call(t, b, ChannelExportPDF, `{"marginsType":5}`))
	requireFailure(t, call(t, b, ChannelExportPDF, `{"document":{"columns":[{"title":"no key"}]}}`))
}

func TestExportXLSX(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelExportXLSX, `{"table":"settings"}`)
	requireSuccess(t, out)
	assert.FileExists(t, out["filePath"].(string))

	requireFailure(t, call(t, b, ChannelExportXLSX, `{"table":"nope"}`))
}

func TestAppInfoAndDBPath(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, ChannelAppInfo, ``)
	assert.Equal(t, true, out["isElectron"])
	assert.NotEmpty(t, out["platform"])
	assert.NotEmpty(t, out["version"])
	assert.Equal(t, b.DBPath(), out["dbPath"])

	assert.Equal(t, b.DBPath(), b.Call(context.Background(), ChannelDBPath, nil))
}

func TestUnknownChannel(t *testing.T) {
	b := newTestBridge(t)

	out := call(t, b, "db-drop-everything", `{}`)
	requireFailure(t, out)
	assert.Contains(t, out["error"], ErrUnknownChannel.Error())
}

func TestUnknownChannelsShareOneMetricLabel(t *testing.T) {
	b := newTestBridge(t)

	unknown := callsTotal.WithLabelValues(unknownChannelLabel, "failure")
	before := testutil.ToFloat64(unknown)

	requireFailure(t, call(t, b, "random-a", `{}`))
	series := testutil.CollectAndCount(callsTotal)

	requireFailure(t, call(t, b, "random-b", `{}`))
	requireFailure(t, call(t, b, "random-c", `{}`))

	assert.InDelta(t, before+3, testutil.ToFloat64(unknown), 0)
	assert.Equal(t, series, testutil.CollectAndCount(callsTotal), "unknown channels must not add series")
}

func TestPanicBecomesOutcome(t *testing.T) {
	b := newTestBridge(t)

	b.handlers["boom"] = func(context.Context, json.RawMessage) any { panic("kaboom") }

	out := call(t, b, "boom", ``)
	requireFailure(t, out)
	assert.Contains(t, out["error"], "kaboom")
}

func TestChannels(t *testing.T) {
	b := newTestBridge(t)

	assert.Equal(t, []string{
		ChannelBackup, ChannelExportXLSX, ChannelGetTable, ChannelQuery, ChannelRestore, ChannelUpdate,
		ChannelExportPDF, ChannelAppInfo, ChannelDBPath, ChannelLoadFile, ChannelSaveFile,
	}, b.Channels())
}

func TestBindParams(t *testing.T) {
	got, err := bindParams([]any{json.Number("7"), json.Number("1.5"), json.Number("1e3"), "s", nil, true,
		map[string]any{"k": "v"}, []any{json.Number("1")}})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(7), 1.5, 1000.0, "s", nil, true, `{"k":"v"}`, `[1]`}, got)
}

func TestCleanFileName(t *testing.T) {
	testCases := map[string]string{
		"x.json":             "x.json",
		"a/b/c.json":         "c.json",
		`C:\Users\me\d.json`: "d.json",
		"  spaced.json ":     "spaced.json",
	}

	for in, want := range testCases {
		got, err := cleanFileName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", ".", "..", "/", "a/.."} {
		_, err := cleanFileName(bad)
		require.ErrorIs(t, err, ErrInvalidFileName, bad)
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "sales-register", slug("Sales Register!", "report"))
	assert.Equal(t, "report", slug("   ", "report"))
}
