package build

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func newTestPipeline(t *testing.T, cfg config.Build) (*Pipeline, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	p := New(cfg)
	p.Stdout = &out
	p.Stderr = &out

	return p, &out
}

func TestRunWithoutSteps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")

	p, _ := newTestPipeline(t, config.Build{OutputDir: dir, LicenseFile: "LICENSE.txt", TemplateName: "blank.db"})

	require.NoError(t, p.Run(context.Background()))

	license, err := os.ReadFile(filepath.Join(dir, "LICENSE.txt"))
	require.NoError(t, err)
	assert.Equal(t, LicenseText, string(license))

	require.NoError(t, store.CheckSQLiteFile(filepath.Join(dir, "blank.db")))
}

func TestLicenseIsNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	license := filepath.Join(dir, "LICENSE.txt")
	require.NoError(t, os.WriteFile(license, []byte("custom"), 0o600))

	p, _ := newTestPipeline(t, config.Build{OutputDir: dir, LicenseFile: "LICENSE.txt", TemplateName: "blank.db"})
	require.NoError(t, p.Run(context.Background()))

	raw, err := os.ReadFile(license)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(raw))
}

func TestStepsRunInOrder(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()

	p, out := newTestPipeline(t, config.Build{
		OutputDir:    dir,
		TemplateName: "blank.db",
		WebBundle:    []string{"sh", "-c", "echo bundle"},
		Installer:    []string{"sh", "-c", "echo installer"},
	})

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, "bundle\ninstaller\n", out.String())
}

func TestFailingStepAborts(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()

	p, out := newTestPipeline(t, config.Build{
		OutputDir:    dir,
		TemplateName: "blank.db",
		WebBundle:    []string{"sh", "-c", "echo bundle; exit 3"},
		Installer:    []string{"sh", "-c", "echo installer"},
	})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web bundle")
	assert.NotContains(t, out.String(), "installer")
}

func TestBadSchemaAborts(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(schema, []byte("CREATE TABLE broken (;"), 0o600))

	p, _ := newTestPipeline(t, config.Build{OutputDir: dir, TemplateName: "blank.db", SchemaFile: schema})

	require.Error(t, p.Run(context.Background()))
	assert.NoFileExists(t, filepath.Join(dir, "blank.db"))
}

func TestConfigErrors(t *testing.T) {
	p, _ := newTestPipeline(t, config.Build{TemplateName: "blank.db"})
	require.ErrorIs(t, p.Run(context.Background()), ErrEmptyOutputDir)

	p, _ = newTestPipeline(t, config.Build{OutputDir: t.TempDir()})
	require.ErrorIs(t, p.Run(context.Background()), ErrEmptyTemplateName)
}

func TestLicensePath(t *testing.T) {
	p := New(config.Build{OutputDir: "dist", LicenseFile: "LICENSE.txt"})
	assert.Equal(t, filepath.Join("dist", "LICENSE.txt"), p.LicensePath())

	abs := filepath.Join(t.TempDir(), "L.txt")
	p = New(config.Build{OutputDir: "dist", LicenseFile: abs})
	assert.Equal(t, abs, p.LicensePath())
}
