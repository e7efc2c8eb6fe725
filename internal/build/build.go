// Package build prepares the distributable: output directory, license file,
// blank database template and the two external packaging steps.
package build

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/bootstrap"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
)

// LicenseText is written to the license file when it is missing.
const LicenseText = `LedgerDesk End User License

Copyright (c) LedgerDesk contributors. All rights reserved.

This software is provided "as is", without warranty of any kind, express or
implied. In no event shall the authors be liable for any claim, damages or
other liability arising from the use of this software.

The accounting data you keep with LedgerDesk stays on your computer and is
owned by you.
`

var (
	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("build output directory can not be empty")
	// ErrEmptyTemplateName is returned when no template file name is configured.
	ErrEmptyTemplateName = errors.New("template name can not be empty")
)

// Step is one external command of the pipeline. An empty Command is skipped.
type Step struct {
	Name    string
	Command []string
}

// Pipeline runs the build steps in order and stops at the first failure.
type Pipeline struct {
	cfg    config.Build
	Dir    string // working directory of the external steps, the current one when empty
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a pipeline writing step output to the process stdout and stderr.
func New(cfg config.Build) *Pipeline {
	return &Pipeline{cfg: cfg, Stdout: os.Stdout, Stderr: os.Stderr}
}

// TemplatePath is where the blank database template is written.
func (p *Pipeline) TemplatePath() string {
	return filepath.Join(p.cfg.OutputDir, p.cfg.TemplateName)
}

// LicensePath is where the license file is written. Relative names live in the output directory.
func (p *Pipeline) LicensePath() string {
	if p.cfg.LicenseFile == "" || filepath.IsAbs(p.cfg.LicenseFile) {
		return p.cfg.LicenseFile
	}

	return filepath.Join(p.cfg.OutputDir, p.cfg.LicenseFile)
}

// Steps returns the external steps: web bundle first, then the installer.
func (p *Pipeline) Steps() []Step {
	return []Step{
		{Name: "web bundle", Command: p.cfg.WebBundle},
		{Name: "installer", Command: p.cfg.Installer},
	}
}

// Run executes the whole pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	if p.cfg.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if p.cfg.TemplateName == "" {
		return ErrEmptyTemplateName
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create output directory")
	}

	if err := p.writeLicense(); err != nil {
		return err
	}

	if err := p.writeTemplate(ctx); err != nil {
		return err
	}

	for _, step := range p.Steps() {
		if err := p.runStep(ctx, step); err != nil {
			return err
		}
	}

	log.Info().Dur("duration", time.Since(start)).Str("output", p.cfg.OutputDir).Msg("build finished")

	return nil
}

func (p *Pipeline) writeLicense() error {
	path := p.LicensePath()
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err == nil {
		log.Debug().Str("path", path).Msg("license file present")
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrap(err, "stat license file")
	}

	if err := os.WriteFile(path, []byte(LicenseText), 0o644); err != nil { //nolint:gosec,mnd
		return pkgerrors.Wrap(err, "write license file")
	}

	log.Info().Str("path", path).Msg("license file written")

	return nil
}

func (p *Pipeline) writeTemplate(ctx context.Context) error {
	opts := bootstrap.Options{Path: p.TemplatePath()}

	if p.cfg.SchemaFile != "" {
		raw, err := os.ReadFile(p.cfg.SchemaFile)
		if err != nil {
			return pkgerrors.Wrap(err, "read schema file")
		}

		opts.Schema = string(raw)
	}

	if _, err := bootstrap.Run(ctx, opts); err != nil {
		return pkgerrors.Wrap(err, "bootstrap database template")
	}

	return nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step) error {
	if len(step.Command) == 0 {
		log.Info().Str("step", step.Name).Msg("build step not configured, skipped")
		return nil
	}

	log.Info().Str("step", step.Name).Str("command", strings.Join(step.Command, " ")).Msg("running build step")

	cmd := exec.CommandContext(ctx, step.Command[0], step.Command[1:]...) //nolint:gosec
	cmd.Dir = p.Dir
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	if err := cmd.Run(); err != nil {
		return pkgerrors.Wrapf(err, "build step %q failed", step.Name)
	}

	return nil
}
