package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

func TestInit(t *testing.T) {
	testCases := []struct {
		name             string
		cfg              logger.Log
		shouldHaveOutput bool
		outputIsJSON     bool
	}{
		{
			name: "no output enabled",
			cfg: logger.Log{
				LogLevel:    "",
				ServiceName: "test",
				AppName:     "test",
			},
		},
		{
			name: "console info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutput: true,
			outputIsJSON:     true,
		},
		{
			name: "console writer trace",
			cfg: logger.Log{
				LogLevel:    "trace",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			shouldHaveOutput: true,
		},
		{
			name: "json with caller and stack",
			cfg: logger.Log{
				LogLevel:     "trace",
				ServiceName:  "test",
				AppName:      "test",
				ReportCaller: true,
				Console:      logger.Console{Enabled: true},
			},
			shouldHaveOutput: true,
			outputIsJSON:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureOutput(t, tc.cfg)

			if !tc.shouldHaveOutput {
				assert.Empty(t, out)
				return
			}

			require.NotEmpty(t, out)

			if tc.outputIsJSON {
				for _, line := range strings.Split(out, "\n") {
					if line == "" {
						continue
					}

					var decoded map[string]any
					require.NoError(t, json.Unmarshal([]byte(line), &decoded), line)
					assert.Equal(t, "test", decoded["app"])
				}
			}
		})
	}
}

func TestInitErrors(t *testing.T) {
	require.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", AppName: "a"}), logger.ErrServiceNameIsEmpty)
	require.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", ServiceName: "s"}), logger.ErrAppNameIsEmpty)
	require.Error(t, logger.Init(logger.Log{LogLevel: "loud", AppName: "a", ServiceName: "s"}))
}

func TestInitRollingFiles(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Error:   logger.Rotation{Name: "error.log", MaxSize: 1},
			Info:    logger.Rotation{Name: "info.log", MaxSize: 1},
			Trace:   logger.Rotation{Name: "trace.log", MaxSize: 1},
			Warn:    logger.Rotation{Name: "warn.log", MaxSize: 1},
		},
	})
	require.NoError(t, err)

	log.Info().Msg("info line")
	log.Error().Err(errors.New("boom")).Msg("error line") //nolint:goerr113

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "info line")

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "error line")
	assert.NotContains(t, string(errLog), "info line")
}

func captureOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	os.Stderr = w

	err = logger.Init(cfg)
	if err != nil {
		t.Error(err)
	}

	log.Info().Msg("this info message should be seen...")
	log.Error().Err(errors.New("a test error")).Msg("this err message should be seen...") //nolint:goerr113

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC
}
