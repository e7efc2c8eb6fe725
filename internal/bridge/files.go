package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const filesDir = "files"

var (
	// ErrInvalidFileName is returned for names that do not reduce to a plain file name.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrNothingSaved is returned by load-file when no name is given and nothing was saved yet.
	ErrNothingSaved = errors.New("no saved file to load")
	// ErrInvalidPayload is returned when a stored file does not hold JSON.
	ErrInvalidPayload = errors.New("stored file is not valid JSON")
)

// cleanFileName keeps only the base name, whatever separator the caller used.
func cleanFileName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))

	if base == "" || base == "." || base == ".." || base == "/" {
		return "", pkgerrors.Wrap(ErrInvalidFileName, name)
	}

	return base, nil
}

func (b *Bridge) filePath(name string) string {
	return filepath.Join(b.cfg.DataDir, filesDir, name)
}

func (b *Bridge) callSave(_ context.Context, raw json.RawMessage) any {
	var req SaveRequest
	if err := b.decode(raw, &req); err != nil {
		return SaveResult{Status: fail(err)}
	}

	return b.Save(req)
}

// Save writes the payload as JSON under the files directory and remembers it as the last saved file.
func (b *Bridge) Save(req SaveRequest) SaveResult {
	name, err := cleanFileName(req.FileName)
	if err != nil {
		return SaveResult{Status: fail(err)}
	}

	if !json.Valid(req.Data) {
		return SaveResult{Status: fail(ErrInvalidPayload)}
	}

	path := b.filePath(name)

	if err = writeFileAtomic(path, req.Data); err != nil {
		return SaveResult{Status: fail(err)}
	}

	if err = b.state.RecordSave(name); err != nil {
		return SaveResult{Status: fail(err)}
	}

	if abs, errAbs := filepath.Abs(path); errAbs == nil {
		path = abs
	}

	return SaveResult{Status: ok(), FilePath: path}
}

func (b *Bridge) callLoad(_ context.Context, raw json.RawMessage) any {
	var req LoadRequest
	if err := b.decode(raw, &req); err != nil {
		return LoadResult{Status: fail(err)}
	}

	return b.Load(req)
}

// Load returns the payload of the named file, or of the last saved file when no name is given.
func (b *Bridge) Load(req LoadRequest) LoadResult {
	name := req.FileName
	if name == "" {
		name = b.state.Snapshot().LastSavedFile
	}

	if name == "" {
		return LoadResult{Status: fail(ErrNothingSaved)}
	}

	name, err := cleanFileName(name)
	if err != nil {
		return LoadResult{Status: fail(err)}
	}

	data, err := os.ReadFile(b.filePath(name))
	if err != nil {
		return LoadResult{Status: fail(pkgerrors.Wrap(err, "read saved file"))}
	}

	if !json.Valid(data) {
		return LoadResult{Status: fail(pkgerrors.Wrap(ErrInvalidPayload, name))}
	}

	return LoadResult{Status: ok(), Data: data}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create files directory")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "write file")
	}

	return pkgerrors.Wrap(os.Rename(tmp, path), "replace file")
}
