// Package appstate holds the small amount of application state that outlives a bridge call:
// when the last backup was taken and which file was saved last.
package appstate

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// FileName is the state file inside the data directory.
const FileName = "state.json"

// Snapshot is the persisted form of the state.
type Snapshot struct {
	LastBackupAt  *time.Time `json:"lastBackupAt,omitempty"`
	LastBackup    string     `json:"lastBackup,omitempty"`
	LastSavedFile string     `json:"lastSavedFile,omitempty"`
	LastRestoreAt *time.Time `json:"lastRestoreAt,omitempty"`
}

// State is loaded once, mutated through its methods and written back on every change.
type State struct {
	mu   sync.RWMutex
	path string
	data Snapshot
}

// Load reads the state file in dir. A missing file yields an empty state.
func Load(dir string) (*State, error) {
	s := &State{path: filepath.Join(dir, FileName)}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}

	if err != nil {
		return nil, pkgerrors.Wrap(err, "read application state")
	}

	if err = json.Unmarshal(raw, &s.data); err != nil {
		return nil, pkgerrors.Wrap(err, "decode application state")
	}

	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data
}

// RecordBackup stores the time and path of a finished backup.
func (s *State) RecordBackup(at time.Time, path string) error {
	return s.update(func(d *Snapshot) {
		d.LastBackupAt = &at
		d.LastBackup = path
	})
}

// RecordRestore stores the time of a finished restore.
func (s *State) RecordRestore(at time.Time) error {
	return s.update(func(d *Snapshot) {
		d.LastRestoreAt = &at
	})
}

// RecordSave stores the name of the last file written by the generic save.
func (s *State) RecordSave(name string) error {
	return s.update(func(d *Snapshot) {
		d.LastSavedFile = name
	})
}

func (s *State) update(fn func(d *Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data
	fn(&next)

	if err := s.write(next); err != nil {
		return err
	}

	s.data = next

	return nil
}

// write replaces the state file atomically.
func (s *State) write(d Snapshot) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "encode application state")
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "create state directory")
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil { //nolint:mnd
		return pkgerrors.Wrap(err, "write application state")
	}

	return pkgerrors.Wrap(os.Rename(tmp, s.path), "replace application state")
}
