package bridge

import (
	"encoding/json"
)

// Status is embedded in every result. Error is set exactly when Success is false.
type Status struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the call succeeded.
func (s Status) OK() bool {
	return s.Success
}

func ok() Status {
	return Status{Success: true}
}

func fail(err error) Status {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	return Status{Success: false, Error: msg}
}

// outcome is implemented by every result that can fail.
type outcome interface {
	OK() bool
}

// SaveResult answers save-file.
type SaveResult struct {
	Status
	FilePath string `json:"filePath,omitempty"`
}

// LoadResult answers load-file.
type LoadResult struct {
	Status
	Data json.RawMessage `json:"data,omitempty"`
}

// ExportResult answers export-pdf and db-export-xlsx.
type ExportResult struct {
	Status
	FilePath string `json:"filePath,omitempty"`
}

// QueryResult answers db-query. Data is never nil on success.
type QueryResult struct {
	Status
	Data []map[string]any `json:"data"`
}

// UpdateResult answers db-update.
type UpdateResult struct {
	Status
	Changes         int64 `json:"changes"`
	LastInsertRowid int64 `json:"lastInsertRowid"`
}

// TableResult answers db-get-table.
type TableResult struct {
	Status
	Data []map[string]any `json:"data"`
}

// BackupResult answers db-backup.
type BackupResult struct {
	Status
	FilePath string `json:"filePath,omitempty"`
}

// RestoreResult answers db-restore.
type RestoreResult struct {
	Status
}

// AppInfo answers get-app-info. IsElectron tells the UI the bridge is present.
type AppInfo struct {
	IsElectron bool   `json:"isElectron"`
	Platform   string `json:"platform"`
	Version    string `json:"version"`
	DBPath     string `json:"dbPath"`
}
