package config

import (
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Reminder  Reminder
	Build     Build
}

// Webserver holds the bridge listener settings.
// The bridge only listens on loopback unless Host says otherwise.
type Webserver struct {
	Host         string `validate:"required"`
	Port         int    `validate:"min=0,max=65535"`
	ShutDownTime int    // seconds to wait for in flight bridge calls on shutdown
	ReadTimeout  int    // seconds
	WriteTimeout int    // seconds, 0 keeps the push stream open
	CORSOrigins  string // comma separated origins allowed to call the bridge
	Token        string // shared bridge token; generated into <DataDir>/bridge.token when empty
}

// Reminder configures the backup reminder push.
type Reminder struct {
	Enabled      bool
	Schedule     string // cron spec, e.g. "@every 1h" or "0 9 * * *"
	IntervalDays int    `validate:"min=0"`
	CheckOnStart bool
}

// Build configures the build pipeline.
type Build struct {
	OutputDir    string
	LicenseFile  string
	TemplateName string
	SchemaFile   string // optional schema script, the embedded default is used when empty
	WebBundle    []string
	Installer    []string
}
