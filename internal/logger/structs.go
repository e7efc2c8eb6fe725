package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool
	UseConsoleWriter bool // human readable output instead of json lines
}

// Rotation describes one lumberjack rolling file.
type Rotation struct {
	Name       string // file name inside LogFile.Path
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// LogFile implements a file based logger with one rolling file per level group.
type LogFile struct {
	Enabled bool
	Path    string

	Access Rotation
	Error  Rotation
	Info   Rotation
	Trace  Rotation
	Warn   Rotation
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.

	// EnableAccessLogToConsole if true the bridge access log is written to the console as well.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	SQLLog                   bool // route gorm statements into the logger at debug level

	AppName     string
	ServiceName string

	Console Console
	File    LogFile
}
