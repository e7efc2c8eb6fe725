package config

// DB holds the database file configuration.
type DB struct {
	Path          string // live database file
	Template      string // blank database created by the bootstrap, copied when Path is missing
	BackupDir     string
	DataDir       string // generic save/load files, exports and the application state live here
	BusyTimeoutMS int
	JournalMode   string
	Synchronous   string
	ForeignKeys   bool
}
