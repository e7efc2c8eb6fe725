// Package main provides the entry point of the LedgerDesk backend.
// It owns the SQLite file of the desktop accounting app and serves the bridge
// channels (query, update, backup, restore, file save/load, PDF and spreadsheet
// export) to the UI over a loopback HTTP listener, pushing backup reminders as
// server-sent events. The build command prepares the blank database template
// and runs the packaging steps.
package main
