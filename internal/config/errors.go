package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrEmptyDBPath error if config db.path is empty.
	ErrEmptyDBPath = errors.New("config db.path can not be empty")

	// ErrInvalidSchedule error if the reminder schedule can not be parsed.
	ErrInvalidSchedule = errors.New("config reminder.schedule is not a valid cron spec")

	// ErrInvalidConfig wraps struct validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)
