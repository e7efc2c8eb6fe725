package daemon

import "errors"

// ErrConfigNil is returned when the daemon is created without a config.
var ErrConfigNil = errors.New("config is nil")
