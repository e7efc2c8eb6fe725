// Package config handles input from etc/main.toml.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the TOML file.
	EnvConfigJSON = "LEDGERDESK_CONFIG_JSON"

	defaultShutDownTime  = 5
	defaultBusyTimeoutMS = 5000
	defaultIntervalDays  = 7
	defaultSchedule      = "@every 1h"
)

// ReadConfig reads main.toml from path, merges the JSON env override and validates the result.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if override := os.Getenv(EnvConfigJSON); override != "" {
		if err := json.Unmarshal([]byte(override), &c); err != nil {
			return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
		}
	}

	applyDefaults(&c)

	return c, validate(&c)
}

// DumpConfig returns the config as TOML.
func DumpConfig(c *Config) (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return string(out), nil
}

// DumpConfigJSON returns the config as indented JSON.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Host == "" {
		c.Webserver.Host = "127.0.0.1"
	}

	if c.DB.BusyTimeoutMS == 0 {
		c.DB.BusyTimeoutMS = defaultBusyTimeoutMS
	}

	if c.DB.Path != "" {
		base := filepath.Dir(c.DB.Path)

		if c.DB.DataDir == "" {
			c.DB.DataDir = base
		}

		if c.DB.BackupDir == "" {
			c.DB.BackupDir = filepath.Join(base, "backups")
		}
	}

	if c.Reminder.Schedule == "" {
		c.Reminder.Schedule = defaultSchedule
	}

	if c.Reminder.IntervalDays == 0 {
		c.Reminder.IntervalDays = defaultIntervalDays
	}
}

// validate checks the settings the daemon can not run without.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.DB.Path == "" {
		return errors.Wrap(ErrEmptyDBPath, invalidErrMessage)
	}

	if c.Reminder.Enabled {
		if _, err := cron.ParseStandard(c.Reminder.Schedule); err != nil {
			return errors.Wrap(ErrInvalidSchedule, err.Error())
		}
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return nil
}
