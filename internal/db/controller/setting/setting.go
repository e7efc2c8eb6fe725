// Package setting provides typed access to the company settings table.
// Settings are never deleted programmatically, so there is no delete here.
package setting

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerdesk/ledgerdesk/internal/db/models"
)

const (
	keyQueryPattern = "key = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when a setting key is empty.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func normalize(db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrSettingKeyEmpty
	}

	return key, nil
}

// Get retrieves a setting by key.
func Get(db *gorm.DB, key string) (*models.Setting, error) {
	key, err := normalize(db, key)
	if err != nil {
		return nil, err
	}

	var s models.Setting

	result := db.Where(keyQueryPattern, key).Take(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &s, nil
}

// GetAll retrieves all settings ordered by key.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if result := db.Order("key").Find(&settings); result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Map returns all settings as a key/value map.
func Map(db *gorm.DB) (map[string]string, error) {
	settings, err := GetAll(db)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}

	return out, nil
}

// Set creates or updates a setting (upsert on the unique key).
func Set(db *gorm.DB, key, value string) (*models.Setting, error) {
	key, err := normalize(db, key)
	if err != nil {
		return nil, err
	}

	s := &models.Setting{Key: key, Value: value}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(s)
	if result.Error != nil {
		return nil, result.Error
	}

	return s, nil
}

// UpdateByKey updates an existing setting and fails if the key is unknown.
func UpdateByKey(db *gorm.DB, key, value string) (*models.Setting, error) {
	key, err := normalize(db, key)
	if err != nil {
		return nil, err
	}

	result := db.Model(&models.Setting{}).Where(keyQueryPattern, key).Update("value", value)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrSettingNotFound
	}

	return &models.Setting{Key: key, Value: value}, nil
}
