// Package settings reads and writes the user-adjustable reminder settings.
// Values are read from the store on every call so that the poller sees a
// change without a restart.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinReminderDays = 1
	MaxReminderDays = 14

	MinReminderInterval = 1
	MaxReminderInterval = 60
)

var (
	ErrBelowMin      = errors.New("value below minimum")
	ErrAboveMax      = errors.New("value above maximum")
	ErrUnknownKey    = errors.New("unknown setting")
	ErrInvalidAction = errors.New("invalid settings action")
)

type Op string

const (
	OpSet Op = "set"
	OpInc Op = "inc"
	OpDec Op = "dec"
)

func ParseOp(value string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(value))); op {
	case OpSet, OpInc, OpDec:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, value)
	}
}

type Values struct {
	ReminderDays     int
	ReminderInterval int // minutes
}

type bounds struct {
	def, min, max int
}

var known = map[string]bounds{
	db.SettingReminderDays:     {def: db.DefaultReminderDays, min: MinReminderDays, max: MaxReminderDays},
	db.SettingReminderInterval: {def: db.DefaultReminderInterval, min: MinReminderInterval, max: MaxReminderInterval},
}

func Keys() []string {
	return []string{db.SettingReminderDays, db.SettingReminderInterval}
}

func Bounds(key string) (int, int, bool) {
	s, ok := known[key]
	return s.min, s.max, ok
}

func ReminderDays() (int, error) {
	return Int(db.SettingReminderDays)
}

func ReminderInterval() (int, error) {
	return Int(db.SettingReminderInterval)
}

func Current() (Values, error) {
	days, err := ReminderDays()
	if err != nil {
		return Values{}, err
	}
	interval, err := ReminderInterval()
	if err != nil {
		return Values{}, err
	}
	return Values{ReminderDays: days, ReminderInterval: interval}, nil
}

// Int returns the stored value of key. A missing, malformed or non-positive
// value yields the key's default; only a store failure is returned as an error.
func Int(key string) (int, error) {
	s, ok := known[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	raw, found, err := get(key)
	if err != nil {
		return s.def, err
	}
	if !found {
		logger.Debug("setting missing, using default", "key", key, "default", s.def)
		return s.def, nil
	}
	value, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || value <= 0 {
		logger.Warn("invalid stored setting, using default", "key", key, "value", raw, "default", s.def)
		return s.def, nil
	}
	return value, nil
}

func get(key string) (string, bool, error) {
	var setting db.Setting
	err := db.DB.Where("setting_name = ?", key).Limit(1).Find(&setting).Error
	if err != nil {
		return "", false, apperr.Store("reading setting "+key, err)
	}
	if setting.ID == 0 {
		return "", false, nil
	}
	return setting.Value, true, nil
}

// Set validates and stores value for key, overwriting any previous value.
func Set(key string, value int) error {
	s, ok := known[key]
	if !ok {
		return apperr.Validation("setting", fmt.Sprintf("unknown key %q", key))
	}
	if value < s.min {
		return apperr.ValidationCause(key, fmt.Sprintf("%v: must be at least %d", ErrBelowMin, s.min), ErrBelowMin)
	}
	if value > s.max {
		return apperr.ValidationCause(key, fmt.Sprintf("%v: must be at most %d", ErrAboveMax, s.max), ErrAboveMax)
	}
	return put(db.DB, key, strconv.Itoa(value))
}

func put(gdb *gorm.DB, key, value string) error {
	setting := db.Setting{Name: key, Value: value}
	err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value"}),
	}).Create(&setting).Error
	if err != nil {
		return apperr.Store("saving setting "+key, err)
	}
	logger.Info("setting saved", "key", key, "value", value)
	return nil
}

// Apply adjusts key by op and persists the result when it changed. It returns
// the resulting value and whether anything was written.
func Apply(key string, op Op, value int) (int, bool, error) {
	s, ok := known[key]
	if !ok {
		return 0, false, apperr.Validation("setting", fmt.Sprintf("unknown key %q", key))
	}
	current, err := Int(key)
	if err != nil {
		return current, false, err
	}

	next, changed, err := applyValue(current, op, value, s.min, s.max)
	if err != nil {
		return current, false, apperr.ValidationCause(key, fmt.Sprintf("%v (allowed %d..%d)", err, s.min, s.max), err)
	}
	if !changed {
		return current, false, nil
	}
	if err := put(db.DB, key, strconv.Itoa(next)); err != nil {
		return current, false, err
	}
	return next, true, nil
}

func applyValue(current int, op Op, value int, min, max int) (int, bool, error) {
	switch op {
	case OpInc:
		return clampValue(current, current+1, min, max)
	case OpDec:
		return clampValue(current, current-1, min, max)
	case OpSet:
		return clampValue(current, value, min, max)
	default:
		return current, false, ErrInvalidAction
	}
}

func clampValue(current, next, min, max int) (int, bool, error) {
	if next < min {
		return current, false, ErrBelowMin
	}
	if next > max {
		return current, false, ErrAboveMax
	}
	if next == current {
		return current, false, nil
	}
	return next, true, nil
}
