package settings

import (
	"errors"
	"testing"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/internal/testutil"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
)

func TestDefaultsAfterMigration(t *testing.T) {
	testutil.SetupTestDB(t)

	values, err := Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values.ReminderDays != 2 || values.ReminderInterval != 5 {
		t.Fatalf("expected defaults 2/5, got %+v", values)
	}
}

func TestSetOverwritesAndIsReadBack(t *testing.T) {
	testutil.SetupTestDB(t)

	if err := Set(db.SettingReminderInterval, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Set(db.SettingReminderInterval, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ReminderInterval()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected interval 7, got %d", got)
	}

	var count int64
	if err := db.DB.Model(&db.Setting{}).Where("setting_name = ?", db.SettingReminderInterval).Count(&count).Error; err != nil {
		t.Fatalf("failed to count settings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single reminder_interval row, got %d", count)
	}
}

func TestSetRejectsOutOfRange(t *testing.T) {
	testutil.SetupTestDB(t)

	tests := []struct {
		key   string
		value int
		cause error
	}{
		{db.SettingReminderDays, 0, ErrBelowMin},
		{db.SettingReminderDays, 15, ErrAboveMax},
		{db.SettingReminderInterval, -1, ErrBelowMin},
		{db.SettingReminderInterval, 61, ErrAboveMax},
		{"theme", 1, nil},
	}
	for _, tt := range tests {
		err := Set(tt.key, tt.value)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("Set(%s, %d): expected validation error, got %v", tt.key, tt.value, err)
		}
		if tt.cause != nil && !errors.Is(err, tt.cause) {
			t.Fatalf("Set(%s, %d): expected %v, got %v", tt.key, tt.value, tt.cause, err)
		}
	}

	values, err := Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values.ReminderDays != 2 || values.ReminderInterval != 5 {
		t.Fatalf("expected rejected writes to leave defaults, got %+v", values)
	}
}

func TestMalformedStoredValueFallsBackToDefault(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)
	t.Cleanup(func() { logger.SetLogLevel(logger.INFO) })

	for _, raw := range []string{"", "abc", "0", "-3"} {
		if err := db.DB.Model(&db.Setting{}).Where("setting_name = ?", db.SettingReminderDays).
			Update("setting_value", raw).Error; err != nil {
			t.Fatalf("failed to corrupt setting: %v", err)
		}
		got, err := ReminderDays()
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if got != db.DefaultReminderDays {
			t.Fatalf("expected default for %q, got %d", raw, got)
		}
	}
}

func TestMissingRowFallsBackToDefault(t *testing.T) {
	testutil.SetupTestDB(t)

	if err := db.DB.Where("setting_name = ?", db.SettingReminderInterval).Delete(&db.Setting{}).Error; err != nil {
		t.Fatalf("failed to delete setting: %v", err)
	}
	got, err := ReminderInterval()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != db.DefaultReminderInterval {
		t.Fatalf("expected default interval, got %d", got)
	}

	if err := Set(db.SettingReminderInterval, 9); err != nil {
		t.Fatalf("expected upsert to recreate the row: %v", err)
	}
	if got, _ := ReminderInterval(); got != 9 {
		t.Fatalf("expected 9 after recreating, got %d", got)
	}
}

func TestApply(t *testing.T) {
	testutil.SetupTestDB(t)

	next, changed, err := Apply(db.SettingReminderDays, OpInc, 0)
	if err != nil || !changed || next != 3 {
		t.Fatalf("inc: expected 3 changed, got %d changed=%v err=%v", next, changed, err)
	}

	next, changed, err = Apply(db.SettingReminderDays, OpSet, 3)
	if err != nil || changed || next != 3 {
		t.Fatalf("set same: expected 3 unchanged, got %d changed=%v err=%v", next, changed, err)
	}

	if err := Set(db.SettingReminderInterval, MinReminderInterval); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, changed, err = Apply(db.SettingReminderInterval, OpDec, 0)
	if !errors.Is(err, apperr.ErrValidation) || !errors.Is(err, ErrBelowMin) || changed {
		t.Fatalf("dec below min: expected validation error, got changed=%v err=%v", changed, err)
	}

	_, _, err = Apply(db.SettingReminderDays, OpSet, 99)
	if !errors.Is(err, ErrAboveMax) {
		t.Fatalf("set above max: expected %v, got %v", ErrAboveMax, err)
	}

	_, _, err = Apply(db.SettingReminderInterval, Op("double"), 0)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown op: expected validation error, got %v", err)
	}
}

func TestClampValue(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		next        int
		wantValue   int
		wantChanged bool
		wantErr     error
	}{
		{"within range", 5, 6, 6, true, nil},
		{"unchanged", 5, 5, 5, false, nil},
		{"below min", 1, 0, 1, false, ErrBelowMin},
		{"above max", 60, 61, 60, false, ErrAboveMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := clampValue(tt.current, tt.next, 1, 60)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.wantValue || changed != tt.wantChanged {
				t.Fatalf("expected %d changed=%v, got %d changed=%v", tt.wantValue, tt.wantChanged, got, changed)
			}
		})
	}
}

func TestParseOp(t *testing.T) {
	if op, err := ParseOp(" INC "); err != nil || op != OpInc {
		t.Fatalf("expected inc, got %q err=%v", op, err)
	}
	if _, err := ParseOp("toggle"); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected invalid action, got %v", err)
	}
}
