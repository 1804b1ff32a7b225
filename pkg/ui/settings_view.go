package ui

import (
	"fmt"
	"strings"

	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/settings"
)

var settingLabels = map[string]string{
	db.SettingReminderDays:     "Look-ahead window",
	db.SettingReminderInterval: "Reminder interval",
}

func RenderSettings(values settings.Values) string {
	var b strings.Builder
	b.WriteString("Settings\n")
	fmt.Fprintf(&b, "- %s: %s\n", settingLabels[db.SettingReminderDays], formatSettingValue(db.SettingReminderDays, values.ReminderDays))
	fmt.Fprintf(&b, "- %s: %s\n", settingLabels[db.SettingReminderInterval], formatSettingValue(db.SettingReminderInterval, values.ReminderInterval))
	return b.String()
}

// RenderSetting shows one setting with its allowed range, after a change or
// on request.
func RenderSetting(key string, value int, changed bool) string {
	label, ok := settingLabels[key]
	if !ok {
		label = key
	}
	min, max, _ := settings.Bounds(key)

	text := fmt.Sprintf("%s\nCurrent value: %s (allowed %d..%d)", label, formatSettingValue(key, value), min, max)
	if !changed {
		text += "\nNo change."
	}
	return text + "\n"
}

func formatSettingValue(key string, value int) string {
	switch key {
	case db.SettingReminderDays:
		return pluralDays(value)
	case db.SettingReminderInterval:
		if value == 1 {
			return "every minute"
		}
		return fmt.Sprintf("every %d minutes", value)
	default:
		return fmt.Sprint(value)
	}
}
