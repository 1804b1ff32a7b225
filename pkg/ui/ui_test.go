package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/calendar"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/reminders"
	"github.com/smith3v/family-medicine-manager/pkg/settings"
)

func med(id uint, name, user, next, notes string) db.Medication {
	return db.Medication{
		ID:               id,
		NameSpec:         name,
		UserName:         user,
		DailyDose:        0.5,
		PackSize:         1200,
		PacksPurchased:   2,
		PurchaseDate:     calendar.MustParse("2024-01-01"),
		NextPurchaseDate: calendar.MustParse(next),
		Notes:            notes,
	}
}

func sampleReport() reminders.Report {
	asOf := calendar.MustParse("2024-01-15")
	items := []reminders.DueMedication{}
	for _, m := range []db.Medication{
		med(1, "Aspirin 100mg", "Grandma", "2024-01-12", "blister in drawer"),
		med(2, "Metformin 500mg", "Dad", "2024-01-15", ""),
		med(3, "Lisinopril 10mg", "Mom", "2024-01-16", ""),
		med(4, "Vitamin D", "Kid", "2024-01-17", ""),
	} {
		left := asOf.DaysUntil(m.NextPurchaseDate)
		items = append(items, reminders.DueMedication{Medication: m, DaysLeft: left, Status: reminders.Classify(left)})
	}
	return reminders.Report{
		CheckedAt:     time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		AsOf:          asOf,
		LookAheadDays: 2,
		Threshold:     asOf.AddDays(2),
		Items:         items,
	}
}

func assertContainsInOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	rest := text
	for _, part := range parts {
		idx := strings.Index(rest, part)
		if idx < 0 {
			t.Fatalf("expected %q after previous parts in:\n%s", part, text)
		}
		rest = rest[idx+len(part):]
	}
}

func TestRenderPurchaseListGroupsByStatus(t *testing.T) {
	text := RenderPurchaseList(sampleReport())

	assertContainsInOrder(t, text,
		"Checked at: 2024-01-15 09:30:00",
		"Look-ahead: 2 days (through 2024-01-17)",
		"Medications to buy: 4",
		"Ran out:", "Aspirin 100mg (for Grandma)", "(ran out 3 days ago)", "Notes: blister in drawer",
		"Buy today:", "Metformin 500mg",
		"Buy tomorrow:", "Lisinopril 10mg",
		"Running low:", "Vitamin D", "(2 days left)",
	)
}

func TestRenderPurchaseListEmpty(t *testing.T) {
	text := RenderPurchaseList(reminders.Report{LookAheadDays: 2})
	if !strings.HasPrefix(text, NothingDue) {
		t.Fatalf("expected nothing-due message, got %q", text)
	}
}

func TestRenderReminder(t *testing.T) {
	text := RenderReminder(sampleReport())
	assertContainsInOrder(t, text,
		"Aspirin 100mg (for Grandma)", "Runs out: 2024-01-12 (ran out 3 days ago)",
		"Metformin 500mg", "(buy today)",
		"Lisinopril 10mg", "(buy tomorrow)",
		"Vitamin D", "(2 days left)",
	)
}

func TestStatusText(t *testing.T) {
	tests := map[int]string{
		-1: "ran out 1 day ago",
		0:  "buy today",
		1:  "buy tomorrow",
		5:  "5 days left",
	}
	for daysLeft, want := range tests {
		if got := StatusText(daysLeft); got != want {
			t.Fatalf("StatusText(%d) = %q, want %q", daysLeft, got, want)
		}
	}
}

func TestRenderMedicationTable(t *testing.T) {
	text := RenderMedicationTable([]db.Medication{
		med(7, "Aspirin 100mg", "Grandma", "2028-05-25", "line one\nline two"),
	})
	assertContainsInOrder(t, text, "ID", "NAME", "RUNS OUT", "7", "Aspirin 100mg", "0.5", "1,200", "2024-01-01", "2028-05-25", "line one line two", "1 medication(s)")

	if got := RenderMedicationTable(nil); !strings.Contains(got, "No medications") {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestRenderMedicationDetail(t *testing.T) {
	text := RenderMedicationDetail(med(3, "Warfarin", "Grandpa", "2037-02-19", ""))
	assertContainsInOrder(t, text, "#3 Warfarin", "Grandpa", "0.5 pill(s)", "Supply:         2,400 pills, 4800 days", "Runs out:       2037-02-19")
	if strings.Contains(text, "Notes:") {
		t.Fatalf("expected no notes line, got:\n%s", text)
	}
}

func TestRenderSettings(t *testing.T) {
	text := RenderSettings(settings.Values{ReminderDays: 1, ReminderInterval: 5})
	assertContainsInOrder(t, text, "Look-ahead window: 1 day", "Reminder interval: every 5 minutes")

	text = RenderSetting(db.SettingReminderInterval, 60, false)
	assertContainsInOrder(t, text, "Reminder interval", "every 60 minutes (allowed 1..60)", "No change.")
}

func TestFormatDose(t *testing.T) {
	tests := map[float64]string{2: "2", 0.5: "0.5", 1.25: "1.25", 0.333333: "0.333"}
	for dose, want := range tests {
		if got := FormatDose(dose); got != want {
			t.Fatalf("FormatDose(%v) = %q, want %q", dose, got, want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	tests := map[float64]string{
		1:    "1 day",
		0.98: "1 day",
		15:   "15 days",
		7.5:  "7.5 days",
		1.5:  "1.5 days",
		0.5:  "0.5 days",
		0:    "0 days",
	}
	for days, want := range tests {
		if got := FormatDays(days); got != want {
			t.Fatalf("FormatDays(%v) = %q, want %q", days, got, want)
		}
	}
}
