package ui

import (
	"fmt"
	"strings"

	"github.com/smith3v/family-medicine-manager/pkg/reminders"
)

const checkedAtLayout = "2006-01-02 15:04:05"

const NothingDue = "No medications need to be bought right now.\nEvery supply lasts beyond the reminder window."

var sections = []struct {
	status reminders.Status
	title  string
}{
	{reminders.Expired, "Ran out:"},
	{reminders.DueToday, "Buy today:"},
	{reminders.DueTomorrow, "Buy tomorrow:"},
	{reminders.Upcoming, "Running low:"},
}

// RenderPurchaseList renders a full report grouped by status.
func RenderPurchaseList(report reminders.Report) string {
	if report.Empty() {
		return NothingDue + "\n"
	}

	var b strings.Builder
	b.WriteString("=== Medications to buy ===\n\n")
	fmt.Fprintf(&b, "Checked at: %s\n", report.CheckedAt.Format(checkedAtLayout))
	fmt.Fprintf(&b, "Look-ahead: %s (through %s)\n", pluralDays(report.LookAheadDays), report.Threshold)
	fmt.Fprintf(&b, "Medications to buy: %d\n\n", len(report.Items))

	for _, section := range sections {
		items := report.ByStatus(section.status)
		if len(items) == 0 {
			continue
		}
		b.WriteString(section.title + "\n")
		for _, item := range items {
			med := item.Medication
			fmt.Fprintf(&b, "  * %s (for %s)\n", med.NameSpec, med.UserName)
			fmt.Fprintf(&b, "    Runs out: %s%s\n", med.NextPurchaseDate, daysNote(item))
			if med.Notes != "" {
				fmt.Fprintf(&b, "    Notes: %s\n", med.Notes)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderReminder is the short text shown by the automatic reminder.
func RenderReminder(report reminders.Report) string {
	var b strings.Builder
	b.WriteString("These medications need to be bought:\n\n")
	for _, item := range report.Items {
		med := item.Medication
		fmt.Fprintf(&b, "* %s (for %s)\n", med.NameSpec, med.UserName)
		fmt.Fprintf(&b, "  Runs out: %s (%s)\n\n", med.NextPurchaseDate, StatusText(item.DaysLeft))
	}
	return b.String()
}

// StatusText describes how far away a depletion date is.
func StatusText(daysLeft int) string {
	switch reminders.Classify(daysLeft) {
	case reminders.Expired:
		return fmt.Sprintf("ran out %s ago", pluralDays(-daysLeft))
	case reminders.DueToday:
		return "buy today"
	case reminders.DueTomorrow:
		return "buy tomorrow"
	default:
		return pluralDays(daysLeft) + " left"
	}
}

func daysNote(item reminders.DueMedication) string {
	switch item.Status {
	case reminders.Expired, reminders.Upcoming:
		return " (" + StatusText(item.DaysLeft) + ")"
	default:
		return ""
	}
}
