package reminders

import (
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/calendar"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/settings"
)

// Status groups due medications for presentation. It never affects which
// records are selected.
type Status int

const (
	Expired Status = iota
	DueToday
	DueTomorrow
	Upcoming
)

func (s Status) String() string {
	switch s {
	case Expired:
		return "expired"
	case DueToday:
		return "due today"
	case DueTomorrow:
		return "due tomorrow"
	default:
		return "upcoming"
	}
}

func Classify(daysLeft int) Status {
	switch {
	case daysLeft < 0:
		return Expired
	case daysLeft == 0:
		return DueToday
	case daysLeft == 1:
		return DueTomorrow
	default:
		return Upcoming
	}
}

type DueMedication struct {
	Medication db.Medication
	DaysLeft   int
	Status     Status
}

// Report is the outcome of one check.
type Report struct {
	CheckedAt     time.Time
	AsOf          calendar.Date
	LookAheadDays int
	Threshold     calendar.Date
	Items         []DueMedication
}

func (r Report) Empty() bool {
	return len(r.Items) == 0
}

// ByStatus returns the items with the given status, keeping their order.
func (r Report) ByStatus(status Status) []DueMedication {
	var out []DueMedication
	for _, item := range r.Items {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out
}

func (r Report) Count(status Status) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// FindDueMedications selects every record whose next purchase date falls on
// or before asOf plus lookAheadDays, earliest first, ties by id.
func FindDueMedications(asOf calendar.Date, lookAheadDays int) ([]DueMedication, error) {
	threshold := asOf.AddDays(lookAheadDays)

	var meds []db.Medication
	err := db.DB.
		Where("next_purchase_date IS NOT NULL AND next_purchase_date <= ?", threshold).
		Order("next_purchase_date ASC, id ASC").
		Find(&meds).Error
	if err != nil {
		return nil, apperr.Store("finding due medications", err)
	}

	items := make([]DueMedication, 0, len(meds))
	for _, med := range meds {
		daysLeft := asOf.DaysUntil(med.NextPurchaseDate)
		items = append(items, DueMedication{
			Medication: med,
			DaysLeft:   daysLeft,
			Status:     Classify(daysLeft),
		})
	}
	return items, nil
}

// Evaluate runs a check as of now using the stored look-ahead window.
func Evaluate(now time.Time) (Report, error) {
	days, err := settings.ReminderDays()
	if err != nil {
		return Report{}, err
	}
	return EvaluateWith(now, days)
}

func EvaluateWith(now time.Time, lookAheadDays int) (Report, error) {
	asOf := calendar.Today(now)
	items, err := FindDueMedications(asOf, lookAheadDays)
	if err != nil {
		return Report{}, err
	}
	return Report{
		CheckedAt:     now,
		AsOf:          asOf,
		LookAheadDays: lookAheadDays,
		Threshold:     asOf.AddDays(lookAheadDays),
		Items:         items,
	}, nil
}
