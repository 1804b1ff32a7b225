package medications

import (
	"math"
	"strconv"
	"strings"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/db"
)

// RawInput carries field values exactly as the presentation layer collected
// them.
type RawInput struct {
	NameSpec       string
	UserName       string
	DailyDose      string
	PackSize       string
	PacksPurchased string
	PurchaseDate   string
	Notes          string
}

type Input struct {
	NameSpec       string
	UserName       string
	DailyDose      float64
	PackSize       int
	PacksPurchased int
	PurchaseDate   string
	Notes          string
}

func (r RawInput) Parse() (Input, error) {
	dose, err := strconv.ParseFloat(strings.TrimSpace(r.DailyDose), 64)
	if err != nil {
		return Input{}, apperr.Validation("daily dose", "must be a number")
	}
	packSize, err := strconv.Atoi(strings.TrimSpace(r.PackSize))
	if err != nil {
		return Input{}, apperr.Validation("pack size", "must be a whole number")
	}
	packs, err := strconv.Atoi(strings.TrimSpace(r.PacksPurchased))
	if err != nil {
		return Input{}, apperr.Validation("packs purchased", "must be a whole number")
	}
	in := Input{
		NameSpec:       r.NameSpec,
		UserName:       r.UserName,
		DailyDose:      dose,
		PackSize:       packSize,
		PacksPurchased: packs,
		PurchaseDate:   r.PurchaseDate,
		Notes:          r.Notes,
	}
	return in.normalize(), nil
}

func (in Input) normalize() Input {
	in.NameSpec = strings.TrimSpace(in.NameSpec)
	in.UserName = strings.TrimSpace(in.UserName)
	in.PurchaseDate = strings.TrimSpace(in.PurchaseDate)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// validate checks everything that does not need the store. Date parsing is
// left to the depletion calculator, which reports it as a calculation error.
func (in Input) validate() error {
	if in.NameSpec == "" {
		return apperr.Validation("name", "is required")
	}
	if in.UserName == "" {
		return apperr.Validation("user", "is required")
	}
	if math.IsNaN(in.DailyDose) || math.IsInf(in.DailyDose, 0) || in.DailyDose <= 0 {
		return apperr.Validation("daily dose", "must be a positive number")
	}
	if in.PackSize <= 0 {
		return apperr.Validation("pack size", "must be positive")
	}
	if in.PacksPurchased <= 0 {
		return apperr.Validation("packs purchased", "must be positive")
	}
	if in.PurchaseDate == "" {
		return apperr.Validation("purchase date", "is required")
	}
	return nil
}

// InputFrom returns the editable fields of an existing record, so callers
// can change a subset and pass the rest through unchanged.
func InputFrom(med db.Medication) Input {
	return Input{
		NameSpec:       med.NameSpec,
		UserName:       med.UserName,
		DailyDose:      med.DailyDose,
		PackSize:       med.PackSize,
		PacksPurchased: med.PacksPurchased,
		PurchaseDate:   med.PurchaseDate.String(),
		Notes:          med.Notes,
	}
}
