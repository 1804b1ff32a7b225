// Package depletion projects when a purchased supply of pills runs out.
package depletion

import (
	"math"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/calendar"
)

const (
	microsPerDay = 24 * 60 * 60 * 1_000_000

	// maxSupplyDays keeps the projection inside four-digit years.
	maxSupplyDays = 3_000_000
	maxYear       = 9999
)

// Supply is the intermediate arithmetic behind a projected depletion date.
type Supply struct {
	TotalPills int
	DaysSupply float64
}

func ComputeSupply(dailyDose float64, packSize, packsPurchased int) (Supply, error) {
	if math.IsNaN(dailyDose) || math.IsInf(dailyDose, 0) || dailyDose <= 0 {
		return Supply{}, apperr.Calculation("daily dose must be a positive number", nil)
	}
	if packSize <= 0 {
		return Supply{}, apperr.Calculation("pack size must be positive", nil)
	}
	if packsPurchased <= 0 {
		return Supply{}, apperr.Calculation("packs purchased must be positive", nil)
	}

	total := packsPurchased * packSize
	if total/packSize != packsPurchased {
		return Supply{}, apperr.Calculation("total pill count is too large", nil)
	}
	return Supply{
		TotalPills: total,
		DaysSupply: float64(total) / dailyDose,
	}, nil
}

// NextPurchaseDate returns purchaseDate plus the days the supply lasts.
// Fractional days count at microsecond resolution and the result is cut back to
// its calendar date, so 7.5 days from Jan 1 lands on Jan 8.
func NextPurchaseDate(dailyDose float64, packSize, packsPurchased int, purchaseDate calendar.Date) (calendar.Date, error) {
	if purchaseDate.IsZero() {
		return calendar.Date{}, apperr.Calculation("purchase date is missing", nil)
	}
	supply, err := ComputeSupply(dailyDose, packSize, packsPurchased)
	if err != nil {
		return calendar.Date{}, err
	}
	if supply.DaysSupply > maxSupplyDays {
		return calendar.Date{}, apperr.Calculation("supply lasts beyond the supported date range", nil)
	}

	micros := int64(math.Round(supply.DaysSupply * microsPerDay))
	next := purchaseDate.AddDays(int(micros / microsPerDay))
	if next.Year() > maxYear {
		return calendar.Date{}, apperr.Calculation("supply lasts beyond the supported date range", nil)
	}
	return next, nil
}

func NextPurchaseDateString(dailyDose float64, packSize, packsPurchased int, purchaseDate string) (calendar.Date, error) {
	parsed, err := calendar.Parse(purchaseDate)
	if err != nil {
		return calendar.Date{}, apperr.Calculation("purchase date is not a valid YYYY-MM-DD date", err)
	}
	return NextPurchaseDate(dailyDose, packSize, packsPurchased, parsed)
}
