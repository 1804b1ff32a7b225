package depletion

import (
	"errors"
	"math"
	"testing"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/calendar"
)

func TestNextPurchaseDateExamples(t *testing.T) {
	tests := []struct {
		name     string
		dose     float64
		packSize int
		packs    int
		purchase string
		want     string
	}{
		{"whole days", 2, 10, 3, "2024-01-01", "2024-01-16"},
		{"half pill", 0.5, 20, 1, "2024-03-01", "2024-04-10"},
		{"quarter pill", 0.25, 7, 1, "2024-02-01", "2024-02-29"},
		{"fractional supply truncates", 4, 10, 3, "2024-01-01", "2024-01-08"},
		{"tenth of a pill rounds to whole day", 0.1, 30, 1, "2024-01-01", "2024-10-27"},
		{"leap day", 1, 30, 2, "2024-01-01", "2024-03-01"},
		{"year boundary", 3, 30, 1, "2023-12-25", "2024-01-04"},
		{"unpadded purchase date", 1, 10, 1, "2024-1-5", "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextPurchaseDateString(tt.dose, tt.packSize, tt.packs, tt.purchase)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestComputeSupply(t *testing.T) {
	supply, err := ComputeSupply(2, 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if supply.TotalPills != 30 || supply.DaysSupply != 15 {
		t.Fatalf("expected 30 pills lasting 15 days, got %+v", supply)
	}
}

func TestNextPurchaseDateErrors(t *testing.T) {
	tests := []struct {
		name     string
		dose     float64
		packSize int
		packs    int
		purchase string
	}{
		{"zero dose", 0, 10, 1, "2024-01-01"},
		{"negative dose", -1, 10, 1, "2024-01-01"},
		{"nan dose", math.NaN(), 10, 1, "2024-01-01"},
		{"infinite dose", math.Inf(1), 10, 1, "2024-01-01"},
		{"zero pack size", 1, 0, 1, "2024-01-01"},
		{"zero packs", 1, 10, 0, "2024-01-01"},
		{"bad date", 1, 10, 1, "2024-13-01"},
		{"empty date", 1, 10, 1, ""},
		{"beyond year 9999", 0.0001, 1000, 1000, "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextPurchaseDateString(tt.dose, tt.packSize, tt.packs, tt.purchase)
			if !errors.Is(err, apperr.ErrCalculation) {
				t.Fatalf("expected calculation error, got %v", err)
			}
		})
	}
}

func TestNextPurchaseDateZeroDate(t *testing.T) {
	if _, err := NextPurchaseDate(1, 1, 1, calendar.Date{}); !errors.Is(err, apperr.ErrCalculation) {
		t.Fatalf("expected calculation error for zero date, got %v", err)
	}
}

func TestNextPurchaseDateIsDeterministic(t *testing.T) {
	purchase := calendar.MustParse("2024-05-05")
	first, err := NextPurchaseDate(1.5, 28, 2, purchase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := NextPurchaseDate(1.5, 28, 2, purchase)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("expected %s on every call, got %s", first, again)
		}
	}
}

func TestNextPurchaseDateIsMonotonic(t *testing.T) {
	purchase := calendar.MustParse("2024-01-01")
	doses := []float64{0.25, 0.5, 1, 1.5, 2, 3, 7}

	for _, dose := range doses {
		var previous calendar.Date
		for packs := 1; packs <= 12; packs++ {
			next, err := NextPurchaseDate(dose, 10, packs, purchase)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !previous.IsZero() && next.Before(previous) {
				t.Fatalf("more packs moved the date earlier: dose=%v packs=%d %s < %s", dose, packs, next, previous)
			}
			previous = next
		}

		previous = calendar.Date{}
		for size := 1; size <= 60; size++ {
			next, err := NextPurchaseDate(dose, size, 2, purchase)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !previous.IsZero() && next.Before(previous) {
				t.Fatalf("larger packs moved the date earlier: dose=%v size=%d %s < %s", dose, size, next, previous)
			}
			previous = next
		}
	}

	var previous calendar.Date
	for _, dose := range doses {
		next, err := NextPurchaseDate(dose, 30, 3, purchase)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !previous.IsZero() && next.After(previous) {
			t.Fatalf("higher dose moved the date later: dose=%v %s > %s", dose, next, previous)
		}
		previous = next
	}
}
