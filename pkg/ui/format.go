package ui

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

// FormatDose prints a daily dose without trailing zeros: 2, 0.5, 1.25.
func FormatDose(dose float64) string {
	return humanize.FtoaWithDigits(dose, 3)
}

func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatDays prints a supply length rounded to one decimal, e.g. "15 days"
// or "7.5 days".
func FormatDays(days float64) string {
	rounded := math.Round(days*10) / 10
	quantity := 2 // fractions read as plural
	if rounded == math.Trunc(rounded) {
		quantity = int(rounded)
	}
	return humanize.Ftoa(rounded) + " " + english.PluralWord(quantity, "day", "days")
}

func pluralDays(n int) string {
	return english.Plural(n, "day", "days")
}
