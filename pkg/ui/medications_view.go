package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/depletion"
)

var tableHeader = []string{"ID", "NAME", "USER", "DAILY", "PER PACK", "PACKS", "PURCHASED", "RUNS OUT", "NOTES"}

// RenderMedicationTable lays records out as aligned columns in the order
// given.
func RenderMedicationTable(meds []db.Medication) string {
	if len(meds) == 0 {
		return "No medications recorded.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(tableHeader, "\t"))
	for _, med := range meds {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			med.ID,
			med.NameSpec,
			med.UserName,
			FormatDose(med.DailyDose),
			FormatCount(med.PackSize),
			FormatCount(med.PacksPurchased),
			med.PurchaseDate,
			med.NextPurchaseDate,
			singleLine(med.Notes),
		)
	}
	w.Flush()
	fmt.Fprintf(&b, "\n%d medication(s)\n", len(meds))
	return b.String()
}

// RenderMedicationDetail shows one record including its computed supply.
func RenderMedicationDetail(med db.Medication) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s\n", med.ID, med.NameSpec)
	fmt.Fprintf(&b, "  User:           %s\n", med.UserName)
	fmt.Fprintf(&b, "  Daily dose:     %s pill(s)\n", FormatDose(med.DailyDose))
	fmt.Fprintf(&b, "  Pack size:      %s pill(s)\n", FormatCount(med.PackSize))
	fmt.Fprintf(&b, "  Packs bought:   %s\n", FormatCount(med.PacksPurchased))
	if supply, err := depletion.ComputeSupply(med.DailyDose, med.PackSize, med.PacksPurchased); err == nil {
		fmt.Fprintf(&b, "  Supply:         %s pills, %s\n", FormatCount(supply.TotalPills), FormatDays(supply.DaysSupply))
	}
	fmt.Fprintf(&b, "  Purchased:      %s\n", med.PurchaseDate)
	fmt.Fprintf(&b, "  Runs out:       %s\n", med.NextPurchaseDate)
	if med.Notes != "" {
		fmt.Fprintf(&b, "  Notes:          %s\n", med.Notes)
	}
	return b.String()
}

func singleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
