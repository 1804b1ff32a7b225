// Package importexport moves medication records in and out of CSV files.
package importexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/medications"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column order of exported files. Imports read the same positions; the next
// purchase date column is ignored and recomputed.
var Header = []string{
	"name_spec",
	"user_name",
	"daily_pills",
	"pills_per_box",
	"boxes_purchased",
	"purchase_date",
	"next_purchase_date",
	"notes",
}

const (
	colName = iota
	colUser
	colDose
	colPackSize
	colPacks
	colPurchaseDate
	colNextPurchaseDate
	colNotes
)

const (
	minColumns                = colPurchaseDate + 1
	maxDelimiterSampleRecords = 20
)

// Row is one data line of an import file.
type Row struct {
	Line  int
	Input medications.RawInput
}

// ParseMedicationsCSV decodes data into rows. A byte order mark (UTF-8 or
// UTF-16) is honoured, the delimiter is guessed from ',', tab and ';', and
// a header line is skipped. It returns the number of blank or short rows it
// skipped.
func ParseMedicationsCSV(data []byte) ([]Row, int, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode CSV: %w", err)
	}
	delimiter := detectCSVDelimiter(decoded)

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var rows []Row
	skipped := 0
	checkedHeader := false

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		line, _ := reader.FieldPos(0)
		if isEmptyCSVRecord(record) {
			skipped++
			continue
		}
		if !checkedHeader {
			checkedHeader = true
			if isHeaderRecord(record) {
				continue
			}
		}
		if len(record) < minColumns || strings.TrimSpace(record[colName]) == "" {
			skipped++
			continue
		}

		in := medications.RawInput{
			NameSpec:       record[colName],
			UserName:       record[colUser],
			DailyDose:      record[colDose],
			PackSize:       record[colPackSize],
			PacksPurchased: record[colPacks],
			PurchaseDate:   record[colPurchaseDate],
		}
		if len(record) > colNotes {
			in.Notes = record[colNotes]
		}
		rows = append(rows, Row{Line: line, Input: in})
	}

	return rows, skipped, nil
}

func detectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', '\t', ';'}
	bestDelimiter := candidates[0]
	bestScore := -1

	for _, delimiter := range candidates {
		score, err := scoreDelimiter(data, delimiter, maxDelimiterSampleRecords)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestDelimiter = delimiter
		}
	}

	if bestScore <= 0 {
		return ','
	}
	return bestDelimiter
}

// scoreDelimiter counts how many sampled records share the most common
// field count, ignoring records that do not reach minColumns.
func scoreDelimiter(data []byte, delimiter rune, maxRecords int) (int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	counts := make(map[int]int)
	recordsSeen := 0

	for recordsSeen < maxRecords {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if isEmptyCSVRecord(record) {
			continue
		}
		recordsSeen++

		if len(record) < minColumns {
			continue
		}
		counts[len(record)]++
	}

	best := 0
	for _, score := range counts {
		if score > best {
			best = score
		}
	}
	return best, nil
}

func isEmptyCSVRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func isHeaderRecord(record []string) bool {
	if len(record) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[colName]))
	second := strings.ToLower(strings.TrimSpace(record[colUser]))
	names := map[string]struct{}{"name_spec": {}, "name": {}, "medication": {}}
	users := map[string]struct{}{"user_name": {}, "user": {}}
	_, firstOK := names[first]
	_, secondOK := users[second]
	return firstOK && secondOK
}

// BuildExportCSV writes meds with a header line, a UTF-8 byte order mark and
// CRLF line endings, so spreadsheet programs open it as UTF-8.
func BuildExportCSV(meds []db.Medication) ([]byte, error) {
	var buf bytes.Buffer
	encoded := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())

	writer := csv.NewWriter(encoded)
	writer.UseCRLF = true

	if err := writer.Write(Header); err != nil {
		return nil, err
	}
	for _, med := range meds {
		record := []string{
			med.NameSpec,
			med.UserName,
			fmt.Sprint(med.DailyDose),
			fmt.Sprint(med.PackSize),
			fmt.Sprint(med.PacksPurchased),
			med.PurchaseDate.String(),
			med.NextPurchaseDate.String(),
			med.Notes,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	if err := encoded.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExportFilename(now time.Time) string {
	return fmt.Sprintf("medications-%s.csv", now.Format("20060102"))
}
