package importexport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"github.com/smith3v/family-medicine-manager/pkg/medications"
)

type RowError struct {
	Line int
	Name string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s): %s", e.Line, e.Name, apperr.UserMessage(e.Err))
}

func (e RowError) Unwrap() error { return e.Err }

type Result struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   []RowError
}

func (r Result) Summary() string {
	return fmt.Sprintf("Imported %d new medications, updated %d, skipped %d rows, %d failed.",
		r.Inserted, r.Updated, r.Skipped, len(r.Failed))
}

// Import upserts rows by name through the regular create and update paths,
// so every imported record gets a freshly computed next purchase date. A bad
// row is recorded in the result and does not stop the import.
func Import(rows []Row) (Result, error) {
	var result Result
	for _, row := range rows {
		name := strings.TrimSpace(row.Input.NameSpec)

		in, err := row.Input.Parse()
		if err != nil {
			result.Failed = append(result.Failed, RowError{Line: row.Line, Name: name, Err: err})
			continue
		}

		existing, found, err := medications.FindByName(in.NameSpec)
		if err != nil {
			return result, err
		}
		if found {
			_, err = medications.Update(existing.ID, in)
		} else {
			_, err = medications.Create(in)
		}
		if err != nil {
			if errors.Is(err, apperr.ErrStore) {
				return result, err
			}
			result.Failed = append(result.Failed, RowError{Line: row.Line, Name: name, Err: err})
			continue
		}
		if found {
			result.Updated++
		} else {
			result.Inserted++
		}
	}
	return result, nil
}

// ImportFile reads and imports a CSV file.
func ImportFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	rows, skipped, err := ParseMedicationsCSV(data)
	if err != nil {
		return Result{}, apperr.Validation("file", fmt.Sprintf("not a readable CSV file: %v", err))
	}
	result, err := Import(rows)
	result.Skipped = skipped
	if err != nil {
		return result, err
	}
	logger.Info("medications imported", "file", path, "inserted", result.Inserted, "updated", result.Updated,
		"skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

// ExportFile writes every record to dir under a dated name and returns the
// file path.
func ExportFile(dir string, now time.Time) (string, int, error) {
	meds, err := medications.List()
	if err != nil {
		return "", 0, err
	}
	data, err := BuildExportCSV(meds)
	if err != nil {
		return "", 0, fmt.Errorf("build export: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("medications exported", "file", path, "count", len(meds))
	return path, len(meds), nil
}
