// Package medications implements create, update, delete and search over the
// medication records. Every write recomputes the next purchase date.
package medications

import (
	"errors"
	"strings"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/calendar"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/depletion"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

const listOrder = "purchase_date ASC, id ASC"

// errAbort marks a transaction rolled back for a reason already reported to
// the caller through its own error value.
var errAbort = errors.New("abort")

func Create(in Input) (db.Medication, error) {
	med, err := build(in)
	if err != nil {
		return db.Medication{}, err
	}

	var userErr error
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if userErr = checkUniqueName(tx, med.NameSpec, 0); userErr != nil {
			return errAbort
		}
		return tx.Create(&med).Error
	})
	if userErr != nil {
		return db.Medication{}, userErr
	}
	if err != nil {
		return db.Medication{}, storeErr("creating medication", err)
	}

	logger.Info("medication added", "id", med.ID, "name", med.NameSpec, "next_purchase_date", med.NextPurchaseDate)
	return med, nil
}

func Update(id uint, in Input) (db.Medication, error) {
	med, err := build(in)
	if err != nil {
		return db.Medication{}, err
	}
	med.ID = id

	var userErr error
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var existing db.Medication
		if err := tx.Limit(1).Find(&existing, id).Error; err != nil {
			return err
		}
		if existing.ID == 0 {
			userErr = apperr.ErrNotFound
			return errAbort
		}
		if userErr = checkUniqueName(tx, med.NameSpec, id); userErr != nil {
			return errAbort
		}
		return tx.Save(&med).Error
	})
	if userErr != nil {
		return db.Medication{}, userErr
	}
	if err != nil {
		return db.Medication{}, storeErr("updating medication", err)
	}

	logger.Info("medication changed", "id", med.ID, "name", med.NameSpec, "next_purchase_date", med.NextPurchaseDate)
	return med, nil
}

func Delete(id uint) error {
	res := db.DB.Delete(&db.Medication{}, id)
	if res.Error != nil {
		return storeErr("deleting medication", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	logger.Info("medication deleted", "id", id)
	return nil
}

func Get(id uint) (db.Medication, error) {
	var med db.Medication
	if err := db.DB.Limit(1).Find(&med, id).Error; err != nil {
		return db.Medication{}, storeErr("reading medication", err)
	}
	if med.ID == 0 {
		return db.Medication{}, apperr.ErrNotFound
	}
	return med, nil
}

// FindByName returns the record whose name matches exactly, if any.
func FindByName(name string) (db.Medication, bool, error) {
	var med db.Medication
	if err := db.DB.Where("name_spec = ?", name).Limit(1).Find(&med).Error; err != nil {
		return db.Medication{}, false, storeErr("reading medication", err)
	}
	return med, med.ID != 0, nil
}

// List returns every record by ascending purchase date, oldest first.
func List() ([]db.Medication, error) {
	var meds []db.Medication
	if err := db.DB.Order(listOrder).Find(&meds).Error; err != nil {
		return nil, storeErr("listing medications", err)
	}
	return meds, nil
}

// Search keeps the records of List whose name, user or notes contain term,
// ignoring case. An empty term returns the full listing.
func Search(term string) ([]db.Medication, error) {
	meds, err := List()
	if err != nil {
		return nil, err
	}
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(term))
	if needle == "" {
		return meds, nil
	}

	matched := make([]db.Medication, 0, len(meds))
	for _, med := range meds {
		if containsFolded(folder, med.NameSpec, needle) ||
			containsFolded(folder, med.UserName, needle) ||
			containsFolded(folder, med.Notes, needle) {
			matched = append(matched, med)
		}
	}
	return matched, nil
}

func build(in Input) (db.Medication, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return db.Medication{}, err
	}
	next, err := depletion.NextPurchaseDateString(in.DailyDose, in.PackSize, in.PacksPurchased, in.PurchaseDate)
	if err != nil {
		return db.Medication{}, err
	}
	// The calculator accepted the date, so it parses.
	purchase, _ := calendar.Parse(in.PurchaseDate)

	return db.Medication{
		NameSpec:         in.NameSpec,
		UserName:         in.UserName,
		DailyDose:        in.DailyDose,
		PackSize:         in.PackSize,
		PacksPurchased:   in.PacksPurchased,
		PurchaseDate:     purchase,
		NextPurchaseDate: next,
		Notes:            in.Notes,
	}, nil
}

func checkUniqueName(tx *gorm.DB, name string, exceptID uint) error {
	var other db.Medication
	q := tx.Where("name_spec = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Limit(1).Find(&other).Error; err != nil {
		return storeErr("checking medication name", err)
	}
	if other.ID != 0 {
		return apperr.DuplicateName(name, other.ID)
	}
	return nil
}

func storeErr(op string, err error) error {
	logger.Error("medication store failure", "op", op, "error", err)
	return apperr.Store(op, err)
}

func containsFolded(folder cases.Caser, value, needle string) bool {
	return value != "" && strings.Contains(folder.String(value), needle)
}
