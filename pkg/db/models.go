// pkg/db/models.go
package db

import "github.com/smith3v/family-medicine-manager/pkg/calendar"

const (
	SettingReminderDays     = "reminder_days"
	SettingReminderInterval = "reminder_interval"

	DefaultReminderDays     = 2
	DefaultReminderInterval = 5 // minutes
)

// Medication is one purchase of one medication for one household member.
// NextPurchaseDate is derived from the dose, pack and date fields and is
// recomputed on every write.
type Medication struct {
	ID               uint          `gorm:"primaryKey"`
	NameSpec         string        `gorm:"column:name_spec;not null;index"` // unique, enforced on write
	UserName         string        `gorm:"column:user_name;not null"`
	DailyDose        float64       `gorm:"column:daily_pills;not null"`
	PackSize         int           `gorm:"column:pills_per_box;not null"`
	PacksPurchased   int           `gorm:"column:boxes_purchased;not null"`
	PurchaseDate     calendar.Date `gorm:"column:purchase_date;not null;index"`
	NextPurchaseDate calendar.Date `gorm:"column:next_purchase_date;not null;index"`
	Notes            string        `gorm:"column:notes"`
}

func (Medication) TableName() string {
	return "medicines"
}

type Setting struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"column:setting_name;uniqueIndex;not null"`
	Value string `gorm:"column:setting_value;not null"`
}

func (Setting) TableName() string {
	return "settings"
}

func DefaultSettings() []Setting {
	return []Setting{
		{Name: SettingReminderDays, Value: "2"},
		{Name: SettingReminderInterval, Value: "5"},
	}
}
