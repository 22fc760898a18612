package model

import "time"

// ActivityRecord is one logged activity. Rows are immutable once written.
type ActivityRecord struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID      string    `gorm:"column:user_uid;size:128;not null;index:idx_activity_user_logged,priority:1"`
	Category     string    `gorm:"column:category;size:32;not null;index"`
	ActivityType string    `gorm:"column:activity_type;size:64;not null"`
	Quantity     float64   `gorm:"column:quantity;not null"`
	Unit         string    `gorm:"column:unit;size:32;not null"`
	CarbonKg     float64   `gorm:"column:carbon_kg;not null"`
	Note         *string   `gorm:"column:note;type:text"`
	LoggedAt     time.Time `gorm:"column:logged_at;not null;index:idx_activity_user_logged,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (ActivityRecord) TableName() string {
	return "activity_records"
}
