package model

import "time"

type CriteriaKind string

const (
	CriteriaActivityCount  CriteriaKind = "activity_count"
	CriteriaStreakDays     CriteriaKind = "streak_days"
	CriteriaTotalPoints    CriteriaKind = "total_points"
	CriteriaCarbonLoggedKg CriteriaKind = "carbon_logged_kg"
	CriteriaCategoryCount  CriteriaKind = "category_count"
)

func (k CriteriaKind) Valid() bool {
	switch k {
	case CriteriaActivityCount, CriteriaStreakDays, CriteriaTotalPoints, CriteriaCarbonLoggedKg, CriteriaCategoryCount:
		return true
	}
	return false
}

// BadgeCriteria is the unlock rule of a badge. Category is only read by
// CriteriaCategoryCount.
type BadgeCriteria struct {
	Kind      CriteriaKind `gorm:"column:kind;size:32;not null"`
	Threshold float64      `gorm:"column:threshold;not null"`
	Category  *string      `gorm:"column:category;size:32"`
}

type Badge struct {
	ID          uint64        `gorm:"primaryKey;autoIncrement"`
	Name        string        `gorm:"size:120;not null;uniqueIndex:uk_badges_name"`
	Description string        `gorm:"type:text"`
	IconURL     *string       `gorm:"column:icon_url;size:512"`
	Criteria    BadgeCriteria `gorm:"embedded;embeddedPrefix:criteria_"`
	Active      bool          `gorm:"not null;default:true"`
	CreatedAt   time.Time     `gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime"`
}

func (Badge) TableName() string {
	return "badges"
}

type UserBadge struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID    string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:uk_user_badge,priority:1"`
	BadgeID    uint64    `gorm:"column:badge_id;not null;uniqueIndex:uk_user_badge,priority:2"`
	UnlockedAt time.Time `gorm:"column:unlocked_at;not null"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
