package model

import "time"

type Streak struct {
	UID           string     `gorm:"column:uid;primaryKey;size:128"`
	CurrentStreak int        `gorm:"column:current_streak;not null;default:0"`
	LongestStreak int        `gorm:"column:longest_streak;not null;default:0"`
	LastLoggedDay *time.Time `gorm:"column:last_logged_day;type:date"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

func (Streak) TableName() string {
	return "streaks"
}
