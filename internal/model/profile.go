package model

import "time"

type Profile struct {
	UID         string    `gorm:"column:uid;primaryKey;size:128"`
	DisplayName string    `gorm:"column:display_name;size:80"`
	AvatarURL   *string   `gorm:"column:avatar_url;size:512"`
	Bio         string    `gorm:"column:bio;type:text"`
	Location    string    `gorm:"column:location;size:120"`
	DailyGoalKg float64   `gorm:"column:daily_goal_kg;not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
