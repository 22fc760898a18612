package model

import "time"

// UserPoint stores cumulative and spendable points earned by logging.
type UserPoint struct {
	UID           string    `gorm:"column:uid;primaryKey;size:128"`
	TotalPoints   float64   `gorm:"column:total_points;not null;default:0;index"`
	BalancePoints float64   `gorm:"column:balance_points;not null;default:0"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (UserPoint) TableName() string {
	return "user_points"
}
