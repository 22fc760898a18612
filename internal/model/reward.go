package model

import "time"

type Reward struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:120;not null"`
	Description string    `gorm:"type:text"`
	CostPoints  float64   `gorm:"column:cost_points;not null"`
	Stock       *int      `gorm:"column:stock"` // nil means unlimited
	ImageURL    *string   `gorm:"column:image_url;size:512"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Reward) TableName() string {
	return "rewards"
}

type RedemptionStatus string

const (
	RedemptionStatusPending   RedemptionStatus = "pending"
	RedemptionStatusFulfilled RedemptionStatus = "fulfilled"
	RedemptionStatusCanceled  RedemptionStatus = "canceled"
)

type RewardRedemption struct {
	ID          uint64           `gorm:"primaryKey;autoIncrement"`
	RewardID    uint64           `gorm:"column:reward_id;index;not null"`
	UserUID     string           `gorm:"column:user_uid;size:128;index;not null"`
	PointsSpent float64          `gorm:"column:points_spent;not null"`
	Status      RedemptionStatus `gorm:"column:status;size:32;not null"`
	FulfilledAt *time.Time       `gorm:"column:fulfilled_at"`
	CanceledAt  *time.Time       `gorm:"column:canceled_at"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

func (RewardRedemption) TableName() string {
	return "reward_redemptions"
}
