package model

import "time"

const (
	NotificationBadgeUnlocked      = "badge_unlocked"
	NotificationChallengeCompleted = "challenge_completed"
	NotificationRewardRedeemed     = "reward_redeemed"
	NotificationRewardFulfilled    = "reward_fulfilled"
)

type Notification struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	UserUID      string     `gorm:"column:user_uid;size:128;index;not null"`
	Type         string     `gorm:"column:type;size:64;not null"`
	Title        string     `gorm:"column:title;size:255"`
	Body         string     `gorm:"column:body;type:text"`
	BadgeID      *uint64    `gorm:"column:badge_id"`
	ChallengeID  *uint64    `gorm:"column:challenge_id"`
	RedemptionID *uint64    `gorm:"column:redemption_id"`
	ReadAt       *time.Time `gorm:"column:read_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
