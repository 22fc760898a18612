package model

import "time"

type ChallengeRuleKind string

const (
	RuleActivityCount ChallengeRuleKind = "activity_count"
	RuleStreakDays    ChallengeRuleKind = "streak_days"
)

func (k ChallengeRuleKind) Valid() bool {
	return k == RuleActivityCount || k == RuleStreakDays
}

type ChallengeRule struct {
	Kind     ChallengeRuleKind `gorm:"column:kind;size:32;not null"`
	Category *string           `gorm:"column:category;size:32"`
	Target   int               `gorm:"column:target;not null"`
}

type Challenge struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement"`
	Title        string        `gorm:"size:120;not null"`
	Description  string        `gorm:"type:text"`
	Rule         ChallengeRule `gorm:"embedded;embeddedPrefix:rule_"`
	RewardPoints float64       `gorm:"column:reward_points;not null;default:0"`
	StartsAt     time.Time     `gorm:"column:starts_at;not null"`
	EndsAt       time.Time     `gorm:"column:ends_at;not null"`
	Active       bool          `gorm:"not null;default:true"`
	CreatedAt    time.Time     `gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// Open reports whether the challenge accepts progress at t.
func (c *Challenge) Open(t time.Time) bool {
	return c.Active && !t.Before(c.StartsAt) && t.Before(c.EndsAt)
}

type ChallengeParticipant struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	ChallengeID uint64     `gorm:"column:challenge_id;not null;uniqueIndex:uk_challenge_user,priority:1"`
	UserUID     string     `gorm:"column:user_uid;size:128;not null;uniqueIndex:uk_challenge_user,priority:2;index"`
	JoinedAt    time.Time  `gorm:"column:joined_at;not null"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (ChallengeParticipant) TableName() string {
	return "challenge_participants"
}
