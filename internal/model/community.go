package model

import "time"

type Community struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:120;not null;uniqueIndex:uk_communities_name"`
	Description string    `gorm:"type:text"`
	ImageURL    *string   `gorm:"column:image_url;size:512"`
	CreatedBy   string    `gorm:"column:created_by;size:128"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Community) TableName() string {
	return "communities"
}

type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	CommunityID uint64    `gorm:"column:community_id;not null;uniqueIndex:uk_community_user,priority:1"`
	UserUID     string    `gorm:"column:user_uid;size:128;not null;uniqueIndex:uk_community_user,priority:2;index"`
	JoinedAt    time.Time `gorm:"column:joined_at;not null"`
}

func (CommunityMember) TableName() string {
	return "community_members"
}
