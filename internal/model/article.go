package model

import "time"

type Article struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:200;not null"`
	Summary     string     `gorm:"size:500"`
	Body        string     `gorm:"type:text;not null"`
	Category    *string    `gorm:"column:category;size:32;index"`
	ImageURL    *string    `gorm:"column:image_url;size:512"`
	Published   bool       `gorm:"not null;default:false;index"`
	PublishedAt *time.Time `gorm:"column:published_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Article) TableName() string {
	return "articles"
}
