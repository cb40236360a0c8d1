package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PostPending  = "pending"
	PostApproved = "approved"
	PostRejected = "rejected"
)

type BlogPost struct {
	gorm.Model
	AuthorID       uint       `gorm:"index;not null" json:"author_id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Slug           string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	ContentHTML    string     `gorm:"type:text" json:"content_html"`
	Excerpt        string     `gorm:"size:500" json:"excerpt"`
	CoverImageURL  string     `json:"cover_image_url"`
	Status         string     `gorm:"size:20;index;default:'pending'" json:"status"`
	ModerationNote string     `gorm:"type:text" json:"moderation_note,omitempty"`
	PublishedAt    *time.Time `json:"published_at"`
}
