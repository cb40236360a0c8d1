package models

import (
	"time"

	"gorm.io/gorm"
)

type ContactMessage struct {
	gorm.Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255;not null" json:"email"`
	Subject  string `gorm:"size:255" json:"subject"`
	Message  string `gorm:"type:text;not null" json:"message"`
	SourceIP string `gorm:"size:64" json:"source_ip"`
	Handled  bool   `gorm:"default:false;index" json:"handled"`
}

// RateLimitCounter is a fixed-window counter shared by every process
// talking to the same database.
type RateLimitCounter struct {
	Key       string    `gorm:"primaryKey;size:255"`
	Count     int       `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
}
