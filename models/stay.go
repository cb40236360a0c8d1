package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StayDraft      = "draft"
	StayPlanned    = "planned"
	StayInProgress = "in_progress"
	StayDone       = "done"
	StayCanceled   = "canceled"
)

// Stay is a planned multi-day culinary trip.
type Stay struct {
	gorm.Model
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Location         string    `gorm:"size:255" json:"location"`
	StartDate        time.Time `gorm:"not null" json:"start_date"`
	EndDate          time.Time `gorm:"not null" json:"end_date"`
	ParticipantCount int       `gorm:"not null;default:1" json:"participant_count"`
	Status           string    `gorm:"size:20;default:'draft'" json:"status"`

	Participants []Participant    `json:"participants,omitempty"`
	Meals        []MealAssignment `json:"meals,omitempty"`
}

// Covers reports whether day falls in the stay's inclusive date range.
func (s *Stay) Covers(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(s.StartDate)) && !d.After(DateOnly(s.EndDate))
}

// Days is the number of calendar days of the stay.
func (s *Stay) Days() int {
	return int(DateOnly(s.EndDate).Sub(DateOnly(s.StartDate)).Hours()/24) + 1
}

// Participant is informational: tags drive ingredient suggestions only.
type Participant struct {
	gorm.Model
	StayID         uint                        `gorm:"index;not null" json:"stay_id"`
	Name           string                      `gorm:"size:255;not null" json:"name"`
	DietaryRegimes datatypes.JSONSlice[string] `json:"dietary_regimes"`
	Allergens      datatypes.JSONSlice[string] `json:"allergens"`
	Notes          string                      `gorm:"type:text" json:"notes"`
}

// DateOnly truncates t to midnight UTC of its UTC calendar day. Dates are
// always stored as UTC midnights.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
