package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription states mirrored from the payments provider.
const (
	SubscriptionInactive = "inactive"
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// User is provisioned on first authenticated request, keyed by the
// identity provider's subject claim.
type User struct {
	gorm.Model
	AuthSubject          string     `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Email                string     `gorm:"size:255;index" json:"email"`
	FullName             string     `json:"full_name"`
	IsAdmin              bool       `gorm:"default:false" json:"is_admin"`
	StripeCustomerID     string     `gorm:"size:255;index" json:"-"`
	StripeSubscriptionID string     `gorm:"size:255" json:"-"`
	SubscriptionStatus   string     `gorm:"size:20;default:'inactive'" json:"subscription_status"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
	NotificationsEnabled bool       `gorm:"default:true" json:"notifications_enabled"`
}

// IsPremium reports whether the user escapes the free plan ceilings.
func (u *User) IsPremium() bool {
	return u.IsAdmin || u.SubscriptionStatus == SubscriptionActive
}
