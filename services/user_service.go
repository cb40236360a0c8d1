package services

import (
	"context"
	"errors"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

type UserService struct {
	db           *gorm.DB
	isAdminEmail func(email string) bool
}

// NewUserService builds the service. Users for whom isAdminEmail returns
// true are promoted on provisioning; it may be nil.
func NewUserService(db *gorm.DB, isAdminEmail func(email string) bool) *UserService {
	if isAdminEmail == nil {
		isAdminEmail = func(string) bool { return false }
	}
	return &UserService{db: db, isAdminEmail: isAdminEmail}
}

// Provision returns the local user for an identity provider subject,
// creating it on first sight and refreshing email and name afterwards.
func (s *UserService) Provision(ctx context.Context, subject, email, name string) (*models.User, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, invalidf("token subject is empty")
	}
	db := s.db.WithContext(ctx)
	var user models.User
	err := db.Where("auth_subject = ?", subject).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			AuthSubject:        subject,
			Email:              email,
			FullName:           name,
			IsAdmin:            email != "" && s.isAdminEmail(email),
			SubscriptionStatus: models.SubscriptionInactive,
		}
		if err := db.Create(&user).Error; err != nil {
			// Lost a race with a concurrent first request.
			if err2 := db.Where("auth_subject = ?", subject).First(&user).Error; err2 != nil {
				return nil, err
			}
		}
		return &user, nil
	case err != nil:
		return nil, err
	}

	updates := map[string]any{}
	if email != "" && email != user.Email {
		updates["email"] = email
	}
	if name != "" && name != user.FullName {
		updates["full_name"] = name
	}
	if !user.IsAdmin && email != "" && s.isAdminEmail(email) {
		updates["is_admin"] = true
	}
	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

type ProfileInput struct {
	FullName string `json:"full_name" binding:"max=255"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FullName = strings.TrimSpace(in.FullName)
	if err := s.db.WithContext(ctx).Model(user).Update("full_name", user.FullName).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetNotifications toggles push delivery for the user and all devices.
func (s *UserService) SetNotifications(ctx context.Context, userID uint, enabled bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("notifications_enabled", enabled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "user")
		}
		return tx.Model(&models.UserDevice{}).Where("user_id = ?", userID).Update("enabled", enabled).Error
	})
}
