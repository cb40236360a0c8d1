package services

import (
	"fmt"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

// visibleTo scopes a catalog query to public rows and rows owned by userID.
func visibleTo(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(is_public = ? OR user_id = ?)", true, userID)
	}
}

// checkWrite allows the owner of a row, or an admin when the row has no
// owner.
func checkWrite(db *gorm.DB, userID uint, owner *uint) error {
	if owner != nil {
		if *owner != userID {
			return fmt.Errorf("%w: not the owner", ErrForbidden)
		}
		return nil
	}
	var user models.User
	if err := db.Select("id", "is_admin").First(&user, userID).Error; err != nil {
		return notFound(err, "user")
	}
	if !user.IsAdmin {
		return fmt.Errorf("%w: catalog entries are managed by admins", ErrForbidden)
	}
	return nil
}

// ownedStay loads a stay for its owner. Other users get ErrForbidden.
func ownedStay(db *gorm.DB, userID, stayID uint) (*models.Stay, error) {
	var stay models.Stay
	if err := db.First(&stay, stayID).Error; err != nil {
		return nil, notFound(err, "stay")
	}
	if stay.UserID != userID {
		return nil, fmt.Errorf("%w: stay belongs to another user", ErrForbidden)
	}
	return &stay, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
