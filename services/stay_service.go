package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// StayStatuses lists every accepted stay status.
var StayStatuses = []string{
	models.StayDraft, models.StayPlanned, models.StayInProgress, models.StayDone, models.StayCanceled,
}

type StayService struct {
	db           *gorm.DB
	entitlements *EntitlementService
}

func NewStayService(db *gorm.DB, ent *EntitlementService) *StayService {
	return &StayService{db: db, entitlements: ent}
}

type StayInput struct {
	Name             string `json:"name" binding:"required,max=255"`
	Description      string `json:"description"`
	Location         string `json:"location" binding:"max=255"`
	StartDate        string `json:"start_date" binding:"required"`
	EndDate          string `json:"end_date" binding:"required"`
	ParticipantCount int    `json:"participant_count" binding:"required,min=1"`
	Status           string `json:"status" binding:"omitempty,oneof=draft planned in_progress done canceled"`
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the UTC midnight
// of that calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalidf("date %q must be YYYY-MM-DD", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func (in *StayInput) apply(stay *models.Stay) error {
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return err
	}
	end, err := ParseDate(in.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return invalidf("end_date must not be before start_date")
	}
	if in.ParticipantCount < 1 {
		return invalidf("participant_count must be at least 1")
	}
	stay.Name = strings.TrimSpace(in.Name)
	stay.Description = in.Description
	stay.Location = in.Location
	stay.StartDate = start
	stay.EndDate = end
	stay.ParticipantCount = in.ParticipantCount
	if in.Status != "" {
		stay.Status = in.Status
	}
	return nil
}

func (s *StayService) Create(ctx context.Context, userID uint, in StayInput) (*models.Stay, error) {
	stay := &models.Stay{UserID: userID, Status: models.StayDraft}
	if err := in.apply(stay); err != nil {
		return nil, err
	}
	err := s.entitlements.WithinLimit(ctx, userID, KindStay, func(tx *gorm.DB) error {
		return tx.Create(stay).Error
	})
	if err != nil {
		return nil, err
	}
	return stay, nil
}

func (s *StayService) List(ctx context.Context, userID uint) ([]models.Stay, error) {
	var stays []models.Stay
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Find(&stays).Error
	return stays, err
}

// Get returns the stay with its participants and meals.
func (s *StayService) Get(ctx context.Context, userID, stayID uint) (*models.Stay, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedStay(db, userID, stayID); err != nil {
		return nil, err
	}
	var stay models.Stay
	err := db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Meals", func(db *gorm.DB) *gorm.DB { return orderMeals(db) }).
		Preload("Meals.Recipe").
		First(&stay, stayID).Error
	if err != nil {
		return nil, notFound(err, "stay")
	}
	return &stay, nil
}

// Update replaces the stay's fields. A date range that would leave existing
// meals outside the stay is rejected.
func (s *StayService) Update(ctx context.Context, userID, stayID uint, in StayInput) (*models.Stay, error) {
	var stay *models.Stay
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stay, err = ownedStay(tx, userID, stayID)
		if err != nil {
			return err
		}
		if err := in.apply(stay); err != nil {
			return err
		}
		var meals []models.MealAssignment
		if err := tx.Select("id", "date").Where("stay_id = ?", stayID).Find(&meals).Error; err != nil {
			return err
		}
		orphans := 0
		for _, m := range meals {
			if !stay.Covers(m.Date) {
				orphans++
			}
		}
		if orphans > 0 {
			return fmt.Errorf("%w: %d meal(s) fall outside the new dates, move or delete them first", ErrConflict, orphans)
		}
		return tx.Save(stay).Error
	})
	if err != nil {
		return nil, err
	}
	return stay, nil
}

func (s *StayService) SetStatus(ctx context.Context, userID, stayID uint, status string) (*models.Stay, error) {
	if !containsString(StayStatuses, status) {
		return nil, invalidf("unknown status %q", status)
	}
	db := s.db.WithContext(ctx)
	stay, err := ownedStay(db, userID, stayID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(stay).Update("status", status).Error; err != nil {
		return nil, err
	}
	stay.Status = status
	return stay, nil
}

// Delete removes the stay together with its participants and meals.
func (s *StayService) Delete(ctx context.Context, userID, stayID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedStay(tx, userID, stayID); err != nil {
			return err
		}
		if err := tx.Where("stay_id = ?", stayID).Delete(&models.MealAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("stay_id = ?", stayID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Stay{}, stayID).Error
	})
}
