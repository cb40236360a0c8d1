package services

import (
	"context"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ParticipantService struct {
	db *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{db: db}
}

type ParticipantInput struct {
	Name           string   `json:"name" binding:"required,max=255"`
	DietaryRegimes []string `json:"dietary_regimes" binding:"dive,oneof=vegetarian vegan pescatarian gluten_free lactose_free halal kosher"`
	Allergens      []string `json:"allergens" binding:"dive,oneof=gluten crustaceans eggs fish peanuts soy milk nuts celery mustard sesame sulphites lupin molluscs"`
	Notes          string   `json:"notes"`
}

func (in *ParticipantInput) apply(p *models.Participant) {
	p.Name = strings.TrimSpace(in.Name)
	p.DietaryRegimes = datatypes.JSONSlice[string](nonNil(in.DietaryRegimes))
	p.Allergens = datatypes.JSONSlice[string](nonNil(in.Allergens))
	p.Notes = in.Notes
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *ParticipantService) List(ctx context.Context, userID, stayID uint) ([]models.Participant, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedStay(db, userID, stayID); err != nil {
		return nil, err
	}
	var out []models.Participant
	err := db.Where("stay_id = ?", stayID).Order("id").Find(&out).Error
	return out, err
}

func (s *ParticipantService) Add(ctx context.Context, userID, stayID uint, in ParticipantInput) (*models.Participant, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedStay(db, userID, stayID); err != nil {
		return nil, err
	}
	p := &models.Participant{StayID: stayID}
	in.apply(p)
	if err := db.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ParticipantService) Update(ctx context.Context, userID, stayID, participantID uint, in ParticipantInput) (*models.Participant, error) {
	db := s.db.WithContext(ctx)
	p, err := s.find(db, userID, stayID, participantID)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := db.Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ParticipantService) Delete(ctx context.Context, userID, stayID, participantID uint) error {
	db := s.db.WithContext(ctx)
	p, err := s.find(db, userID, stayID, participantID)
	if err != nil {
		return err
	}
	return db.Delete(p).Error
}

func (s *ParticipantService) find(db *gorm.DB, userID, stayID, participantID uint) (*models.Participant, error) {
	if _, err := ownedStay(db, userID, stayID); err != nil {
		return nil, err
	}
	var p models.Participant
	if err := db.Where("stay_id = ?", stayID).First(&p, participantID).Error; err != nil {
		return nil, notFound(err, "participant")
	}
	return &p, nil
}
