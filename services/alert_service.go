package services

import (
	"context"
	"time"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

type AlertService struct {
	db *gorm.DB
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db}
}

func (s *AlertService) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Alert, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var out []models.Alert
	err := q.Order("created_at DESC").Order("id DESC").Limit(100).Find(&out).Error
	return out, err
}

func (s *AlertService) MarkRead(ctx context.Context, userID, alertID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", alertID, userID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Alert{}).
			Where("id = ? AND user_id = ?", alertID, userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return notFound(gorm.ErrRecordNotFound, "alert")
		}
	}
	return nil
}

func (s *AlertService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}
