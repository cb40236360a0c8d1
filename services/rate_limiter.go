package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateLimiter is a fixed-window counter kept in the database, so limits
// hold across restarts and replicas.
type RateLimiter struct {
	db     *gorm.DB
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(db *gorm.DB, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{db: db, limit: limit, window: window, now: time.Now}
}

// Allow records one hit for key and reports whether it is within the limit
// of the current window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := r.now().UTC()
	start := now.Truncate(r.window)
	row := models.RateLimitCounter{
		Key:       fmt.Sprintf("%s:%d", key, start.Unix()),
		Count:     1,
		ExpiresAt: start.Add(r.window),
	}

	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"count": gorm.Expr("rate_limit_counters.count + 1"),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		var stored models.RateLimitCounter
		if err := tx.Where(&models.RateLimitCounter{Key: row.Key}).First(&stored).Error; err != nil {
			return err
		}
		count = stored.Count
		return tx.Where("expires_at < ?", now).Delete(&models.RateLimitCounter{}).Error
	})
	if err != nil {
		return false, err
	}
	return count <= r.limit, nil
}
