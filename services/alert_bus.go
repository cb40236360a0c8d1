package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier delivers persisted alerts and transient live events to a user.
type Notifier interface {
	EmitAlert(ctx context.Context, userID uint, typ, message string)
	Broadcast(userID uint, payload any)
}

// NopNotifier drops everything.
type NopNotifier struct{}

func (NopNotifier) EmitAlert(context.Context, uint, string, string) {}
func (NopNotifier) Broadcast(uint, any)                             {}

// AlertBus stores alerts and fans them out to websockets and push.
// rt and ps may be nil.
type AlertBus struct {
	db *gorm.DB
	rt *RealtimeHub
	ps *PushService
}

func NewAlertBus(db *gorm.DB, rt *RealtimeHub, ps *PushService) *AlertBus {
	return &AlertBus{db: db, rt: rt, ps: ps}
}

func (b *AlertBus) EmitAlert(ctx context.Context, userID uint, typ, message string) {
	a := &models.Alert{UserID: userID, Type: typ, Message: message, CreatedAt: time.Now()}
	if err := b.db.WithContext(ctx).Create(a).Error; err != nil {
		logger.Error("store alert", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	b.Broadcast(userID, map[string]any{
		"kind":  "alert.created",
		"alert": a,
	})
	if b.ps != nil {
		b.ps.PushToUser(ctx, userID, "TidiMondo", message, map[string]string{
			"type": typ, "alertId": fmt.Sprintf("%d", a.ID),
		})
	}
}

func (b *AlertBus) Broadcast(userID uint, payload any) {
	if b.rt != nil {
		b.rt.Broadcast(userID, payload)
	}
}
