package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer sends a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, replyTo, subject, body string) error
}

type ContactService struct {
	db        *gorm.DB
	limiter   *RateLimiter
	mailer    Mailer
	recipient string
}

// NewContactService builds the service. mailer may be nil, in which case
// messages are only stored.
func NewContactService(db *gorm.DB, limiter *RateLimiter, mailer Mailer, recipient string) *ContactService {
	return &ContactService{db: db, limiter: limiter, mailer: mailer, recipient: recipient}
}

type ContactInput struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,max=255"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// Submit stores a contact message and forwards it by email. A mail failure
// is logged and does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, sourceIP string) (*models.ContactMessage, error) {
	ok, err := s.limiter.Allow(ctx, "contact:"+sourceIP)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: too many messages, try again later", ErrRateLimited)
	}

	msg := &models.ContactMessage{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Subject:  strings.TrimSpace(in.Subject),
		Message:  strings.TrimSpace(in.Message),
		SourceIP: sourceIP,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}

	if s.mailer != nil && s.recipient != "" {
		body := fmt.Sprintf("From: %s <%s>\nIP: %s\n\n%s\n", msg.Name, msg.Email, msg.SourceIP, msg.Message)
		if err := s.mailer.Send(ctx, s.recipient, msg.Email, "[Contact] "+msg.Subject, body); err != nil {
			logger.Error("forward contact message", zap.Uint("message_id", msg.ID), zap.Error(err))
		}
	}
	return msg, nil
}

// List returns messages newest first. handled filters when non-nil.
func (s *ContactService) List(ctx context.Context, handled *bool, p Page) ([]models.ContactMessage, error) {
	q := s.db.WithContext(ctx)
	if handled != nil {
		q = q.Where("handled = ?", *handled)
	}
	var out []models.ContactMessage
	err := q.Order("created_at DESC").Order("id DESC").Limit(p.limit()).Offset(p.Offset).Find(&out).Error
	return out, err
}

func (s *ContactService) SetHandled(ctx context.Context, id uint, handled bool) error {
	res := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("handled", handled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "contact message")
	}
	return nil
}
