package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PushService registers mobile devices with SNS and pushes alerts to them.
type PushService struct {
	db          *gorm.DB
	sns         *awssns.Client
	platformArn string
}

func NewPushService(ctx context.Context, db *gorm.DB, region, platformArn string) (*PushService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}
	return &PushService{
		db:          db,
		sns:         awssns.NewFromConfig(cfg),
		platformArn: platformArn,
	}, nil
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required,oneof=android ios"`
	Token    string `json:"token" binding:"required"`
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

func (p *PushService) RegisterDevice(ctx context.Context, userID uint, platform, token string) (*models.UserDevice, error) {
	if p.platformArn == "" {
		return nil, fmt.Errorf("%w: SNS_FCM_ARN not set", ErrNotConfigured)
	}

	out, err := p.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.platformArn),
		Token:                  aws.String(token),
	})
	if err != nil {
		return nil, err
	}

	db := p.db.WithContext(ctx)
	hash := tokenHash(token)
	var existing models.UserDevice
	if err := db.Where("user_id = ? AND token_hash = ?", userID, hash).First(&existing).Error; err == nil {
		existing.EndpointARN = aws.ToString(out.EndpointArn)
		existing.Platform = strings.ToLower(platform)
		existing.UpdatedAt = time.Now()
		if err := db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	dev := &models.UserDevice{
		UserID:      userID,
		Platform:    strings.ToLower(platform),
		TokenHash:   hash,
		EndpointARN: aws.ToString(out.EndpointArn),
		Enabled:     true,
	}
	if err := db.Create(dev).Error; err != nil {
		return nil, err
	}
	return dev, nil
}

// PushToUser is best effort: failures are logged, never returned.
func (p *PushService) PushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) {
	var endpoints []models.UserDevice
	if err := p.db.WithContext(ctx).Where("user_id = ? AND enabled = ?", userID, true).Find(&endpoints).Error; err != nil {
		logger.Warn("load push endpoints", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if len(endpoints) == 0 {
		return
	}

	gcm, _ := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	raw, _ := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	for _, d := range endpoints {
		_, err := p.sns.Publish(ctx, &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		if err != nil {
			logger.Warn("sns publish", zap.Uint("device_id", d.ID), zap.Error(err))
		}
	}
}
