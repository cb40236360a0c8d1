package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, sub string, mods ...func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{AuthSubject: sub, Email: sub + "@example.com", SubscriptionStatus: models.SubscriptionInactive}
	for _, m := range mods {
		m(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func premium(u *models.User) { u.SubscriptionStatus = models.SubscriptionActive }
func admin(u *models.User)   { u.IsAdmin = true }

func createIngredient(t *testing.T, db *gorm.DB, owner *uint, name, category, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{
		UserID:   owner,
		Name:     name,
		Category: category,
		BaseUnit: unit,
		IsPublic: owner == nil,
	}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func createStay(t *testing.T, db *gorm.DB, userID uint, start, end string, participants int) *models.Stay {
	t.Helper()
	stay := &models.Stay{
		UserID:           userID,
		Name:             "Chalet",
		StartDate:        date(start),
		EndDate:          date(end),
		ParticipantCount: participants,
		Status:           models.StayDraft,
	}
	require.NoError(t, db.Create(stay).Error)
	return stay
}

type recordedAlert struct {
	UserID  uint
	Type    string
	Message string
}

// recordingNotifier captures everything sent to users.
type recordingNotifier struct {
	mu         sync.Mutex
	alerts     []recordedAlert
	broadcasts []any
}

func (n *recordingNotifier) EmitAlert(_ context.Context, userID uint, typ, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, recordedAlert{UserID: userID, Type: typ, Message: message})
}

func (n *recordingNotifier) Broadcast(_ uint, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, payload)
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
