package services

import (
	"context"
	"strings"
	"testing"

	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserService(db, func(email string) bool { return strings.HasSuffix(email, "@tidimondo.fr") })

	u, err := users.Provision(ctx, "auth0|1", "jane@example.com", "Jane")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, models.SubscriptionInactive, u.SubscriptionStatus)

	again, err := users.Provision(ctx, "auth0|1", "jane@tidimondo.fr", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	stored, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@tidimondo.fr", stored.Email)
	assert.Equal(t, "Jane", stored.FullName)
	assert.True(t, stored.IsAdmin)

	_, err = users.Provision(ctx, " ", "x@example.com", "")
	assert.ErrorIs(t, err, ErrInvalid)

	var n int64
	db.Model(&models.User{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestUpdateProfileAndNotifications(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserService(db, nil)
	u := createUser(t, db, "u")
	require.NoError(t, db.Create(&models.UserDevice{UserID: u.ID, Platform: "android", TokenHash: "h", Enabled: true}).Error)

	got, err := users.UpdateProfile(ctx, u.ID, ProfileInput{FullName: "  Jean Dupont "})
	require.NoError(t, err)
	assert.Equal(t, "Jean Dupont", got.FullName)

	require.NoError(t, users.SetNotifications(ctx, u.ID, false))
	stored, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.NotificationsEnabled)
	var device models.UserDevice
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&device).Error)
	assert.False(t, device.Enabled)

	assert.ErrorIs(t, users.SetNotifications(ctx, 999, true), ErrNotFound)
}

func TestAlerts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bus := NewAlertBus(db, nil, nil)
	alerts := NewAlertService(db)
	u := createUser(t, db, "u")
	other := createUser(t, db, "other")

	bus.EmitAlert(ctx, u.ID, "info", "first")
	bus.EmitAlert(ctx, u.ID, "warning", "second")

	list, err := alerts.List(ctx, u.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)

	require.NoError(t, alerts.MarkRead(ctx, u.ID, list[1].ID))
	require.NoError(t, alerts.MarkRead(ctx, u.ID, list[1].ID))
	assert.ErrorIs(t, alerts.MarkRead(ctx, other.ID, list[0].ID), ErrNotFound)

	unread, err := alerts.List(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Message)

	require.NoError(t, alerts.MarkAllRead(ctx, u.ID))
	unread, err = alerts.List(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestAdminStatsAndUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	adm := NewAdminService(db)
	u := createUser(t, db, "jane")
	createUser(t, db, "paul", premium)
	createStay(t, db, u.ID, "2024-01-01", "2024-01-02", 2)
	require.NoError(t, db.Create(&models.BlogPost{AuthorID: u.ID, Title: "t", Slug: "t", Content: "c", Status: models.PostPending}).Error)
	require.NoError(t, db.Create(&models.ContactMessage{Name: "n", Email: "e@example.com", Message: "hello there"}).Error)

	st, err := adm.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, AdminStats{Users: 2, PremiumUsers: 1, Stays: 1, PendingPosts: 1, UnhandledMessages: 1}, *st)

	list, err := adm.Users(ctx, UserFilter{Query: "PAUL"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "paul@example.com", list[0].Email)

	promoted, err := adm.SetAdmin(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
	_, err = adm.SetAdmin(ctx, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}
