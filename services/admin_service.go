package services

import (
	"context"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

type AdminStats struct {
	Users             int64 `json:"users"`
	PremiumUsers      int64 `json:"premium_users"`
	Stays             int64 `json:"stays"`
	Recipes           int64 `json:"recipes"`
	PendingPosts      int64 `json:"pending_posts"`
	UnhandledMessages int64 `json:"unhandled_messages"`
}

// Stats runs every count concurrently.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var st AdminStats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, model any, where ...any) {
		g.Go(func() error {
			q := s.db.WithContext(gctx).Model(model)
			if len(where) > 0 {
				q = q.Where(where[0], where[1:]...)
			}
			return q.Count(dst).Error
		})
	}
	count(&st.Users, &models.User{})
	count(&st.PremiumUsers, &models.User{}, "subscription_status = ?", models.SubscriptionActive)
	count(&st.Stays, &models.Stay{})
	count(&st.Recipes, &models.Recipe{})
	count(&st.PendingPosts, &models.BlogPost{}, "status = ?", models.PostPending)
	count(&st.UnhandledMessages, &models.ContactMessage{}, "handled = ?", false)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

type UserFilter struct {
	Query string `form:"q"`
	Page
}

func (s *AdminService) Users(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := s.db.WithContext(ctx)
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}
	var out []models.User
	err := q.Order("id").Limit(f.limit()).Offset(f.Offset).Find(&out).Error
	return out, err
}

func (s *AdminService) SetAdmin(ctx context.Context, userID uint, admin bool) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	if err := db.Model(&user).Update("is_admin", admin).Error; err != nil {
		return nil, err
	}
	user.IsAdmin = admin
	return &user, nil
}
