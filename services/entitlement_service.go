package services

import (
	"context"
	"fmt"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceKind names a kind of row subject to a free plan ceiling.
type ResourceKind string

const (
	KindStay       ResourceKind = "stays"
	KindRecipe     ResourceKind = "recipes"
	KindIngredient ResourceKind = "ingredients"
	KindUtensil    ResourceKind = "utensils"
)

var resourceKinds = []ResourceKind{KindStay, KindRecipe, KindIngredient, KindUtensil}

type EntitlementService struct {
	db     *gorm.DB
	limits config.PlanLimits
}

func NewEntitlementService(db *gorm.DB, limits config.PlanLimits) *EntitlementService {
	return &EntitlementService{db: db, limits: limits}
}

func (s *EntitlementService) Limit(kind ResourceKind) int {
	switch kind {
	case KindStay:
		return s.limits.Stays
	case KindRecipe:
		return s.limits.Recipes
	case KindIngredient:
		return s.limits.Ingredients
	case KindUtensil:
		return s.limits.Utensils
	}
	return 0
}

// CheckCeiling decides whether user may create one more row of kind
// while already owning count of them.
func CheckCeiling(user *models.User, kind ResourceKind, count int64, limit int) error {
	if user.IsPremium() {
		return nil
	}
	if count >= int64(limit) {
		noun := string(kind)
		if kind != KindStay {
			noun = "private " + noun
		}
		return fmt.Errorf("%w: the free plan allows %d %s, upgrade to premium to create more",
			ErrPlanLimit, limit, noun)
	}
	return nil
}

// WithinLimit runs create inside a transaction after checking the ceiling
// for kind. On PostgreSQL the user row is locked for the duration, so two
// concurrent creations by the same user cannot both pass the check.
func (s *EntitlementService) WithinLimit(ctx context.Context, userID uint, kind ResourceKind, create func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var user models.User
		if err := q.First(&user, userID).Error; err != nil {
			return notFound(err, "user")
		}
		count, err := countOwned(tx, userID, kind)
		if err != nil {
			return err
		}
		if err := CheckCeiling(&user, kind, count, s.Limit(kind)); err != nil {
			return err
		}
		return create(tx)
	})
}

func countOwned(db *gorm.DB, userID uint, kind ResourceKind) (int64, error) {
	var (
		count int64
		err   error
	)
	switch kind {
	case KindStay:
		err = db.Model(&models.Stay{}).Where("user_id = ?", userID).Count(&count).Error
	case KindRecipe:
		err = db.Model(&models.Recipe{}).Where("user_id = ? AND is_public = ?", userID, false).Count(&count).Error
	case KindIngredient:
		err = db.Model(&models.Ingredient{}).Where("user_id = ? AND is_public = ?", userID, false).Count(&count).Error
	case KindUtensil:
		err = db.Model(&models.Utensil{}).Where("user_id = ? AND is_public = ?", userID, false).Count(&count).Error
	default:
		err = fmt.Errorf("unknown resource kind %q", kind)
	}
	return count, err
}

type Usage struct {
	Kind  ResourceKind `json:"kind"`
	Used  int64        `json:"used"`
	Limit int          `json:"limit"`
}

type EntitlementOverview struct {
	Premium            bool    `json:"premium"`
	SubscriptionStatus string  `json:"subscription_status"`
	Usage              []Usage `json:"usage"`
}

// Overview reports usage against every ceiling. Limit is -1 for premium
// users.
func (s *EntitlementService) Overview(ctx context.Context, userID uint) (*EntitlementOverview, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	out := &EntitlementOverview{Premium: user.IsPremium(), SubscriptionStatus: user.SubscriptionStatus}
	for _, kind := range resourceKinds {
		used, err := countOwned(db, userID, kind)
		if err != nil {
			return nil, err
		}
		limit := s.Limit(kind)
		if out.Premium {
			limit = -1
		}
		out.Usage = append(out.Usage, Usage{Kind: kind, Used: used, Limit: limit})
	}
	return out, nil
}
