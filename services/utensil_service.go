package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

type UtensilService struct {
	db           *gorm.DB
	entitlements *EntitlementService
}

func NewUtensilService(db *gorm.DB, ent *EntitlementService) *UtensilService {
	return &UtensilService{db: db, entitlements: ent}
}

type UtensilInput struct {
	Name        string `json:"name" binding:"required,max=255"`
	Category    string `json:"category" binding:"max=50"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (in *UtensilInput) apply(u *models.Utensil) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalidf("name is required")
	}
	u.Name = name
	u.Category = strings.TrimSpace(in.Category)
	u.Description = in.Description
	u.IsPublic = in.IsPublic
	return nil
}

func (s *UtensilService) List(ctx context.Context, userID uint, f CatalogFilter) ([]models.Utensil, error) {
	q := s.db.WithContext(ctx).Model(&models.Utensil{})
	if f.Mine {
		q = q.Where("user_id = ?", userID)
	} else {
		q = q.Scopes(visibleTo(userID))
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var out []models.Utensil
	err := q.Order("name").Order("id").Limit(f.limit()).Offset(f.Offset).Find(&out).Error
	return out, err
}

func (s *UtensilService) Get(ctx context.Context, userID, id uint) (*models.Utensil, error) {
	var u models.Utensil
	if err := s.db.WithContext(ctx).Scopes(visibleTo(userID)).First(&u, id).Error; err != nil {
		return nil, notFound(err, "utensil")
	}
	return &u, nil
}

func (s *UtensilService) Create(ctx context.Context, userID uint, in UtensilInput) (*models.Utensil, error) {
	owner := userID
	u := &models.Utensil{UserID: &owner}
	if err := in.apply(u); err != nil {
		return nil, err
	}
	create := func(tx *gorm.DB) error { return tx.Create(u).Error }
	var err error
	if u.IsPublic {
		err = create(s.db.WithContext(ctx))
	} else {
		err = s.entitlements.WithinLimit(ctx, userID, KindUtensil, create)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UtensilService) Update(ctx context.Context, userID, id uint, in UtensilInput) (*models.Utensil, error) {
	db := s.db.WithContext(ctx)
	u, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := checkWrite(db, userID, u.UserID); err != nil {
		return nil, err
	}
	wasPublic := u.IsPublic
	if err := in.apply(u); err != nil {
		return nil, err
	}
	save := func(tx *gorm.DB) error { return tx.Save(u).Error }
	if wasPublic && !u.IsPublic && u.UserID != nil {
		err = s.entitlements.WithinLimit(ctx, userID, KindUtensil, save)
	} else {
		err = save(db)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Delete refuses to remove a utensil still listed by a recipe.
func (s *UtensilService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.Utensil
		if err := tx.Scopes(visibleTo(userID)).First(&u, id).Error; err != nil {
			return notFound(err, "utensil")
		}
		if err := checkWrite(tx, userID, u.UserID); err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&models.RecipeUtensil{}).Where("utensil_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: utensil is used by %d recipe(s)", ErrConflict, used)
		}
		return tx.Delete(&u).Error
	})
}
