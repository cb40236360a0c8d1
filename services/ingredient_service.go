package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/JJublanc/tidimondo-sub001/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IngredientService struct {
	db           *gorm.DB
	entitlements *EntitlementService
}

func NewIngredientService(db *gorm.DB, ent *EntitlementService) *IngredientService {
	return &IngredientService{db: db, entitlements: ent}
}

type IngredientInput struct {
	Name      string   `json:"name" binding:"required,max=255"`
	Category  string   `json:"category" binding:"omitempty,oneof=vegetable fruit meat fish starch dairy spice condiment beverage other"`
	BaseUnit  string   `json:"base_unit" binding:"omitempty,oneof=g kg ml cl l piece tbsp tsp pinch glass"`
	Allergens []string `json:"allergens"`
	Seasons   []string `json:"seasons" binding:"dive,oneof=spring summer autumn winter"`
	IsPublic  bool     `json:"is_public"`
}

// CatalogFilter narrows ingredient and utensil listings.
type CatalogFilter struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	Mine     bool   `form:"mine"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

func (f CatalogFilter) limit() int {
	if f.Limit == 0 {
		return 100
	}
	return f.Limit
}

func (in *IngredientInput) apply(ing *models.Ingredient) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalidf("name is required")
	}
	ing.Name = name
	ing.NormalizedName = utils.NormalizeName(name)
	ing.Category = in.Category
	if ing.Category == "" {
		ing.Category = models.CategoryOther
	}
	ing.BaseUnit = in.BaseUnit
	if ing.BaseUnit == "" {
		ing.BaseUnit = models.UnitGram
	}
	ing.Allergens = datatypes.JSONSlice[string](nonNil(in.Allergens))
	ing.Seasons = datatypes.JSONSlice[string](nonNil(in.Seasons))
	ing.IsPublic = in.IsPublic
	return nil
}

// List searches visible ingredients by normalized name, so "creme" finds
// "Crème fraîche".
func (s *IngredientService) List(ctx context.Context, userID uint, f CatalogFilter) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if f.Mine {
		q = q.Where("user_id = ?", userID)
	} else {
		q = q.Scopes(visibleTo(userID))
	}
	if term := utils.NormalizeName(f.Query); term != "" {
		q = q.Where("normalized_name LIKE ?", "%"+term+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var out []models.Ingredient
	err := q.Order("normalized_name").Order("id").Limit(f.limit()).Offset(f.Offset).Find(&out).Error
	return out, err
}

func (s *IngredientService) Get(ctx context.Context, userID, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).Scopes(visibleTo(userID)).First(&ing, id).Error; err != nil {
		return nil, notFound(err, "ingredient")
	}
	return &ing, nil
}

func (s *IngredientService) Create(ctx context.Context, userID uint, in IngredientInput) (*models.Ingredient, error) {
	owner := userID
	ing := &models.Ingredient{UserID: &owner}
	if err := in.apply(ing); err != nil {
		return nil, err
	}
	create := func(tx *gorm.DB) error { return tx.Create(ing).Error }
	var err error
	if ing.IsPublic {
		err = create(s.db.WithContext(ctx))
	} else {
		err = s.entitlements.WithinLimit(ctx, userID, KindIngredient, create)
	}
	if err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *IngredientService) Update(ctx context.Context, userID, id uint, in IngredientInput) (*models.Ingredient, error) {
	db := s.db.WithContext(ctx)
	ing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := checkWrite(db, userID, ing.UserID); err != nil {
		return nil, err
	}
	wasPublic := ing.IsPublic
	if err := in.apply(ing); err != nil {
		return nil, err
	}
	save := func(tx *gorm.DB) error { return tx.Save(ing).Error }
	if wasPublic && !ing.IsPublic && ing.UserID != nil {
		err = s.entitlements.WithinLimit(ctx, userID, KindIngredient, save)
	} else {
		err = save(db)
	}
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// Delete refuses to remove an ingredient still used by a recipe.
func (s *IngredientService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ing models.Ingredient
		if err := tx.Scopes(visibleTo(userID)).First(&ing, id).Error; err != nil {
			return notFound(err, "ingredient")
		}
		if err := checkWrite(tx, userID, ing.UserID); err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: ingredient is used by %d recipe(s)", ErrConflict, used)
		}
		return tx.Delete(&ing).Error
	})
}
