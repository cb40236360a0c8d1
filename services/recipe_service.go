package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/JJublanc/tidimondo-sub001/utils"
	"gorm.io/gorm"
)

type RecipeService struct {
	db           *gorm.DB
	entitlements *EntitlementService
	images       ImageStore
}

// NewRecipeService builds the service. images may be nil, in which case
// image uploads are refused.
func NewRecipeService(db *gorm.DB, ent *EntitlementService, images ImageStore) *RecipeService {
	return &RecipeService{db: db, entitlements: ent, images: images}
}

type RecipeIngredientInput struct {
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"gt=0"`
	Unit         string  `json:"unit" binding:"required,oneof=g kg ml cl l piece tbsp tsp pinch glass"`
	Optional     bool    `json:"optional"`
	Note         string  `json:"note" binding:"max=255"`
}

type RecipeUtensilInput struct {
	UtensilID uint  `json:"utensil_id" binding:"required"`
	Required  *bool `json:"required"`
}

type RecipeInput struct {
	Name         string                  `json:"name" binding:"required,max=255"`
	Description  string                  `json:"description"`
	Instructions string                  `json:"instructions"`
	Portions     int                     `json:"portions" binding:"required,min=1"`
	Difficulty   int                     `json:"difficulty" binding:"omitempty,min=1,max=5"`
	PrepMinutes  int                     `json:"prep_minutes" binding:"gte=0"`
	CookMinutes  int                     `json:"cook_minutes" binding:"gte=0"`
	IsPublic     bool                    `json:"is_public"`
	ImageURL     string                  `json:"image_url"`
	Image        string                  `json:"image"` // optional data URI
	Ingredients  []RecipeIngredientInput `json:"ingredients" binding:"dive"`
	Utensils     []RecipeUtensilInput    `json:"utensils" binding:"dive"`
}

type RecipeFilter struct {
	Query           string `form:"q"`
	Difficulty      int    `form:"difficulty" binding:"omitempty,min=1,max=5"`
	MaxTotalMinutes int    `form:"max_minutes" binding:"omitempty,min=1"`
	Mine            bool   `form:"mine"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
}

func (s *RecipeService) List(ctx context.Context, userID uint, f RecipeFilter) ([]models.Recipe, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if f.Mine {
		q = q.Where("user_id = ?", userID)
	} else {
		q = q.Scopes(visibleTo(userID))
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if f.Difficulty > 0 {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.MaxTotalMinutes > 0 {
		q = q.Where("prep_minutes + cook_minutes <= ?", f.MaxTotalMinutes)
	}
	limit := f.Limit
	if limit == 0 {
		limit = 50
	}
	var out []models.Recipe
	err := q.Order("name").Order("id").Limit(limit).Offset(f.Offset).Find(&out).Error
	return out, err
}

func (s *RecipeService) Get(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.load(s.db.WithContext(ctx), userID, recipeID)
}

func (s *RecipeService) load(db *gorm.DB, userID, recipeID uint) (*models.Recipe, error) {
	var r models.Recipe
	err := db.Scopes(visibleTo(userID)).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position").Order("id") }).
		Preload("Ingredients.Ingredient").
		Preload("Utensils", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Utensils.Utensil").
		First(&r, recipeID).Error
	if err != nil {
		return nil, notFound(err, "recipe")
	}
	return &r, nil
}

// Create stores the recipe and its children in one transaction. Private
// recipes count against the free plan.
func (s *RecipeService) Create(ctx context.Context, userID uint, in RecipeInput) (*models.Recipe, error) {
	owner := userID
	recipe := &models.Recipe{UserID: &owner}
	img, err := s.prepare(recipe, &in)
	if err != nil {
		return nil, err
	}
	create := func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := s.replaceChildren(tx, userID, recipe.ID, in); err != nil {
			return err
		}
		return s.attachImage(ctx, tx, recipe, img)
	}
	if recipe.IsPublic {
		err = s.db.WithContext(ctx).Transaction(create)
	} else {
		err = s.entitlements.WithinLimit(ctx, userID, KindRecipe, create)
	}
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), userID, recipe.ID)
}

// Update replaces the recipe's fields and children in one transaction.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)
	var current models.Recipe
	if err := db.Scopes(visibleTo(userID)).First(&current, recipeID).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	if err := checkWrite(db, userID, current.UserID); err != nil {
		return nil, err
	}
	wasPublic := current.IsPublic
	img, err := s.prepare(&current, &in)
	if err != nil {
		return nil, err
	}
	update := func(tx *gorm.DB) error {
		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		if err := s.replaceChildren(tx, userID, current.ID, in); err != nil {
			return err
		}
		return s.attachImage(ctx, tx, &current, img)
	}
	if wasPublic && !current.IsPublic && current.UserID != nil {
		err = s.entitlements.WithinLimit(ctx, userID, KindRecipe, update)
	} else {
		err = db.Transaction(update)
	}
	if err != nil {
		return nil, err
	}
	return s.load(db, userID, recipeID)
}

// Delete removes the recipe. Meals still pointing at it stop contributing
// to shopping lists.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.Scopes(visibleTo(userID)).First(&r, recipeID).Error; err != nil {
			return notFound(err, "recipe")
		}
		if err := checkWrite(tx, userID, r.UserID); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeUtensil{}).Error; err != nil {
			return err
		}
		return tx.Delete(&r).Error
	})
}

// prepare copies in onto r and decodes the inline image, if any. The image
// is uploaded by attachImage once the rows are written.
func (s *RecipeService) prepare(r *models.Recipe, in *RecipeInput) (*utils.DataURI, error) {
	if in.Portions < 1 {
		return nil, invalidf("portions must be at least 1")
	}
	r.Name = strings.TrimSpace(in.Name)
	r.Description = in.Description
	r.Instructions = in.Instructions
	r.Portions = in.Portions
	r.Difficulty = in.Difficulty
	if r.Difficulty == 0 {
		r.Difficulty = 1
	}
	r.PrepMinutes = in.PrepMinutes
	r.CookMinutes = in.CookMinutes
	r.IsPublic = in.IsPublic
	if in.ImageURL != "" {
		r.ImageURL = in.ImageURL
	}
	r.Ingredients = nil
	r.Utensils = nil
	if in.Image == "" {
		return nil, nil
	}
	return parseImage(s.images, in.Image)
}

// attachImage uploads img and records its URL on r. It runs last inside
// the write transaction, so nothing is uploaded for a rejected recipe.
func (s *RecipeService) attachImage(ctx context.Context, tx *gorm.DB, r *models.Recipe, img *utils.DataURI) error {
	if img == nil {
		return nil
	}
	url, err := s.images.UploadImage(ctx, "recipes", img)
	if err != nil {
		return err
	}
	r.ImageURL = url
	return tx.Model(r).Update("image_url", url).Error
}

// replaceChildren swaps every ingredient and utensil row of the recipe.
// Referenced ingredients and utensils must be visible to userID.
func (s *RecipeService) replaceChildren(tx *gorm.DB, userID, recipeID uint, in RecipeInput) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeUtensil{}).Error; err != nil {
		return err
	}

	rows := make([]models.RecipeIngredient, 0, len(in.Ingredients))
	for i, ri := range in.Ingredients {
		if ri.Quantity <= 0 {
			return invalidf("ingredient %d: quantity must be positive", i+1)
		}
		if !containsString(models.Units, ri.Unit) {
			return invalidf("ingredient %d: unknown unit %q", i+1, ri.Unit)
		}
		var ing models.Ingredient
		if err := tx.Scopes(visibleTo(userID)).Select("id").First(&ing, ri.IngredientID).Error; err != nil {
			return notFound(err, fmt.Sprintf("ingredient %d", ri.IngredientID))
		}
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ri.IngredientID,
			Quantity:     ri.Quantity,
			Unit:         ri.Unit,
			Optional:     ri.Optional,
			Note:         strings.TrimSpace(ri.Note),
			Position:     i,
		})
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	utensils := make([]models.RecipeUtensil, 0, len(in.Utensils))
	for _, ru := range in.Utensils {
		var u models.Utensil
		if err := tx.Scopes(visibleTo(userID)).Select("id").First(&u, ru.UtensilID).Error; err != nil {
			return notFound(err, fmt.Sprintf("utensil %d", ru.UtensilID))
		}
		required := true
		if ru.Required != nil {
			required = *ru.Required
		}
		utensils = append(utensils, models.RecipeUtensil{RecipeID: recipeID, UtensilID: ru.UtensilID, Required: required})
	}
	if len(utensils) > 0 {
		return tx.Create(&utensils).Error
	}
	return nil
}
