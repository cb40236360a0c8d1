package services

import (
	"context"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build computes the shopping list of a stay owned by userID.
func (s *ShoppingListService) Build(ctx context.Context, userID, stayID uint) (*ShoppingList, error) {
	db := s.db.WithContext(ctx)
	stay, err := ownedStay(db, userID, stayID)
	if err != nil {
		return nil, err
	}
	return s.build(db, stay)
}

// ForStay computes the list without an ownership check. Used by the CLI.
func (s *ShoppingListService) ForStay(ctx context.Context, stayID uint) (*ShoppingList, error) {
	db := s.db.WithContext(ctx)
	var stay models.Stay
	if err := db.First(&stay, stayID).Error; err != nil {
		return nil, notFound(err, "stay")
	}
	return s.build(db, &stay)
}

func (s *ShoppingListService) build(db *gorm.DB, stay *models.Stay) (*ShoppingList, error) {
	var meals []models.MealAssignment
	err := orderMeals(db.Where("stay_id = ?", stay.ID)).
		Preload("Recipe.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position").Order("id") }).
		Preload("Recipe.Ingredients.Ingredient").
		Find(&meals).Error
	if err != nil {
		return nil, err
	}

	ingredients, err := s.compositionIngredients(db, meals)
	if err != nil {
		return nil, err
	}

	planned := make([]PlannedMeal, 0, len(meals))
	for i := range meals {
		pm, err := ClassifyMeal(&meals[i], ingredients)
		if err != nil {
			return nil, err
		}
		planned = append(planned, pm)
	}
	return Present(stay, planned, Aggregate(stay.ParticipantCount, planned)), nil
}

func (s *ShoppingListService) compositionIngredients(db *gorm.DB, meals []models.MealAssignment) (map[uint]*models.Ingredient, error) {
	var ids []uint
	for i := range meals {
		if meals[i].RecipeID != nil {
			continue
		}
		comp, err := meals[i].DecodeComposition()
		if err != nil {
			return nil, err
		}
		if comp == nil {
			continue
		}
		for _, it := range comp.Items() {
			if it.IngredientID != 0 {
				ids = append(ids, it.IngredientID)
			}
		}
	}
	out := map[uint]*models.Ingredient{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Ingredient
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}
