package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/JJublanc/tidimondo-sub001/models"
	"gorm.io/gorm"
)

type MealService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewMealService(db *gorm.DB, n Notifier) *MealService {
	if n == nil {
		n = NopNotifier{}
	}
	return &MealService{db: db, notifier: n}
}

// MealInput describes one meal slot. Exactly what the meal holds is decided
// by which of RecipeID, Composition and Description is set; at least one
// must be.
type MealInput struct {
	Date          string                  `json:"date" binding:"required"`
	MealType      string                  `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack aperitif"`
	Position      int                     `json:"position" binding:"gte=0"`
	Portions      *int                    `json:"portions" binding:"omitempty,min=1"`
	RecipeID      *uint                   `json:"recipe_id"`
	Description   string                  `json:"description"`
	EstimatedCost *float64                `json:"estimated_cost" binding:"omitempty,gte=0"`
	Composition   *models.MealComposition `json:"composition"`
}

var mealTypeOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE meal_type")
	for i, t := range models.MealTypes {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", t, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(models.MealTypes))
	return b.String()
}()

// orderMeals sorts by day, slot, then position within the slot.
func orderMeals(db *gorm.DB) *gorm.DB {
	return db.Order("date").Order(mealTypeOrder).Order("position").Order("id")
}

func (s *MealService) List(ctx context.Context, userID, stayID uint) ([]models.MealAssignment, error) {
	db := s.db.WithContext(ctx)
	if _, err := ownedStay(db, userID, stayID); err != nil {
		return nil, err
	}
	var meals []models.MealAssignment
	err := orderMeals(db.Where("stay_id = ?", stayID)).Preload("Recipe").Find(&meals).Error
	return meals, err
}

func (s *MealService) Create(ctx context.Context, userID, stayID uint, in MealInput) (*models.MealAssignment, error) {
	db := s.db.WithContext(ctx)
	stay, err := ownedStay(db, userID, stayID)
	if err != nil {
		return nil, err
	}
	meal := &models.MealAssignment{StayID: stayID}
	if err := s.apply(db, stay, meal, in); err != nil {
		return nil, err
	}
	if err := db.Create(meal).Error; err != nil {
		return nil, err
	}
	s.stale(stay)
	return meal, nil
}

func (s *MealService) Update(ctx context.Context, userID, stayID, mealID uint, in MealInput) (*models.MealAssignment, error) {
	db := s.db.WithContext(ctx)
	stay, err := ownedStay(db, userID, stayID)
	if err != nil {
		return nil, err
	}
	meal, err := s.find(db, stayID, mealID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(db, stay, meal, in); err != nil {
		return nil, err
	}
	meal.Recipe = nil
	if err := db.Save(meal).Error; err != nil {
		return nil, err
	}
	s.stale(stay)
	return meal, nil
}

func (s *MealService) Delete(ctx context.Context, userID, stayID, mealID uint) error {
	db := s.db.WithContext(ctx)
	stay, err := ownedStay(db, userID, stayID)
	if err != nil {
		return err
	}
	meal, err := s.find(db, stayID, mealID)
	if err != nil {
		return err
	}
	if err := db.Delete(meal).Error; err != nil {
		return err
	}
	s.stale(stay)
	return nil
}

func (s *MealService) find(db *gorm.DB, stayID, mealID uint) (*models.MealAssignment, error) {
	var meal models.MealAssignment
	if err := db.Where("stay_id = ?", stayID).First(&meal, mealID).Error; err != nil {
		return nil, notFound(err, "meal")
	}
	return &meal, nil
}

func (s *MealService) apply(db *gorm.DB, stay *models.Stay, meal *models.MealAssignment, in MealInput) error {
	date, err := ParseDate(in.Date)
	if err != nil {
		return err
	}
	if !stay.Covers(date) {
		return invalidf("date %s is outside the stay (%s to %s)",
			date.Format(dateLayout), stay.StartDate.UTC().Format(dateLayout), stay.EndDate.UTC().Format(dateLayout))
	}
	if !containsString(models.MealTypes, in.MealType) {
		return invalidf("unknown meal type %q", in.MealType)
	}

	hasComposition := in.Composition != nil && len(in.Composition.Items()) > 0
	if in.RecipeID == nil && !hasComposition && strings.TrimSpace(in.Description) == "" {
		return invalidf("a meal needs a recipe, a composition or a description")
	}
	if in.RecipeID != nil {
		var recipe models.Recipe
		err := db.Scopes(visibleTo(stay.UserID)).Select("id").First(&recipe, *in.RecipeID).Error
		if err != nil {
			return notFound(err, "recipe")
		}
	}
	if hasComposition {
		if err := validateComposition(db, stay.UserID, in.Composition); err != nil {
			return err
		}
	}

	meal.Date = date
	meal.MealType = in.MealType
	meal.Position = in.Position
	meal.Portions = stay.ParticipantCount
	if in.Portions != nil {
		meal.Portions = *in.Portions
	}
	meal.RecipeID = in.RecipeID
	meal.Description = strings.TrimSpace(in.Description)
	meal.EstimatedCost = in.EstimatedCost
	if !hasComposition {
		return meal.SetComposition(nil)
	}
	return meal.SetComposition(in.Composition)
}

// validateComposition checks quantities and units. Items pointing at an
// ingredient must reference one the owner can see; items without one are
// listed on the shopping list by name.
func validateComposition(db *gorm.DB, ownerID uint, c *models.MealComposition) error {
	var ids []uint
	for i, it := range c.Items() {
		if it.Quantity < 0 {
			return invalidf("composition item %d: quantity must not be negative", i+1)
		}
		if it.Unit != "" && !containsString(models.Units, it.Unit) {
			return invalidf("composition item %d: unknown unit %q", i+1, it.Unit)
		}
		if it.IngredientID == 0 && strings.TrimSpace(it.Name) == "" {
			return invalidf("composition item %d needs an ingredient_id or a name", i+1)
		}
		if it.IngredientID != 0 {
			ids = append(ids, it.IngredientID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := db.Model(&models.Ingredient{}).Scopes(visibleTo(ownerID)).
		Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	seen := make(map[uint]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return fmt.Errorf("%w: ingredient %d", ErrNotFound, id)
		}
	}
	return nil
}

func (s *MealService) stale(stay *models.Stay) {
	s.notifier.Broadcast(stay.UserID, map[string]any{
		"kind":    "shopping_list.stale",
		"stay_id": stay.ID,
	})
}
