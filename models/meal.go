package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
	MealAperitif  = "aperitif"
)

// MealTypes in display order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack, MealAperitif}

// MealAssignment is one scheduled meal slot within a stay.
type MealAssignment struct {
	gorm.Model
	StayID        uint           `gorm:"index;not null" json:"stay_id"`
	Date          time.Time      `gorm:"index;not null" json:"date"`
	MealType      string         `gorm:"size:20;not null" json:"meal_type"`
	Position      int            `gorm:"default:0" json:"position"`
	Portions      int            `gorm:"not null" json:"portions"`
	RecipeID      *uint          `gorm:"index" json:"recipe_id"`
	Recipe        *Recipe        `json:"recipe,omitempty"`
	Description   string         `gorm:"type:text" json:"description"`
	EstimatedCost *float64       `json:"estimated_cost"`
	Composition   datatypes.JSON `json:"composition,omitempty"`
}

// MealComposition describes a breakfast built from loose ingredients and
// beverages rather than a recipe.
type MealComposition struct {
	Ingredients []CompositionItem `json:"ingredients"`
	Beverages   []CompositionItem `json:"beverages"`
}

// CompositionItem quantity is absolute unless PerParticipant is set.
type CompositionItem struct {
	IngredientID   uint    `json:"ingredient_id"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	PerParticipant bool    `json:"per_participant"`
}

// Items returns ingredients then beverages.
func (c *MealComposition) Items() []CompositionItem {
	out := make([]CompositionItem, 0, len(c.Ingredients)+len(c.Beverages))
	out = append(out, c.Ingredients...)
	return append(out, c.Beverages...)
}

// DecodeComposition returns nil when no composition is stored.
func (m *MealAssignment) DecodeComposition() (*MealComposition, error) {
	if len(m.Composition) == 0 || string(m.Composition) == "null" {
		return nil, nil
	}
	var c MealComposition
	if err := json.Unmarshal(m.Composition, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MealAssignment) SetComposition(c *MealComposition) error {
	if c == nil {
		m.Composition = nil
		return nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.Composition = datatypes.JSON(raw)
	return nil
}
