package models

import "gorm.io/gorm"

// Units accepted on recipe ingredients and compositions.
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMillilitre = "ml"
	UnitCentilitre = "cl"
	UnitLitre      = "l"
	UnitPiece      = "piece"
	UnitTablespoon = "tbsp"
	UnitTeaspoon   = "tsp"
	UnitPinch      = "pinch"
	UnitGlass      = "glass"
)

var Units = []string{
	UnitGram, UnitKilogram, UnitMillilitre, UnitCentilitre, UnitLitre,
	UnitPiece, UnitTablespoon, UnitTeaspoon, UnitPinch, UnitGlass,
}

// Recipe with a nil UserID belongs to the public catalog.
type Recipe struct {
	gorm.Model
	UserID       *uint  `gorm:"index" json:"user_id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Instructions string `gorm:"type:text" json:"instructions"`
	Portions     int    `gorm:"not null;default:1" json:"portions"`
	Difficulty   int    `gorm:"default:1" json:"difficulty"`
	PrepMinutes  int    `json:"prep_minutes"`
	CookMinutes  int    `json:"cook_minutes"`
	IsPublic     bool   `gorm:"default:false;index" json:"is_public"`
	ImageURL     string `json:"image_url"`

	Ingredients []RecipeIngredient `json:"ingredients,omitempty"`
	Utensils    []RecipeUtensil    `json:"utensils,omitempty"`
}

type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RecipeID     uint        `gorm:"index;not null" json:"recipe_id"`
	IngredientID uint        `gorm:"index;not null" json:"ingredient_id"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	Quantity     float64     `gorm:"not null" json:"quantity"`
	Unit         string      `gorm:"size:10;not null" json:"unit"`
	Optional     bool        `json:"optional"`
	Note         string      `gorm:"size:255" json:"note"`
	Position     int         `json:"position"`
}

type RecipeUtensil struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	RecipeID  uint     `gorm:"index;not null" json:"recipe_id"`
	UtensilID uint     `gorm:"index;not null" json:"utensil_id"`
	Utensil   *Utensil `json:"utensil,omitempty"`
	Required  bool     `json:"required"`
}
