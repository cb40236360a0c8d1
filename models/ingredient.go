package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CategoryVegetable = "vegetable"
	CategoryFruit     = "fruit"
	CategoryMeat      = "meat"
	CategoryFish      = "fish"
	CategoryStarch    = "starch"
	CategoryDairy     = "dairy"
	CategorySpice     = "spice"
	CategoryCondiment = "condiment"
	CategoryBeverage  = "beverage"
	CategoryOther     = "other"
)

// Categories in shopping-list display order.
var Categories = []string{
	CategoryVegetable, CategoryFruit, CategoryMeat, CategoryFish, CategoryStarch,
	CategoryDairy, CategorySpice, CategoryCondiment, CategoryBeverage, CategoryOther,
}

type Ingredient struct {
	gorm.Model
	UserID         *uint                       `gorm:"index" json:"user_id"`
	Name           string                      `gorm:"size:255;not null" json:"name"`
	NormalizedName string                      `gorm:"size:255;index" json:"normalized_name"`
	Category       string                      `gorm:"size:20;not null;default:'other'" json:"category"`
	BaseUnit       string                      `gorm:"size:10;not null;default:'g'" json:"base_unit"`
	Allergens      datatypes.JSONSlice[string] `json:"allergens"`
	Seasons        datatypes.JSONSlice[string] `json:"seasons"`
	IsPublic       bool                        `gorm:"default:false;index" json:"is_public"`
}

type Utensil struct {
	gorm.Model
	UserID      *uint  `gorm:"index" json:"user_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Category    string `gorm:"size:50" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:false;index" json:"is_public"`
}
