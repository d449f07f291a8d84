package models

import (
	"gorm.io/gorm"
)

type Recipe struct {
	gorm.Model
	Name        string             `gorm:"not null" json:"name"`
	Description string             `gorm:"type:text" json:"description"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}
