package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Setting names the pricing calculation and the default seed know about. Any
// other name is still a valid setting; these are just the expected keys.
const (
	SettingMarkup    = "markup"
	SettingLaborCost = "labor_cost"
	SettingOverhead  = "overhead"
)

type Setting struct {
	gorm.Model
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Value       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	Description string          `gorm:"type:text" json:"description"`
}
