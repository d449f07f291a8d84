package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Units accepted for a catalog product. These match the values the client
// sends; no other unit strings are stored.
const (
	UnitKilogram   = "kg"
	UnitGram       = "g"
	UnitLitre      = "l"
	UnitMillilitre = "ml"
	UnitPiece      = "pcs"
)

type Product struct {
	gorm.Model
	Name     string          `gorm:"not null" json:"name"`
	Unit     string          `gorm:"not null" json:"unit"`
	Quantity decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// PricePerUnit derives the unit price from the stored price/quantity pair.
// It is never persisted, so it can never go stale.
func (p Product) PricePerUnit() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.Price.Div(p.Quantity)
}

// ValidUnit reports whether the given unit string is one of the accepted
// measurement units.
func ValidUnit(unit string) bool {
	switch unit {
	case UnitKilogram, UnitGram, UnitLitre, UnitMillilitre, UnitPiece:
		return true
	}
	return false
}
