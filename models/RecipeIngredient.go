package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecipeIngredient struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// A recipe lists each product at most once. Ingredient rows delete hard,
	// not softly; a soft-deleted row would still occupy the pair index and
	// block re-adding the product.
	RecipeID  uint            `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair" json:"recipe_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`

	// Weak reference: no database constraint backs ProductID, so the product
	// may be deleted out from under the ingredient. A nil Product after
	// preloading means the reference dangles.
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// Cost returns quantity x the referenced product's current unit price. The
// second return value is false when the product reference no longer resolves.
func (ri RecipeIngredient) Cost() (decimal.Decimal, bool) {
	if ri.Product == nil {
		return decimal.Zero, false
	}
	return ri.Quantity.Mul(ri.Product.PricePerUnit()), true
}
