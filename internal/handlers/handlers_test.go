package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/akobyansamvel/sweet/models"
)

func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	database = db
	return db, func() {
		database = original
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// requestWithID builds a request whose chi route context carries {id}, the
// way the router would for /resource/{id} paths.
func requestWithID(t *testing.T, method, target string, body io.Reader, id uint) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.FormatUint(uint64(id), 10))
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("failed to parse decimal %q: %v", value, err)
	}
	return parsed
}

func createTestProduct(t *testing.T, db *gorm.DB, name, unit, quantity, price string) models.Product {
	t.Helper()
	product := models.Product{
		Name:     name,
		Unit:     unit,
		Quantity: mustDecimal(t, quantity),
		Price:    mustDecimal(t, price),
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product %q: %v", name, err)
	}
	return product
}

func createTestRecipe(t *testing.T, db *gorm.DB, name string, ingredients ...models.RecipeIngredient) models.Recipe {
	t.Helper()
	recipe := models.Recipe{Name: name}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %q: %v", name, err)
	}
	for i := range ingredients {
		ingredients[i].RecipeID = recipe.ID
		if err := db.Create(&ingredients[i]).Error; err != nil {
			t.Fatalf("failed to create ingredient for %q: %v", name, err)
		}
	}
	recipe.Ingredients = ingredients
	return recipe
}

func ingredientRow(t *testing.T, productID uint, quantity string) models.RecipeIngredient {
	t.Helper()
	return models.RecipeIngredient{ProductID: productID, Quantity: mustDecimal(t, quantity)}
}

func createTestSetting(t *testing.T, db *gorm.DB, name, value string) models.Setting {
	t.Helper()
	setting := models.Setting{Name: name, Value: mustDecimal(t, value)}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("failed to create setting %q: %v", name, err)
	}
	return setting
}
