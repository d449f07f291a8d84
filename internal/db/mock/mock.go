package mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "github.com/akobyansamvel/sweet/internal/log"
	"github.com/akobyansamvel/sweet/models"
)

// New returns an in-memory sqlite database seeded with representative bakery
// data, so the API can be explored without a configured database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:sweet-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Setting{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	flour := models.Product{
		Name:     "Wheat flour",
		Unit:     models.UnitGram,
		Quantity: decimal.NewFromInt(1000),
		Price:    decimal.NewFromInt(50),
	}

	sugar := models.Product{
		Name:     "Sugar",
		Unit:     models.UnitKilogram,
		Quantity: decimal.NewFromInt(1),
		Price:    decimal.NewFromInt(65),
	}

	butter := models.Product{
		Name:     "Butter",
		Unit:     models.UnitGram,
		Quantity: decimal.NewFromInt(180),
		Price:    decimal.NewFromInt(140),
	}

	products := []*models.Product{&flour, &sugar, &butter}
	for _, product := range products {
		if err := db.WithContext(ctx).Create(product).Error; err != nil {
			return err
		}
	}

	cake := models.Recipe{
		Name:        "Vanilla sponge cake",
		Description: "Classic layered sponge with buttercream.",
	}
	if err := db.WithContext(ctx).Create(&cake).Error; err != nil {
		return err
	}

	ingredients := []models.RecipeIngredient{
		{RecipeID: cake.ID, ProductID: flour.ID, Quantity: decimal.NewFromInt(500)},
		{RecipeID: cake.ID, ProductID: sugar.ID, Quantity: decimal.RequireFromString("0.3")},
		{RecipeID: cake.ID, ProductID: butter.ID, Quantity: decimal.NewFromInt(150)},
	}
	for _, ingredient := range ingredients {
		ingredientCopy := ingredient
		if err := db.WithContext(ctx).Create(&ingredientCopy).Error; err != nil {
			return err
		}
	}

	settings := []models.Setting{
		{Name: models.SettingMarkup, Value: decimal.NewFromInt(30), Description: "Markup percentage applied on top of base cost"},
		{Name: models.SettingLaborCost, Value: decimal.NewFromInt(100), Description: "Labor cost per hour"},
		{Name: models.SettingOverhead, Value: decimal.NewFromInt(15), Description: "Overhead percentage"},
	}
	for _, setting := range settings {
		settingCopy := setting
		if err := db.WithContext(ctx).Create(&settingCopy).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
