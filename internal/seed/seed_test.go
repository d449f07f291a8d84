package seed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/akobyansamvel/sweet/models"
)

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return db
}

func TestDefaultsInsertsAllSettings(t *testing.T) {
	db := newTestDatabase(t)

	stats, err := Defaults(context.Background(), db)
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}
	if stats.Inserts != 3 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v, want 3 inserts, 0 skipped", stats)
	}

	var markup models.Setting
	if err := db.Where("name = ?", models.SettingMarkup).First(&markup).Error; err != nil {
		t.Fatalf("load markup setting: %v", err)
	}
	if !markup.Value.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("markup value = %s, want 30", markup.Value)
	}
}

func TestDefaultsSkipsExistingWithoutOverwriting(t *testing.T) {
	db := newTestDatabase(t)

	existing := models.Setting{
		Name:        models.SettingMarkup,
		Value:       decimal.NewFromInt(45),
		Description: "tuned",
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("create existing setting: %v", err)
	}

	stats, err := Defaults(context.Background(), db)
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}
	if stats.Inserts != 2 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 2 inserts, 1 skipped", stats)
	}

	var markup models.Setting
	if err := db.Where("name = ?", models.SettingMarkup).First(&markup).Error; err != nil {
		t.Fatalf("load markup setting: %v", err)
	}
	if !markup.Value.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("markup value = %s, want untouched 45", markup.Value)
	}
}

func TestDefaultsIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)

	if _, err := Defaults(context.Background(), db); err != nil {
		t.Fatalf("first Defaults() error = %v", err)
	}
	stats, err := Defaults(context.Background(), db)
	if err != nil {
		t.Fatalf("second Defaults() error = %v", err)
	}
	if stats.Inserts != 0 || stats.Skipped != 3 {
		t.Fatalf("stats = %+v, want 0 inserts, 3 skipped", stats)
	}

	var count int64
	if err := db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if count != 3 {
		t.Fatalf("settings count = %d, want 3", count)
	}
}

func TestDefaultsRejectsNilDatabase(t *testing.T) {
	if _, err := Defaults(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil database")
	}
}
