package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/akobyansamvel/sweet/models"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Defaults creates the standard settings (markup, labor_cost, overhead) in a
// single transaction. Settings that already exist are skipped, never
// overwritten, so re-running is safe.
func Defaults(ctx context.Context, db *gorm.DB) (Stats, error) {
	if db == nil {
		return Stats{}, errors.New("database handle is nil")
	}

	defaults := []models.Setting{
		{
			Name:        models.SettingMarkup,
			Value:       decimal.NewFromInt(30),
			Description: "Markup percentage applied on top of base cost",
		},
		{
			Name:        models.SettingLaborCost,
			Value:       decimal.NewFromInt(100),
			Description: "Labor cost per hour",
		},
		{
			Name:        models.SettingOverhead,
			Value:       decimal.NewFromInt(15),
			Description: "Overhead percentage",
		},
	}

	stats := Stats{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, setting := range defaults {
			var count int64
			if err := tx.Model(&models.Setting{}).Where("name = ?", setting.Name).Count(&count).Error; err != nil {
				return fmt.Errorf("check setting %q existence: %w", setting.Name, err)
			}
			if count > 0 {
				stats.Skipped++
				continue
			}

			settingCopy := setting
			if err := tx.Create(&settingCopy).Error; err != nil {
				return fmt.Errorf("insert setting %q: %w", setting.Name, err)
			}
			stats.Inserts++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}
