package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/akobyansamvel/sweet/internal/config"
	"github.com/akobyansamvel/sweet/internal/db"
	"github.com/akobyansamvel/sweet/models"
)

func main() {
	csvPath := "supplier-price-list.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			product, err := buildProduct(record)
			if err != nil {
				return err
			}

			var existing models.Product
			err = tx.Where("LOWER(name) = ?", strings.ToLower(product.Name)).First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"unit":     product.Unit,
					"quantity": product.Quantity,
					"price":    product.Price,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update product %q: %w", product.Name, err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&product).Error; err != nil {
					return fmt.Errorf("create product %q: %w", product.Name, err)
				}
			default:
				return fmt.Errorf("find product %q: %w", product.Name, err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record["name"], err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d products from %s\n", imported, filepath.Base(csvPath))
	return nil
}

// readCSV loads the sheet into one map per row, keyed by lowercased header
// names, so supplier exports with varying header casing still import.
func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildProduct(row map[string]string) (models.Product, error) {
	name := strings.TrimSpace(row["name"])
	if name == "" {
		return models.Product{}, errors.New("name column is empty")
	}

	unit := strings.ToLower(strings.TrimSpace(row["unit"]))
	if !models.ValidUnit(unit) {
		return models.Product{}, fmt.Errorf("unknown unit %q", row["unit"])
	}

	quantity, err := parseDecimal(row["quantity"])
	if err != nil {
		return models.Product{}, fmt.Errorf("quantity: %w", err)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return models.Product{}, fmt.Errorf("quantity %s must be greater than zero", quantity)
	}

	price, err := parseDecimal(row["price"])
	if err != nil {
		return models.Product{}, fmt.Errorf("price: %w", err)
	}
	if price.IsNegative() {
		return models.Product{}, fmt.Errorf("price %s must not be negative", price)
	}

	return models.Product{
		Name:     name,
		Unit:     unit,
		Quantity: quantity,
		Price:    price,
	}, nil
}

// parseDecimal accepts both dot and comma decimal separators; supplier
// sheets exported from European locales use the latter.
func parseDecimal(value string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if normalized == "" {
		return decimal.Decimal{}, errors.New("value is empty")
	}
	return decimal.NewFromString(normalized)
}
