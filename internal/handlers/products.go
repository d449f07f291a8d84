package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "github.com/akobyansamvel/sweet/internal/log"
	"github.com/akobyansamvel/sweet/models"
)

type productCreateRequest struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Update payloads use pointers so omitted fields keep their stored values.
// A supplied price_per_unit is deliberately absent: the field is derived and
// clients cannot set it.
type productUpdateRequest struct {
	Name     *string          `json:"name"`
	Unit     *string          `json:"unit"`
	Quantity *decimal.Decimal `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

type productResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListProducts returns the catalog, optionally filtered by a case-insensitive
// name substring via ?search=.
func ListProducts(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	query := database.WithContext(ctx).Order("name asc")
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var results []models.Product
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(results))
	for _, product := range results {
		responses = append(responses, projectProduct(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetProduct returns a single product by id.
func GetProduct(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

// CreateProduct adds a product to the catalog. The unit price is derived
// server-side from price and quantity.
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	var payload productCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if err := validateProductFields(name, payload.Unit, payload.Quantity, payload.Price); err != nil {
		applog.Debug(ctx, "product validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	product := models.Product{
		Name:     name,
		Unit:     payload.Unit,
		Quantity: payload.Quantity,
		Price:    payload.Price,
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to create product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(product))
}

// UpdateProduct applies a partial update; the derived unit price always
// reflects the stored price/quantity pair afterwards.
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		applog.Error(ctx, "failed to load product for update", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load product")
		return
	}

	var payload productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	if payload.Name != nil {
		product.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Unit != nil {
		product.Unit = *payload.Unit
	}
	if payload.Quantity != nil {
		product.Quantity = *payload.Quantity
	}
	if payload.Price != nil {
		product.Price = *payload.Price
	}

	if err := validateProductFields(product.Name, product.Unit, product.Quantity, product.Price); err != nil {
		applog.Debug(ctx, "product update validation failed", "error", err, "id", productID)
		writeJSONError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	if err := database.WithContext(ctx).Save(&product).Error; err != nil {
		applog.Error(ctx, "failed to update product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to update product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

// DeleteProduct removes a product. Recipe ingredients referencing it are left
// in place; resolving them fails at calculation time instead.
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		applog.Error(ctx, "failed to load product for delete", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load product")
		return
	}

	if err := database.WithContext(ctx).Delete(&product).Error; err != nil {
		applog.Error(ctx, "failed to delete product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateProductFields(name, unit string, quantity, price decimal.Decimal) error {
	if name == "" {
		return errors.New("name is required")
	}
	if !models.ValidUnit(unit) {
		return errors.New("unit must be one of kg, g, l, ml, pcs")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("quantity must be greater than zero")
	}
	if price.IsNegative() {
		return errors.New("price must not be negative")
	}
	return nil
}

func projectProduct(product models.Product) productResponse {
	return productResponse{
		ID:           product.ID,
		Name:         product.Name,
		Unit:         product.Unit,
		Quantity:     product.Quantity,
		Price:        product.Price,
		PricePerUnit: product.PricePerUnit(),
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
