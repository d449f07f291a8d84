package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "github.com/akobyansamvel/sweet/internal/log"
	"github.com/akobyansamvel/sweet/models"
)

type recipeIngredientRequest struct {
	Recipe   uint            `json:"recipe"`
	Product  uint            `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ListRecipeIngredients returns ingredient rows, optionally scoped to one
// recipe via ?recipe=<id>.
func ListRecipeIngredients(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	query := database.WithContext(ctx).
		Preload("Product").
		Order("recipe_id asc, id asc")

	if recipeParam := strings.TrimSpace(r.URL.Query().Get("recipe")); recipeParam != "" {
		idValue, err := strconv.ParseUint(recipeParam, 10, 64)
		if err != nil {
			applog.Debug(ctx, "invalid recipe filter", "recipe", recipeParam, "error", err)
			writeJSONError(w, http.StatusBadRequest, kindValidation, "recipe filter must be a numeric id")
			return
		}
		query = query.Where("recipe_id = ?", uint(idValue))
	}

	var results []models.RecipeIngredient
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipe ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe ingredients")
		return
	}

	responses := make([]recipeIngredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectRecipeIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

// CreateRecipeIngredient adds one ingredient row to an existing recipe.
func CreateRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	var payload recipeIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	if !validateIngredientRequest(w, r, payload, true) {
		return
	}
	if taken, ok := ingredientPairTaken(w, r, payload.Recipe, payload.Product, 0); !ok || taken {
		return
	}

	ingredient := models.RecipeIngredient{
		RecipeID:  payload.Recipe,
		ProductID: payload.Product,
		Quantity:  payload.Quantity,
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create recipe ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to create recipe ingredient")
		return
	}

	if err := database.WithContext(ctx).Preload("Product").First(&ingredient, ingredient.ID).Error; err != nil {
		applog.Error(ctx, "failed to reload created recipe ingredient", "error", err, "id", ingredient.ID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipeIngredient(ingredient))
}

// UpdateRecipeIngredient replaces an ingredient row's fields.
func UpdateRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ingredientID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var existing models.RecipeIngredient
	if err := database.WithContext(ctx).First(&existing, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "recipe ingredient not found")
			return
		}
		applog.Error(ctx, "failed to load recipe ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe ingredient")
		return
	}

	var payload recipeIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	if payload.Recipe == 0 {
		payload.Recipe = existing.RecipeID
	}

	if !validateIngredientRequest(w, r, payload, false) {
		return
	}
	if taken, ok := ingredientPairTaken(w, r, payload.Recipe, payload.Product, existing.ID); !ok || taken {
		return
	}

	existing.RecipeID = payload.Recipe
	existing.ProductID = payload.Product
	existing.Quantity = payload.Quantity

	if err := database.WithContext(ctx).Save(&existing).Error; err != nil {
		applog.Error(ctx, "failed to update recipe ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to update recipe ingredient")
		return
	}

	var product models.Product
	if err := database.WithContext(ctx).First(&product, existing.ProductID).Error; err == nil {
		existing.Product = &product
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		applog.Error(ctx, "failed to load product for updated ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe ingredient")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeIngredient(existing))
}

// DeleteRecipeIngredient removes a single ingredient row.
func DeleteRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	ingredientID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.RecipeIngredient{}, ingredientID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete recipe ingredient", "error", result.Error, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to delete recipe ingredient")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, kindNotFound, "recipe ingredient not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ingredientPairTaken reports whether another row already lists the product
// in the recipe. The second return value is false when the check itself
// failed; both failure modes write their own response.
func ingredientPairTaken(w http.ResponseWriter, r *http.Request, recipeID, productID, excludeID uint) (bool, bool) {
	ctx := r.Context()
	query := database.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Where("recipe_id = ? AND product_id = ?", recipeID, productID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		applog.Error(ctx, "failed to check ingredient uniqueness", "error", err,
			"recipe", recipeID, "product", productID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to verify recipe ingredient")
		return false, false
	}
	if count > 0 {
		writeJSONError(w, http.StatusConflict, kindConflict, "the recipe already lists this product")
		return true, true
	}
	return false, true
}

// validateIngredientRequest checks the payload and referenced rows, writing
// the error response itself. requireRecipe distinguishes create (the recipe
// id must be supplied) from update (it may carry over).
func validateIngredientRequest(w http.ResponseWriter, r *http.Request, payload recipeIngredientRequest, requireRecipe bool) bool {
	ctx := r.Context()

	if requireRecipe && payload.Recipe == 0 {
		writeJSONError(w, http.StatusBadRequest, kindValidation, "recipe is required")
		return false
	}
	if payload.Product == 0 {
		writeJSONError(w, http.StatusBadRequest, kindValidation, "product is required")
		return false
	}
	if payload.Quantity.LessThanOrEqual(decimal.Zero) {
		writeJSONError(w, http.StatusBadRequest, kindValidation, "quantity must be greater than zero")
		return false
	}

	var recipeCount int64
	if err := database.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", payload.Recipe).Count(&recipeCount).Error; err != nil {
		applog.Error(ctx, "failed to verify recipe reference", "error", err, "recipe", payload.Recipe)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to verify recipe reference")
		return false
	}
	if recipeCount == 0 {
		writeJSONError(w, http.StatusBadRequest, kindValidation, "recipe does not exist")
		return false
	}

	var productCount int64
	if err := database.WithContext(ctx).Model(&models.Product{}).Where("id = ?", payload.Product).Count(&productCount).Error; err != nil {
		applog.Error(ctx, "failed to verify product reference", "error", err, "product", payload.Product)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to verify product reference")
		return false
	}
	if productCount == 0 {
		writeJSONError(w, http.StatusBadRequest, kindValidation, "product does not exist")
		return false
	}

	return true
}
