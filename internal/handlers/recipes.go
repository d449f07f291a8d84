package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "github.com/akobyansamvel/sweet/internal/log"
	"github.com/akobyansamvel/sweet/internal/pricing"
	"github.com/akobyansamvel/sweet/models"
)

type recipeIngredientPayload struct {
	Product  uint            `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

type recipeRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Ingredients []recipeIngredientPayload `json:"ingredients"`
}

type recipeIngredientResponse struct {
	ID          uint             `json:"id"`
	Recipe      uint             `json:"recipe"`
	Product     uint             `json:"product"`
	ProductName string           `json:"product_name,omitempty"`
	ProductUnit string           `json:"product_unit,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Cost        *decimal.Decimal `json:"cost"`
}

type recipeResponse struct {
	ID               uint                       `json:"id"`
	Name             string                     `json:"name"`
	Description      string                     `json:"description"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	TotalCost        decimal.Decimal            `json:"total_cost"`
	IngredientsCount int                        `json:"ingredients_count"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

type costCalculationResponse struct {
	RecipeID      uint            `json:"recipe_id"`
	RecipeName    string          `json:"recipe_name"`
	BaseCost      decimal.Decimal `json:"base_cost"`
	MarkupPercent decimal.Decimal `json:"markup_percent"`
	MarkupAmount  decimal.Decimal `json:"markup_amount"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// ListRecipes returns all recipes, optionally filtered by a case-insensitive
// substring match on name or description via ?search=.
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	query := database.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Product").
		Order("name asc")
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}

	var results []models.Recipe
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(results))
	for _, recipe := range results {
		responses = append(responses, projectRecipe(recipe))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetRecipe returns a single recipe with its ingredient costs computed from
// current product prices.
func GetRecipe(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	recipeID, ok := pathID(w, r)
	if !ok {
		return
	}

	recipe, ok := loadRecipe(w, r, recipeID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(recipe))
}

// CreateRecipe stores a recipe together with its ingredient rows in one
// transaction.
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if err := validateRecipePayload(name, payload.Ingredients); err != nil {
		applog.Debug(ctx, "recipe validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	if err := ensureProductsExist(w, r, payload.Ingredients); err != nil {
		return
	}

	recipe := models.Recipe{
		Name:        name,
		Description: strings.TrimSpace(payload.Description),
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		for _, ingredient := range payload.Ingredients {
			row := models.RecipeIngredient{
				RecipeID:  recipe.ID,
				ProductID: ingredient.Product,
				Quantity:  ingredient.Quantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to create recipe")
		return
	}

	created, ok := loadRecipe(w, r, recipe.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipe(created))
}

// UpdateRecipe replaces the recipe's fields and its entire ingredient set:
// rows matched by product id are updated, absent ones deleted, new ones
// inserted, all inside one transaction.
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	recipeID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var recipe models.Recipe
	if err := database.WithContext(ctx).Preload("Ingredients").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "recipe not found")
			return
		}
		applog.Error(ctx, "failed to load recipe for update", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe")
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if err := validateRecipePayload(name, payload.Ingredients); err != nil {
		applog.Debug(ctx, "recipe update validation failed", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	if err := ensureProductsExist(w, r, payload.Ingredients); err != nil {
		return
	}

	existingByProduct := make(map[uint]models.RecipeIngredient, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		existingByProduct[row.ProductID] = row
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Updates(map[string]any{
			"name":        name,
			"description": strings.TrimSpace(payload.Description),
		}).Error; err != nil {
			return err
		}

		keep := make(map[uint]struct{}, len(payload.Ingredients))
		for _, ingredient := range payload.Ingredients {
			keep[ingredient.Product] = struct{}{}
			if existing, ok := existingByProduct[ingredient.Product]; ok {
				if err := tx.Model(&existing).Update("quantity", ingredient.Quantity).Error; err != nil {
					return err
				}
				continue
			}
			row := models.RecipeIngredient{
				RecipeID:  recipe.ID,
				ProductID: ingredient.Product,
				Quantity:  ingredient.Quantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for productID, row := range existingByProduct {
			if _, ok := keep[productID]; ok {
				continue
			}
			if err := tx.Delete(&models.RecipeIngredient{}, row.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to update recipe")
		return
	}

	updated, ok := loadRecipe(w, r, recipeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(updated))
}

// DeleteRecipe removes a recipe and all of its ingredient rows; ingredients
// never outlive their recipe.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	recipeID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "recipe not found")
			return
		}
		applog.Error(ctx, "failed to load recipe for delete", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe")
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CalculateRecipeCost prices a recipe from live product prices and the markup
// setting. Nothing is persisted; every call recomputes from current state.
func CalculateRecipeCost(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	recipeID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, recipeID)
	if !ok {
		return
	}

	lines := make([]pricing.Line, 0, len(recipe.Ingredients))
	for _, ingredient := range recipe.Ingredients {
		if ingredient.Product == nil {
			applog.Debug(ctx, "recipe references deleted product",
				"recipe", recipeID, "ingredient", ingredient.ID, "product", ingredient.ProductID)
			writeJSONError(w, http.StatusUnprocessableEntity, kindDangling,
				fmt.Sprintf("ingredient %d references a deleted product", ingredient.ID))
			return
		}
		lines = append(lines, pricing.Line{
			Quantity:     ingredient.Quantity,
			PricePerUnit: ingredient.Product.PricePerUnit(),
		})
	}

	var markup models.Setting
	if err := database.WithContext(ctx).Where("name = ?", models.SettingMarkup).First(&markup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(ctx, "markup setting missing", "recipe", recipeID)
			writeJSONError(w, http.StatusUnprocessableEntity, kindMissingConfig,
				"markup setting is not configured")
			return
		}
		applog.Error(ctx, "failed to load markup setting", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load settings")
		return
	}

	result := pricing.Calculate(pricing.BaseCost(lines), pricing.Config{MarkupPercent: markup.Value})

	writeJSON(w, http.StatusOK, costCalculationResponse{
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		BaseCost:      result.BaseCost,
		MarkupPercent: result.MarkupPercent,
		MarkupAmount:  result.MarkupAmount,
		TotalCost:     result.TotalCost,
	})
}

func loadRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) (models.Recipe, bool) {
	ctx := r.Context()
	var recipe models.Recipe
	err := database.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Product").
		First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "recipe not found")
			return models.Recipe{}, false
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load recipe")
		return models.Recipe{}, false
	}
	return recipe, true
}

func validateRecipePayload(name string, ingredients []recipeIngredientPayload) error {
	if name == "" {
		return errors.New("name is required")
	}
	seen := make(map[uint]struct{}, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient.Product == 0 {
			return errors.New("ingredient product is required")
		}
		if ingredient.Quantity.LessThanOrEqual(decimal.Zero) {
			return errors.New("ingredient quantity must be greater than zero")
		}
		if _, dup := seen[ingredient.Product]; dup {
			return fmt.Errorf("product %d is listed more than once", ingredient.Product)
		}
		seen[ingredient.Product] = struct{}{}
	}
	return nil
}

// ensureProductsExist verifies every referenced product id resolves. It
// writes the error response itself and returns non-nil when the check fails.
func ensureProductsExist(w http.ResponseWriter, r *http.Request, ingredients []recipeIngredientPayload) error {
	ctx := r.Context()
	for _, ingredient := range ingredients {
		var count int64
		if err := database.WithContext(ctx).Model(&models.Product{}).Where("id = ?", ingredient.Product).Count(&count).Error; err != nil {
			applog.Error(ctx, "failed to verify product reference", "error", err, "product", ingredient.Product)
			writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to verify product reference")
			return err
		}
		if count == 0 {
			err := fmt.Errorf("product %d does not exist", ingredient.Product)
			applog.Debug(ctx, "recipe references unknown product", "product", ingredient.Product)
			writeJSONError(w, http.StatusBadRequest, kindValidation, err.Error())
			return err
		}
	}
	return nil
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	ingredients := make([]recipeIngredientResponse, 0, len(recipe.Ingredients))
	total := decimal.Zero
	for _, ingredient := range recipe.Ingredients {
		ingredients = append(ingredients, projectRecipeIngredient(ingredient))
		if cost, ok := ingredient.Cost(); ok {
			total = total.Add(cost)
		}
	}

	return recipeResponse{
		ID:               recipe.ID,
		Name:             recipe.Name,
		Description:      recipe.Description,
		Ingredients:      ingredients,
		TotalCost:        total.Round(2),
		IngredientsCount: len(recipe.Ingredients),
		CreatedAt:        recipe.CreatedAt,
		UpdatedAt:        recipe.UpdatedAt,
	}
}

func projectRecipeIngredient(ingredient models.RecipeIngredient) recipeIngredientResponse {
	response := recipeIngredientResponse{
		ID:       ingredient.ID,
		Recipe:   ingredient.RecipeID,
		Product:  ingredient.ProductID,
		Quantity: ingredient.Quantity,
	}

	if cost, ok := ingredient.Cost(); ok {
		rounded := cost.Round(2)
		response.Cost = &rounded
		response.ProductName = ingredient.Product.Name
		response.ProductUnit = ingredient.Product.Unit
	}

	return response
}
