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
	"github.com/akobyansamvel/sweet/internal/seed"
	"github.com/akobyansamvel/sweet/models"
)

type settingCreateRequest struct {
	Name        string          `json:"name"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
}

type settingUpdateRequest struct {
	Name        *string          `json:"name"`
	Value       *decimal.Decimal `json:"value"`
	Description *string          `json:"description"`
}

type settingResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type seedDefaultsResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ListSettings returns all settings, optionally filtered by a
// case-insensitive name substring via ?name=.
func ListSettings(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	query := database.WithContext(ctx).Order("name asc")
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var results []models.Setting
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list settings", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load settings")
		return
	}

	responses := make([]settingResponse, 0, len(results))
	for _, setting := range results {
		responses = append(responses, projectSetting(setting))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetSetting returns a single setting by id.
func GetSetting(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	settingID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var setting models.Setting
	if err := database.WithContext(ctx).First(&setting, settingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "setting not found")
			return
		}
		applog.Error(ctx, "failed to load setting", "error", err, "id", settingID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load setting")
		return
	}

	writeJSON(w, http.StatusOK, projectSetting(setting))
}

// CreateSetting stores a named value. Names are unique; duplicates conflict.
func CreateSetting(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	var payload settingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid setting create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, kindValidation, "name is required")
		return
	}

	if taken, ok := settingNameTaken(w, r, name, 0); !ok || taken {
		return
	}

	setting := models.Setting{
		Name:        name,
		Value:       payload.Value,
		Description: strings.TrimSpace(payload.Description),
	}

	if err := database.WithContext(ctx).Create(&setting).Error; err != nil {
		applog.Error(ctx, "failed to create setting", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to create setting")
		return
	}

	writeJSON(w, http.StatusCreated, projectSetting(setting))
}

// UpdateSetting applies a partial update; renaming onto an existing name
// conflicts.
func UpdateSetting(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	settingID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var setting models.Setting
	if err := database.WithContext(ctx).First(&setting, settingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, kindNotFound, "setting not found")
			return
		}
		applog.Error(ctx, "failed to load setting for update", "error", err, "id", settingID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to load setting")
		return
	}

	var payload settingUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid setting update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, kindValidation, "invalid request payload")
		return
	}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			writeJSONError(w, http.StatusBadRequest, kindValidation, "name is required")
			return
		}
		if taken, ok := settingNameTaken(w, r, name, setting.ID); !ok || taken {
			return
		}
		setting.Name = name
	}
	if payload.Value != nil {
		setting.Value = *payload.Value
	}
	if payload.Description != nil {
		setting.Description = strings.TrimSpace(*payload.Description)
	}

	if err := database.WithContext(ctx).Save(&setting).Error; err != nil {
		applog.Error(ctx, "failed to update setting", "error", err, "id", settingID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to update setting")
		return
	}

	writeJSON(w, http.StatusOK, projectSetting(setting))
}

// DeleteSetting removes a setting. Calculations needing it will fail with
// a missing-configuration error afterwards.
func DeleteSetting(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	settingID, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.Setting{}, settingID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete setting", "error", result.Error, "id", settingID)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to delete setting")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, kindNotFound, "setting not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SeedDefaultSettings creates the standard markup/labor_cost/overhead
// settings in one transaction, skipping any that already exist.
func SeedDefaultSettings(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	ctx := r.Context()
	stats, err := seed.Defaults(ctx, database)
	if err != nil {
		applog.Error(ctx, "failed to seed default settings", "error", err)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to seed default settings")
		return
	}

	applog.Info(ctx, "default settings seeded", "inserted", stats.Inserts, "skipped", stats.Skipped)
	writeJSON(w, http.StatusOK, seedDefaultsResponse{
		Inserted: stats.Inserts,
		Skipped:  stats.Skipped,
	})
}

// settingNameTaken reports whether another setting already uses the name.
// The second return value is false when the check itself failed; both
// failure modes write their own response.
func settingNameTaken(w http.ResponseWriter, r *http.Request, name string, excludeID uint) (bool, bool) {
	ctx := r.Context()
	query := database.WithContext(ctx).Model(&models.Setting{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		applog.Error(ctx, "failed to check setting name uniqueness", "error", err, "name", name)
		writeJSONError(w, http.StatusInternalServerError, kindInternal, "unable to verify setting name")
		return false, false
	}
	if count > 0 {
		writeJSONError(w, http.StatusConflict, kindConflict, "a setting with this name already exists")
		return true, true
	}
	return false, true
}

func projectSetting(setting models.Setting) settingResponse {
	return settingResponse{
		ID:          setting.ID,
		Name:        setting.Name,
		Value:       setting.Value,
		Description: setting.Description,
		CreatedAt:   setting.CreatedAt,
		UpdatedAt:   setting.UpdatedAt,
	}
}
