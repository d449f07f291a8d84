package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/akobyansamvel/sweet/internal/handlers"
)

// newRouter mounts the JSON API under basePath. StripSlashes makes the
// trailing-slash spellings of every collection and resource path resolve.
func newRouter(basePath string) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)

	router.Get("/healthz", handlers.Health)

	router.Route(basePath, func(api chi.Router) {
		api.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.ListProducts)
			r.Post("/", handlers.CreateProduct)
			r.Get("/{id}", handlers.GetProduct)
			r.Put("/{id}", handlers.UpdateProduct)
			r.Delete("/{id}", handlers.DeleteProduct)
		})

		api.Route("/recipes", func(r chi.Router) {
			r.Get("/", handlers.ListRecipes)
			r.Post("/", handlers.CreateRecipe)
			r.Get("/{id}", handlers.GetRecipe)
			r.Put("/{id}", handlers.UpdateRecipe)
			r.Delete("/{id}", handlers.DeleteRecipe)
			r.Get("/{id}/calculate_cost", handlers.CalculateRecipeCost)
			r.Post("/{id}/calculate_cost", handlers.CalculateRecipeCost)
		})

		api.Route("/recipe-ingredients", func(r chi.Router) {
			r.Get("/", handlers.ListRecipeIngredients)
			r.Post("/", handlers.CreateRecipeIngredient)
			r.Put("/{id}", handlers.UpdateRecipeIngredient)
			r.Delete("/{id}", handlers.DeleteRecipeIngredient)
		})

		api.Route("/settings", func(r chi.Router) {
			r.Get("/", handlers.ListSettings)
			r.Post("/", handlers.CreateSetting)
			r.Post("/defaults", handlers.SeedDefaultSettings)
			r.Get("/{id}", handlers.GetSetting)
			r.Put("/{id}", handlers.UpdateSetting)
			r.Delete("/{id}", handlers.DeleteSetting)
		})
	})

	return router
}
