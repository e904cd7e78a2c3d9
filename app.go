package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"meallens/internal/imaging"
	"meallens/internal/llm/client"
	"meallens/internal/models"
	"meallens/internal/services"
)

const maxAnalyzeAttempts = 3

// App wires the capture flow: image pipeline -> AI analysis -> editable item
// list -> persistence on confirm. The CLI (or any other surface) only ever
// touches images, AI results, and storage through these methods and the
// services container.
type App struct {
	Services *services.Services
	Vision   *client.VisionClient
	dbClose  func() error
}

func NewApp(db *gorm.DB) *App {
	app := &App{
		Services: services.NewServices(db),
		Vision: client.New(client.Config{
			BaseURL: os.Getenv("MEALLENS_API_BASE_URL"),
			Model:   os.Getenv("MEALLENS_MODEL"),
		}),
	}
	if sqlDB, err := db.DB(); err == nil {
		app.dbClose = sqlDB.Close
	}
	return app
}

func (a *App) Close() {
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
		}
	}
}

// AnalyzePhoto runs the photo at path through the image pipeline and the AI
// client with bounded retry, returning the recognized, still-unsaved items.
func (a *App) AnalyzePhoto(ctx context.Context, path string) ([]models.FoodItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}

	encoded, err := imaging.Process(data)
	if err != nil {
		return nil, err
	}

	apiKey, _, err := a.Services.Settings.DecryptedAPIKey(ctx)
	if err != nil {
		return nil, err
	}

	return client.RetryWithBackoff(ctx, maxAnalyzeAttempts, func(ctx context.Context) ([]models.FoodItem, error) {
		return a.Vision.Analyze(ctx, encoded, apiKey)
	})
}

// SaveAnalyzedMeal confirms analyzed items into a persisted meal logged at
// the given time, inferring the meal type when none is supplied.
func (a *App) SaveAnalyzedMeal(ctx context.Context, items []models.FoodItem, at time.Time, mealType models.MealType) (string, error) {
	if mealType == "" {
		mealType = models.InferMealType(at)
	}

	drafts := make([]services.ItemDraft, len(items))
	total := 0
	for i, item := range items {
		drafts[i] = services.ItemDraft{
			Name:       item.Name,
			Grams:      item.Grams,
			Calories:   item.Calories,
			Confidence: item.Confidence,
		}
		total += item.Calories
	}

	draft := services.MealDraft{
		Timestamp:     at.UnixMilli(),
		Date:          at.Format("2006-01-02"),
		Type:          mealType,
		TotalCalories: total,
	}
	return a.Services.Meals.SaveMeal(ctx, draft, drafts)
}
