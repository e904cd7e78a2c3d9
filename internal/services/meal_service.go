package services

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meallens/internal/apperrors"
	"meallens/internal/events"
	"meallens/internal/models"
	"meallens/internal/repositories"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// MealDraft is an unsaved meal as assembled by the confirm screen.
type MealDraft struct {
	Timestamp     int64
	Date          string
	Type          models.MealType
	TotalCalories int
}

// ItemDraft is an unsaved food item belonging to a meal draft.
type ItemDraft struct {
	Name       string
	Grams      int
	Calories   int
	Confidence models.Confidence
}

// FoodItemUpdate carries the fields of a partial item edit. Nil means
// "leave unchanged"; only supplied fields are validated.
type FoodItemUpdate struct {
	Name       *string
	Grams      *int
	Calories   *int
	Confidence *models.Confidence
}

// DailySummary aggregates one day of logged meals.
type DailySummary struct {
	Date          string                  `json:"date"`
	MealCount     int                     `json:"mealCount"`
	TotalCalories int                     `json:"totalCalories"`
	ByType        map[models.MealType]int `json:"byType"`
}

type MealService interface {
	SaveMeal(ctx context.Context, draft MealDraft, items []ItemDraft) (string, error)
	GetMeal(ctx context.Context, id string) (*models.Meal, error)
	MealsByDate(ctx context.Context, date string) ([]models.Meal, error)
	MealsByDateRange(ctx context.Context, start, end string) ([]models.Meal, error)
	FoodItemsForMeal(ctx context.Context, mealID string) ([]models.FoodItem, error)
	UpdateFoodItem(ctx context.Context, itemID string, update FoodItemUpdate) error
	DeleteFoodItem(ctx context.Context, itemID string) error
	DeleteMeal(ctx context.Context, mealID string) error
	DailySummary(ctx context.Context, date string) (*DailySummary, error)
}

type mealService struct {
	meals repositories.MealRepository
}

func NewMealService(meals repositories.MealRepository) MealService {
	return &mealService{meals: meals}
}

// SaveMeal validates the draft and every item before any write, then persists
// the meal and its items atomically. TotalCalories is stored as the sum over
// the items, never as caller-supplied state.
func (s *mealService) SaveMeal(ctx context.Context, draft MealDraft, items []ItemDraft) (string, error) {
	if draft.Timestamp <= 0 {
		return "", apperrors.NewValidation("invalid timestamp")
	}
	if !dateFormat.MatchString(draft.Date) {
		return "", apperrors.NewValidation("date must be in YYYY-MM-DD format")
	}
	if draft.TotalCalories < 0 {
		return "", apperrors.NewValidation("total calories must be non-negative")
	}
	if draft.Type != "" && !draft.Type.Valid() {
		return "", apperrors.NewValidation("meal type must be Breakfast, Lunch, Dinner, or Snack")
	}
	if len(items) == 0 {
		return "", apperrors.NewValidation("cannot save meal with 0 food items")
	}
	for i, item := range items {
		if err := validateItemDraft(i, item); err != nil {
			return "", err
		}
	}

	meal := &models.Meal{
		ID:        uuid.NewString(),
		Timestamp: draft.Timestamp,
		Date:      draft.Date,
		Type:      draft.Type,
	}
	records := make([]models.FoodItem, len(items))
	for i, item := range items {
		records[i] = models.FoodItem{
			ID:         uuid.NewString(),
			MealID:     meal.ID,
			Name:       item.Name,
			Grams:      item.Grams,
			Calories:   item.Calories,
			Confidence: item.Confidence,
		}
		meal.TotalCalories += item.Calories
	}

	if err := s.meals.Create(ctx, meal, records); err != nil {
		return "", err
	}
	events.Emit(ctx, events.NewMealSaved(meal.ID, meal.Date))
	return meal.ID, nil
}

// GetMeal returns nil without error when no meal has the given id.
func (s *mealService) GetMeal(ctx context.Context, id string) (*models.Meal, error) {
	meal, err := s.meals.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return meal, err
}

func (s *mealService) MealsByDate(ctx context.Context, date string) ([]models.Meal, error) {
	if !dateFormat.MatchString(date) {
		return nil, apperrors.NewValidation("date must be in YYYY-MM-DD format")
	}
	return s.meals.FindByDate(ctx, date)
}

func (s *mealService) MealsByDateRange(ctx context.Context, start, end string) ([]models.Meal, error) {
	if !dateFormat.MatchString(start) || !dateFormat.MatchString(end) {
		return nil, apperrors.NewValidation("dates must be in YYYY-MM-DD format")
	}
	// YYYY-MM-DD strings order lexicographically.
	if end < start {
		return nil, apperrors.NewValidation("end date must be >= start date")
	}
	return s.meals.FindByDateRange(ctx, start, end)
}

func (s *mealService) FoodItemsForMeal(ctx context.Context, mealID string) ([]models.FoodItem, error) {
	return s.meals.ItemsForMeal(ctx, mealID)
}

// UpdateFoodItem validates only the supplied fields, then applies the edit and
// the owning meal's total recompute in one transaction.
func (s *mealService) UpdateFoodItem(ctx context.Context, itemID string, update FoodItemUpdate) error {
	updates := map[string]any{}
	if update.Name != nil {
		if n := utf8.RuneCountInString(*update.Name); n == 0 || n > 100 {
			return apperrors.NewValidation("name must be 1-100 characters")
		}
		updates["name"] = *update.Name
	}
	if update.Grams != nil {
		if *update.Grams < 1 {
			return apperrors.NewValidation("grams must be >= 1")
		}
		updates["grams"] = *update.Grams
	}
	if update.Calories != nil {
		if *update.Calories < 0 {
			return apperrors.NewValidation("calories must be non-negative")
		}
		updates["calories"] = *update.Calories
	}
	if update.Confidence != nil {
		if !update.Confidence.Valid() {
			return apperrors.NewValidation("confidence must be high, medium, or low")
		}
		updates["confidence"] = *update.Confidence
	}

	item, err := s.meals.UpdateItem(ctx, itemID, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("food item", itemID)
	}
	if err != nil {
		return err
	}
	events.Emit(ctx, events.NewItemUpdated(item.ID, item.MealID))
	return nil
}

// DeleteFoodItem removes the item; dropping a meal's last item removes the
// meal as well, so an empty meal is never observable. A cascade publishes
// both the item and meal deletion events.
func (s *mealService) DeleteFoodItem(ctx context.Context, itemID string) error {
	item, mealDeleted, err := s.meals.DeleteItem(ctx, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("food item", itemID)
	}
	if err != nil {
		return err
	}
	events.Emit(ctx, events.NewItemDeleted(item.ID, item.MealID))
	if mealDeleted {
		events.Emit(ctx, events.NewMealDeleted(item.MealID))
	}
	return nil
}

func (s *mealService) DeleteMeal(ctx context.Context, mealID string) error {
	err := s.meals.Delete(ctx, mealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("meal", mealID)
	}
	if err != nil {
		return err
	}
	events.Emit(ctx, events.NewMealDeleted(mealID))
	return nil
}

// DailySummary is a derived read over one day's meals.
func (s *mealService) DailySummary(ctx context.Context, date string) (*DailySummary, error) {
	meals, err := s.MealsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	summary := &DailySummary{
		Date:   date,
		ByType: make(map[models.MealType]int),
	}
	for _, meal := range meals {
		summary.MealCount++
		summary.TotalCalories += meal.TotalCalories
		if meal.Type != "" {
			summary.ByType[meal.Type] += meal.TotalCalories
		}
	}
	return summary, nil
}

func validateItemDraft(index int, item ItemDraft) error {
	// Length limits count characters, not bytes, matching the AI client's
	// truncation rule so an analyzed name is never rejected on save.
	if n := utf8.RuneCountInString(item.Name); n == 0 || n > 100 {
		return apperrors.NewItemValidation(index, "name must be 1-100 characters")
	}
	if item.Grams < 1 {
		return apperrors.NewItemValidation(index, "grams must be >= 1")
	}
	if item.Calories < 0 {
		return apperrors.NewItemValidation(index, "calories must be non-negative")
	}
	if !item.Confidence.Valid() {
		return apperrors.NewItemValidation(index, "confidence must be high, medium, or low")
	}
	return nil
}
