package repositories

import (
	"context"

	"gorm.io/gorm"

	"meallens/internal/models"
)

// MealRepository is the transactional store for meals and their food items.
// Every mutating method runs as a single transaction: the meal/item tables and
// the derived TotalCalories column are never observable out of sync.
type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal, items []models.FoodItem) error
	FindByID(ctx context.Context, id string) (*models.Meal, error)
	FindByDate(ctx context.Context, date string) ([]models.Meal, error)
	FindByDateRange(ctx context.Context, start, end string) ([]models.Meal, error)
	ItemsForMeal(ctx context.Context, mealID string) ([]models.FoodItem, error)
	UpdateItem(ctx context.Context, itemID string, updates map[string]any) (*models.FoodItem, error)
	DeleteItem(ctx context.Context, itemID string) (*models.FoodItem, bool, error)
	Delete(ctx context.Context, mealID string) error
}

type mealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

// Create persists the meal and all items as one indivisible unit.
func (r *mealRepository) Create(ctx context.Context, meal *models.Meal, items []models.FoodItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meal).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *mealRepository) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	var meal models.Meal
	if err := r.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *mealRepository) FindByDate(ctx context.Context, date string) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("timestamp ASC").
		Find(&meals).Error
	return meals, err
}

func (r *mealRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Order("timestamp ASC").
		Find(&meals).Error
	return meals, err
}

func (r *mealRepository) ItemsForMeal(ctx context.Context, mealID string) ([]models.FoodItem, error) {
	var items []models.FoodItem
	err := r.db.WithContext(ctx).Where("meal_id = ?", mealID).Find(&items).Error
	return items, err
}

// UpdateItem applies the given column updates to one item, then recomputes the
// owning meal's total within the same transaction. Returns the updated item.
func (r *mealRepository) UpdateItem(ctx context.Context, itemID string, updates map[string]any) (*models.FoodItem, error) {
	var item models.FoodItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.FoodItem{}).Where("id = ?", itemID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return err
		}
		return recomputeTotal(tx, item.MealID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes one item. When the meal is left empty it is deleted too,
// otherwise the total is recomputed. Returns the deleted item and whether the
// owning meal was removed by the cascade.
func (r *mealRepository) DeleteItem(ctx context.Context, itemID string) (*models.FoodItem, bool, error) {
	var item models.FoodItem
	mealDeleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.FoodItem{}, "id = ?", itemID).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.FoodItem{}).Where("meal_id = ?", item.MealID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			mealDeleted = true
			return tx.Delete(&models.Meal{}, "id = ?", item.MealID).Error
		}
		return recomputeTotal(tx, item.MealID)
	})
	if err != nil {
		return nil, false, err
	}
	return &item, mealDeleted, nil
}

// Delete cascades: the meal and every owned item go in one transaction.
func (r *mealRepository) Delete(ctx context.Context, mealID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := tx.First(&meal, "id = ?", mealID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.FoodItem{}, "meal_id = ?", mealID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Meal{}, "id = ?", mealID).Error
	})
}

// recomputeTotal persists TotalCalories as the sum over the meal's current items.
func recomputeTotal(tx *gorm.DB, mealID string) error {
	var total int64
	err := tx.Model(&models.FoodItem{}).
		Where("meal_id = ?", mealID).
		Select("COALESCE(SUM(calories), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Meal{}).Where("id = ?", mealID).Update("total_calories", total).Error
}
