package repositories

import (
	"context"

	"gorm.io/gorm"

	"meallens/internal/models"
)

// StoreRepository covers maintenance operations spanning every table.
type StoreRepository interface {
	ClearAll(ctx context.Context) error
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// ClearAll empties all tables atomically (factory reset).
func (r *storeRepository) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.FoodItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Meal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Setting{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.VersionState{}).Error
	})
}
