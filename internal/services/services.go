package services

import (
	"gorm.io/gorm"

	"meallens/internal/repositories"
)

// Services aggregates all domain services backed by the database.
type Services struct {
	Meals    MealService
	Settings SettingsService
	Versions VersionService
}

// NewServices constructs the service container using repositories backed by db.
func NewServices(db *gorm.DB) *Services {
	mealRepo := repositories.NewMealRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	storeRepo := repositories.NewStoreRepository(db)
	versionRepo := repositories.NewVersionStateRepository(db)

	return &Services{
		Meals:    NewMealService(mealRepo),
		Settings: NewSettingsService(settingRepo, storeRepo),
		Versions: NewVersionService(versionRepo),
	}
}
