package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"meallens/internal/models"
)

// versionStateKey is the single row tracked for update notifications.
const versionStateKey = "app-version-state"

type VersionStateRepository interface {
	Get(ctx context.Context) (*models.VersionState, error)
	Put(ctx context.Context, state *models.VersionState) error
}

type versionStateRepository struct {
	db *gorm.DB
}

func NewVersionStateRepository(db *gorm.DB) VersionStateRepository {
	return &versionStateRepository{db: db}
}

func (r *versionStateRepository) Get(ctx context.Context) (*models.VersionState, error) {
	var state models.VersionState
	if err := r.db.WithContext(ctx).First(&state, "key = ?", versionStateKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.VersionState{Key: versionStateKey}, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *versionStateRepository) Put(ctx context.Context, state *models.VersionState) error {
	state.Key = versionStateKey
	return r.db.WithContext(ctx).Save(state).Error
}
