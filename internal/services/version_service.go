package services

import (
	"context"
	"time"

	"meallens/internal/models"
	"meallens/internal/repositories"
)

// notifyThrottleWindow suppresses repeat notifications for a version the user
// already dismissed within the last day.
const notifyThrottleWindow = 24 * time.Hour

type VersionService interface {
	State(ctx context.Context) (*models.VersionState, error)
	RecordCheck(ctx context.Context, at time.Time) error
	DismissVersion(ctx context.Context, version string, at time.Time) error
	ShouldNotify(ctx context.Context, version string, now time.Time) (bool, error)
}

type versionService struct {
	state repositories.VersionStateRepository
}

func NewVersionService(state repositories.VersionStateRepository) VersionService {
	return &versionService{state: state}
}

func (s *versionService) State(ctx context.Context) (*models.VersionState, error) {
	return s.state.Get(ctx)
}

func (s *versionService) RecordCheck(ctx context.Context, at time.Time) error {
	state, err := s.state.Get(ctx)
	if err != nil {
		return err
	}
	state.LastCheckAt = at.UnixMilli()
	return s.state.Put(ctx, state)
}

func (s *versionService) DismissVersion(ctx context.Context, version string, at time.Time) error {
	state, err := s.state.Get(ctx)
	if err != nil {
		return err
	}
	state.LastDismissedVersion = version
	state.LastDismissedAt = at.UnixMilli()
	return s.state.Put(ctx, state)
}

// ShouldNotify reports whether an available version warrants a notification:
// yes for any version the user has not dismissed, and again for a dismissed
// one once the throttle window has passed.
func (s *versionService) ShouldNotify(ctx context.Context, version string, now time.Time) (bool, error) {
	if version == "" {
		return false, nil
	}
	state, err := s.state.Get(ctx)
	if err != nil {
		return false, err
	}
	if state.LastDismissedVersion != version {
		return true, nil
	}
	return now.UnixMilli()-state.LastDismissedAt > notifyThrottleWindow.Milliseconds(), nil
}
