package service

import (
	"context"

	"novara/internal/cache"
	"novara/internal/model"
)

// ActivityService reads the per-user timelines the activity workers build.
type ActivityService struct {
	cache cache.ActivityCache
}

// NewActivityService accepts a nil cache; Recent then reports ErrActivityDisabled.
func NewActivityService(activity cache.ActivityCache) *ActivityService {
	return &ActivityService{cache: activity}
}

// Recent returns the caller's newest entries. limit is clamped to
// [1, MaxActivityLimit]; zero or negative selects the default.
func (s *ActivityService) Recent(ctx context.Context, userID int64, limit int) ([]model.Activity, error) {
	if s.cache == nil {
		return nil, model.ErrActivityDisabled
	}
	if limit <= 0 {
		limit = model.DefaultActivityLimit
	}
	if limit > model.MaxActivityLimit {
		limit = model.MaxActivityLimit
	}
	return s.cache.Recent(ctx, userID, limit)
}
