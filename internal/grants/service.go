// Package grants manages per-project, per-user capability sets. Lookups
// go through a redis read-through cache; cache trouble degrades to the
// store and is never surfaced.
package grants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/notify"
	"projecttracker/internal/store"
)

const cacheTTL = 5 * time.Minute

type Service struct {
	grants   store.GrantStore
	cache    *redis.Client // optional; nil disables caching
	notifier *notify.Notifier
	logger   *zap.Logger
}

func NewService(grants store.GrantStore, cache *redis.Client, notifier *notify.Notifier, logger *zap.Logger) *Service {
	return &Service{grants: grants, cache: cache, notifier: notifier, logger: logger}
}

func cacheKey(projectID, userID int) string {
	return fmt.Sprintf("grant:%d:%d", projectID, userID)
}

// Assign replaces the whole capability set for the (project, user) pair
// and invalidates the cached copy.
func (s *Service) Assign(ctx context.Context, projectID, userID int, capabilities []string) error {
	for _, c := range capabilities {
		if !model.KnownCapability(c) {
			return apperr.InvalidState("unknown capability %q", c)
		}
	}

	grant := &model.PermissionGrant{
		ProjectID:    projectID,
		UserID:       userID,
		Capabilities: capabilities,
	}
	if err := s.grants.Put(ctx, grant); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey(projectID, userID)).Err(); err != nil {
			s.logger.Warn("Failed to invalidate grant cache",
				zap.Int("project_id", projectID),
				zap.Int("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Permission grant assigned",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
		zap.Strings("capabilities", capabilities),
	)
	s.notifier.Notify(ctx, notify.EventPermissionsAssigned, projectID,
		"your project permissions were updated", userID)
	return nil
}

// Get returns the grant for the pair. A missing grant is an empty
// capability set, not an error.
func (s *Service) Get(ctx context.Context, projectID, userID int) (*model.PermissionGrant, error) {
	key := cacheKey(projectID, userID)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var caps []string
			if err := json.Unmarshal([]byte(raw), &caps); err == nil {
				return &model.PermissionGrant{ProjectID: projectID, UserID: userID, Capabilities: caps}, nil
			}
			s.logger.Warn("Corrupt grant cache entry, falling through",
				zap.String("key", key),
			)
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Grant cache read failed, falling through",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	grant, err := s.grants.Get(ctx, projectID, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		grant = &model.PermissionGrant{ProjectID: projectID, UserID: userID, Capabilities: []string{}}
	} else if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(grant.Capabilities); err == nil {
			if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
				s.logger.Warn("Grant cache write failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}
	return grant, nil
}
