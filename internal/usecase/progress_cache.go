package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProgressCache is a read-through cache for derived progress reports. A nil
// or unavailable backing store must degrade to misses, never to errors that
// reach the caller.
type ProgressCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const progressCacheTTL = 5 * time.Minute

func progressCacheKey(assessmentID uuid.UUID) string {
	return "assessments:progress:" + assessmentID.String()
}
