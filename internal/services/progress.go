package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
)

// LiveProgressProvider answers the current completion percent for a user on
// an externally hosted activity (an LMS course, a form, a community module).
// It is consulted only when no ActivityState row has been recorded yet.
type LiveProgressProvider interface {
	ProgressPercent(ctx context.Context, userID uuid.UUID, externalRef string) (int, error)
}

// ProviderRegistry routes activity types to their live progress provider.
// Types without a provider fall back to zero percent.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]LiveProgressProvider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]LiveProgressProvider)}
}

func (r *ProviderRegistry) Register(activityType string, provider LiveProgressProvider) {
	if activityType == "" || provider == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[activityType] = provider
}

func (r *ProviderRegistry) ForType(activityType string) (LiveProgressProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[activityType]
	return p, ok
}

// fetchLiveProgress is the best-effort provider call: bounded by timeout,
// clamped to 0..100, zero on any failure.
func fetchLiveProgress(ctx context.Context, log *logger.Logger, provider LiveProgressProvider, userID uuid.UUID, externalRef string, timeout time.Duration) int {
	if provider == nil {
		return 0
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	percent, err := provider.ProgressPercent(ctx, userID, externalRef)
	if err != nil {
		if log != nil {
			log.Warn("Live progress lookup failed, using 0", "error", err, "user_id", userID, "external_ref", externalRef)
		}
		return 0
	}
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
