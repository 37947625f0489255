package signal

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
)

// Event asks for a rollup recompute for one enrollment. Any subsystem that
// mutates completion state emits one after its write; the consumer is
// idempotent, so duplicate delivery is harmless.
type Event struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
}

type Handler func(ctx context.Context, ev Event) error

// Bus carries recompute events from state writers to the rollup aggregator.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEv Handler) error
	Close() error
}

// inProcessBus delivers events synchronously, in the publisher's goroutine,
// at the moment Publish is called. No queue, no retry: a failed delivery
// surfaces to the publisher, and the cached rollup self-heals on the next
// event because recompute reads current state.
type inProcessBus struct {
	log *logger.Logger

	mu       sync.RWMutex
	handlers []Handler
}

func NewInProcessBus(log *logger.Logger) Bus {
	return &inProcessBus{log: log.With("service", "InProcessSignalBus")}
}

func (b *inProcessBus) Publish(ctx context.Context, ev Event) error {
	if ev.EnrollmentID == uuid.Nil {
		return fmt.Errorf("missing enrollment id")
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Warn("Recompute event published with no consumer", "enrollment_id", ev.EnrollmentID)
		return nil
	}

	var firstErr error
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *inProcessBus) StartForwarder(_ context.Context, onEv Handler) error {
	if onEv == nil {
		return fmt.Errorf("onEv callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, onEv)
	return nil
}

func (b *inProcessBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = nil
	return nil
}
