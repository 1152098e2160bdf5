package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/eats/internal/log"
)

type entry struct {
	engine     *SearchEngine
	lastAccess time.Time
}

// Registry keeps one SearchEngine per page key, a session id optionally
// narrowed to one page. Entering a different city replaces the engine with a
// fresh one.
type Registry struct {
	mu       sync.Mutex
	engines  map[string]*entry
	provider SearchProvider
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(provider SearchProvider, ttl time.Duration) *Registry {
	return &Registry{
		engines:  map[string]*entry{},
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *Registry) Enter(key string, city string) *SearchEngine {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.engines[key]
	if !ok || e.engine.City() != city {
		e = &entry{engine: NewSearchEngine(city, r.provider)}
		r.engines[key] = e
	}
	e.lastAccess = r.now()
	return e.engine
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Sweep drops engines idle for longer than the session ttl.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-r.ttl)
	removed := 0
	for key, e := range r.engines {
		if e.lastAccess.Before(deadline) {
			delete(r.engines, key)
			removed++
		}
	}
	return removed
}

func (r *Registry) StartSweeper(c context.Context, interval time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Registry StartSweeper").
		Str(log.KeyProcess, "sweeping idle search engines").
		Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopping search engine sweeper")
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("swept idle search engines")
			}
		}
	}
}
