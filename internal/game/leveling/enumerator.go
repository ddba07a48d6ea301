package leveling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
	"github.com/cory-johannsen/pvp-damage/internal/game/stats"
)

// Enumerator builds rosters across a pool of worker goroutines and optionally
// caches them per species form and cap.
//
// Enumerator is safe for concurrent use.
type Enumerator struct {
	workers int
	cache   bool
	logger  *zap.Logger

	mu      sync.Mutex
	rosters map[string]*Roster
	group   singleflight.Group
}

// NewEnumerator creates an Enumerator.
//
// Precondition: workers >= 1.
// Postcondition: Returns a non-nil Enumerator; a nil logger is replaced with a no-op logger.
func NewEnumerator(workers int, cacheRosters bool, logger *zap.Logger) *Enumerator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{
		workers: workers,
		cache:   cacheRosters,
		logger:  logger,
		rosters: make(map[string]*Roster),
	}
}

func rosterKey(species *catalog.Species, capLimit int) string {
	return fmt.Sprintf("%s@%d", species.Key(), capLimit)
}

// Enumerate returns the Roster for species under capLimit.
//
// Precondition: species is non-nil.
// Postcondition: The result equals leveling.Enumerate(species, capLimit).
func (e *Enumerator) Enumerate(ctx context.Context, species *catalog.Species, capLimit int) (*Roster, error) {
	if !e.cache {
		return e.build(ctx, species, capLimit)
	}
	key := rosterKey(species, capLimit)
	e.mu.Lock()
	r, ok := e.rosters[key]
	e.mu.Unlock()
	if ok {
		return r, nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		r, err := e.build(ctx, species, capLimit)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.rosters[key] = r
		e.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Roster), nil
}

// CachedRosters returns the number of cached rosters.
func (e *Enumerator) CachedRosters() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rosters)
}

func (e *Enumerator) build(ctx context.Context, species *catalog.Species, capLimit int) (*Roster, error) {
	start := time.Now()
	r := newRoster(species, capLimit)
	g, ctx := errgroup.WithContext(ctx)
	chunk := (stats.IVCombinations + e.workers - 1) / e.workers
	for from := 0; from < stats.IVCombinations; from += chunk {
		to := min(from+chunk, stats.IVCombinations)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.fill(from, to)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enumerating %s at CP %d: %w", species.FullName(), capLimit, err)
	}
	e.logger.Debug("roster enumerated",
		zap.String("species", species.Key()),
		zap.Int("cap", capLimit),
		zap.Int("workers", e.workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}
