package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Evgen-Mutagen/paymentref/internal/model"
)

type statKey struct {
	scheme string
	kind   string
}

// memoryStatsRepository is used when no database is configured.
type memoryStatsRepository struct {
	mu    sync.RWMutex
	stats map[statKey]*model.SchemeStat
	now   func() time.Time
}

func NewMemoryStatsRepository() StatsRepository {
	return &memoryStatsRepository{
		stats: make(map[statKey]*model.SchemeStat),
		now:   time.Now,
	}
}

func (r *memoryStatsRepository) Add(_ context.Context, deltas []model.StatDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, d := range deltas {
		key := statKey{scheme: d.Scheme, kind: d.Kind}
		s, ok := r.stats[key]
		if !ok {
			s = &model.SchemeStat{Scheme: d.Scheme, Kind: d.Kind}
			r.stats[key] = s
		}
		s.Total += d.Count
		s.UpdatedAt = now
	}
	return nil
}

func (r *memoryStatsRepository) Summary(_ context.Context) ([]*model.SchemeStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]*model.SchemeStat, 0, len(r.stats))
	for _, s := range r.stats {
		cp := *s
		stats = append(stats, &cp)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Scheme != stats[j].Scheme {
			return stats[i].Scheme < stats[j].Scheme
		}
		return stats[i].Kind < stats[j].Kind
	})
	return stats, nil
}
