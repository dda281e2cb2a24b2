package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Evgen-Mutagen/paymentref/internal/core"
	"github.com/Evgen-Mutagen/paymentref/internal/model"
	"github.com/Evgen-Mutagen/paymentref/internal/repository"
	"github.com/Evgen-Mutagen/paymentref/internal/util/metrics"
	"github.com/Evgen-Mutagen/paymentref/pkg/paymentref"
	"go.uber.org/zap"
)

type statKey struct {
	scheme string
	kind   string
}

type referenceService struct {
	statsRepo repository.StatsRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[statKey]int64
}

func NewReferenceService(
	statsRepo repository.StatsRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) core.ReferenceService {
	return &referenceService{
		statsRepo: statsRepo,
		metrics:   m,
		logger:    logger,
		pending:   make(map[statKey]int64),
	}
}

func (s *referenceService) Validate(ctx context.Context, value string) paymentref.Result {
	res := paymentref.Validate(value)
	s.record(res)
	return res
}

func (s *referenceService) ValidateBatch(ctx context.Context, values []string) []paymentref.Result {
	results := make([]paymentref.Result, len(values))
	for i, value := range values {
		results[i] = s.Validate(ctx, value)
	}
	return results
}

func (s *referenceService) record(res paymentref.Result) {
	scheme, kind := res.Scheme.String(), res.Kind.String()

	s.metrics.ObserveValidation(scheme, kind)

	s.mu.Lock()
	s.pending[statKey{scheme: scheme, kind: kind}]++
	s.mu.Unlock()

	switch res.Kind {
	case paymentref.KindValid:
		s.logger.Debug("Payment reference valid", zap.String("scheme", scheme))
	case paymentref.KindUnexpectedFault:
		s.logger.Error("Payment reference validation faulted",
			zap.String("scheme", scheme),
			zap.Error(res.Err))
	default:
		s.logger.Debug("Payment reference rejected",
			zap.String("scheme", scheme),
			zap.String("kind", kind))
	}
}

func (s *referenceService) takePending() []model.StatDelta {
	s.mu.Lock()
	defer s.mu.Unlock()

	deltas := make([]model.StatDelta, 0, len(s.pending))
	for k, n := range s.pending {
		deltas = append(deltas, model.StatDelta{Scheme: k.scheme, Kind: k.kind, Count: n})
	}
	s.pending = make(map[statKey]int64)
	return deltas
}

func (s *referenceService) restorePending(deltas []model.StatDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deltas {
		s.pending[statKey{scheme: d.Scheme, kind: d.Kind}] += d.Count
	}
}

func (s *referenceService) FlushStats(ctx context.Context) error {
	deltas := s.takePending()
	if len(deltas) == 0 {
		return nil
	}

	if err := s.statsRepo.Add(ctx, deltas); err != nil {
		s.restorePending(deltas)
		return fmt.Errorf("failed to flush stats: %w", err)
	}

	s.logger.Debug("Stats flushed", zap.Int("rows", len(deltas)))
	return nil
}

// Stats returns stored totals with outcomes that have not been flushed yet.
func (s *referenceService) Stats(ctx context.Context) ([]*model.SchemeStat, error) {
	stored, err := s.statsRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	byKey := make(map[statKey]*model.SchemeStat, len(stored))
	for _, st := range stored {
		byKey[statKey{scheme: st.Scheme, kind: st.Kind}] = st
	}

	s.mu.Lock()
	for k, n := range s.pending {
		st, ok := byKey[k]
		if !ok {
			st = &model.SchemeStat{Scheme: k.scheme, Kind: k.kind}
			byKey[k] = st
		}
		st.Total += n
	}
	s.mu.Unlock()

	stats := make([]*model.SchemeStat, 0, len(byKey))
	for _, st := range byKey {
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Scheme != stats[j].Scheme {
			return stats[i].Scheme < stats[j].Scheme
		}
		return stats[i].Kind < stats[j].Kind
	})
	return stats, nil
}
