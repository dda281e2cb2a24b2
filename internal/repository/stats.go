package repository

import (
	"context"
	"fmt"

	"github.com/Evgen-Mutagen/paymentref/internal/model"
)

// StatsRepository stores outcome counters per scheme and kind. Reference
// values are never stored.
type StatsRepository interface {
	Add(ctx context.Context, deltas []model.StatDelta) error
	Summary(ctx context.Context) ([]*model.SchemeStat, error)
}

type statsRepository struct {
	db *Database
}

func NewStatsRepository(db *Database) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Add(ctx context.Context, deltas []model.StatDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO validation_stats (scheme, kind, total, updated_at)
              VALUES ($1, $2, $3, NOW())
              ON CONFLICT (scheme, kind)
              DO UPDATE SET total = validation_stats.total + EXCLUDED.total,
                            updated_at = EXCLUDED.updated_at`

	for _, d := range deltas {
		if _, err := tx.ExecContext(ctx, query, d.Scheme, d.Kind, d.Count); err != nil {
			return fmt.Errorf("failed to add stats for %s/%s: %w", d.Scheme, d.Kind, err)
		}
	}

	return tx.Commit()
}

func (r *statsRepository) Summary(ctx context.Context) ([]*model.SchemeStat, error) {
	query := `SELECT scheme, kind, total, updated_at
              FROM validation_stats
              ORDER BY scheme, kind`

	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var stats []*model.SchemeStat
	for rows.Next() {
		var s model.SchemeStat
		if err := rows.Scan(&s.Scheme, &s.Kind, &s.Total, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		stats = append(stats, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stats, nil
}
