package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game/counters"
)

// CounterRepository persists lifetime counter snapshots per player.
//
// Rows are keyed (player_id, counter_name, card_def_id). Entity-wide
// counters use card_def_id 0.
type CounterRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCounterRepository creates a counter repository over the shared pool.
func NewCounterRepository(db *DB, logger *zap.Logger) *CounterRepository {
	return &CounterRepository{db: db, logger: logger}
}

// Save writes a lifetime snapshot for a player inside one transaction.
func (r *CounterRepository) Save(ctx context.Context, playerID int, snap counters.Snapshot) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin counter save: %w", err)
	}
	defer tx.Rollback(ctx)

	for name, byDef := range snap {
		for defID, amount := range byDef {
			_, err := tx.Exec(ctx, `
				INSERT INTO player_counters (player_id, counter_name, card_def_id, amount)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (player_id, counter_name, card_def_id)
				DO UPDATE SET amount = EXCLUDED.amount
			`, playerID, name, defID, amount)
			if err != nil {
				return fmt.Errorf("save counter %s for player %d: %w", name, playerID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit counter save: %w", err)
	}
	r.logger.Debug("lifetime counters saved",
		zap.Int("player", playerID),
		zap.Int("counters", len(snap)),
	)
	return nil
}

// Load reads a player's full lifetime snapshot.
func (r *CounterRepository) Load(ctx context.Context, playerID int) (counters.Snapshot, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT counter_name, card_def_id, amount
		FROM player_counters
		WHERE player_id = $1
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("load counters for player %d: %w", playerID, err)
	}
	defer rows.Close()

	snap := counters.Snapshot{}
	for rows.Next() {
		var name string
		var defID, amount int
		if err := rows.Scan(&name, &defID, &amount); err != nil {
			return nil, fmt.Errorf("scan counter row: %w", err)
		}
		byDef := snap[name]
		if byDef == nil {
			byDef = map[int]int{}
			snap[name] = byDef
		}
		byDef[defID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read counter rows: %w", err)
	}
	return snap, nil
}
