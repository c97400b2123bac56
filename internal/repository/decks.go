package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
)

// DeckRepository loads and saves persistent deck lists. Fights mutate an
// in-memory deck record; the final list is written back when the fight ends.
type DeckRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDeckRepository creates a deck repository over the shared pool.
func NewDeckRepository(db *DB, logger *zap.Logger) *DeckRepository {
	return &DeckRepository{db: db, logger: logger}
}

// Load reads a player's deck into a memory record, duplicates preserved in
// slot order.
func (r *DeckRepository) Load(ctx context.Context, playerID int) (*game.MemoryDeck, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT card_def_id
		FROM player_decks
		WHERE player_id = $1
		ORDER BY slot
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("load deck for player %d: %w", playerID, err)
	}
	defer rows.Close()

	deck := game.NewMemoryDeck()
	for rows.Next() {
		var defID int
		if err := rows.Scan(&defID); err != nil {
			return nil, fmt.Errorf("scan deck row: %w", err)
		}
		deck.Add(defID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read deck rows: %w", err)
	}
	return deck, nil
}

// Save replaces the stored deck list with the record's current contents.
func (r *DeckRepository) Save(ctx context.Context, playerID int, deck game.DeckRecord) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin deck save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM player_decks WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clear deck for player %d: %w", playerID, err)
	}
	for slot, defID := range deck.GetAllCardIDs() {
		_, err := tx.Exec(ctx, `
			INSERT INTO player_decks (player_id, slot, card_def_id)
			VALUES ($1, $2, $3)
		`, playerID, slot, defID)
		if err != nil {
			return fmt.Errorf("save deck slot %d for player %d: %w", slot, playerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit deck save: %w", err)
	}
	r.logger.Debug("deck saved",
		zap.Int("player", playerID),
		zap.Int("cards", len(deck.GetAllCardIDs())),
	)
	return nil
}
