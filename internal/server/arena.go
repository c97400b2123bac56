package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/rules"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
	"github.com/emberduel/ember-server-go/internal/game/upgrade"
)

// CounterStore persists lifetime counter snapshots between fights.
type CounterStore interface {
	Save(ctx context.Context, playerID int, snap counters.Snapshot) error
	Load(ctx context.Context, playerID int) (counters.Snapshot, error)
}

// DeckStore persists deck lists between fights.
type DeckStore interface {
	Load(ctx context.Context, playerID int) (*game.MemoryDeck, error)
	Save(ctx context.Context, playerID int, deck game.DeckRecord) error
}

// OpponentSetup describes the enemy side of a new fight.
type OpponentSetup struct {
	ID        int
	Name      string
	MaxHealth int
	MaxEnergy int
	DeckIDs   []int
}

// FightSession bundles a running fight with its engine and upgrade tracker.
type FightSession struct {
	ID       string
	PlayerID int
	Fight    *game.Fight
	Engine   *game.Engine
	Upgrades *upgrade.Evaluator
	Journal  *game.Journal
}

// Arena creates fights, wires the upgrade pipeline into each one, and
// persists lifetime progress when a fight ends.
type Arena struct {
	catalog  *game.Catalog
	counters CounterStore
	decks    DeckStore
	sync     *SyncServer
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*FightSession
}

// NewArena creates an arena over the given catalog and stores.
func NewArena(catalog *game.Catalog, counterStore CounterStore, deckStore DeckStore, logger *zap.Logger) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arena{
		catalog:  catalog,
		counters: counterStore,
		decks:    deckStore,
		logger:   logger,
		sessions: make(map[string]*FightSession),
	}
}

// SetSync attaches the sync server so new fights are watched for progress
// broadcasts.
func (a *Arena) SetSync(s *SyncServer) {
	a.sync = s
}

// StartFight loads the player's persistent state, builds a fight against the
// given opponent, and begins it.
func (a *Arena) StartFight(ctx context.Context, playerID int, playerName string, playerHealth, playerEnergy int, opp OpponentSetup) (*FightSession, error) {
	deck, err := a.decks.Load(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	lifetime, err := a.counters.Load(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}

	bus := rules.NewEventBus()
	store := counters.NewStore()
	store.ImportLifetime(playerID, lifetime)

	fight := game.NewFight(a.logger, bus, store, nil)

	player := game.NewEntity(playerID, playerName, targeting.SidePlayer, playerHealth, playerEnergy)
	player.Deck = deck
	fight.AddEntity(player)

	enemy := game.NewEntity(opp.ID, opp.Name, targeting.SideOpponent, opp.MaxHealth, opp.MaxEnergy)
	enemy.Deck = game.NewMemoryDeck(opp.DeckIDs...)
	fight.AddEntity(enemy)

	fight.RegisterOpponent(targeting.SidePlayer, enemy.ID)
	fight.RegisterOpponent(targeting.SideOpponent, player.ID)

	for _, defID := range deck.GetAllCardIDs() {
		fight.AddCardToDeck(playerID, defID)
	}
	for _, defID := range opp.DeckIDs {
		fight.AddCardToDeck(opp.ID, defID)
	}

	evaluator := conditions.NewEvaluator(a.logger)
	engine := game.NewEngine(a.catalog, evaluator, targeting.NewResolver(a.logger, nil), a.logger)
	upgrades := upgrade.NewEvaluator(a.catalog, evaluator, upgrade.NewExecutor(a.catalog, a.logger), a.logger)
	upgrades.Attach(fight)

	if a.sync != nil {
		a.sync.Watch(fight)
	}

	sessionID := uuid.New().String()
	journal := game.NewJournal(sessionID)
	journal.Attach(fight)

	session := &FightSession{
		ID:       sessionID,
		PlayerID: playerID,
		Fight:    fight,
		Engine:   engine,
		Upgrades: upgrades,
		Journal:  journal,
	}

	a.mu.Lock()
	a.sessions[session.ID] = session
	a.mu.Unlock()

	fight.Begin()
	a.logger.Info("fight started",
		zap.String("session", session.ID),
		zap.Int("player", playerID),
		zap.String("opponent", opp.Name),
	)
	return session, nil
}

// Session looks up a running session by id.
func (a *Arena) Session(id string) *FightSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[id]
}

// FinishFight ends the session's fight and persists the player's lifetime
// counters and deck.
func (a *Arena) FinishFight(ctx context.Context, session *FightSession, winner targeting.Side) error {
	session.Fight.End(winner)
	session.Journal.Detach()

	if a.sync != nil {
		a.sync.Unwatch(session.Fight)
	}
	a.mu.Lock()
	delete(a.sessions, session.ID)
	a.mu.Unlock()

	snap := session.Fight.Store().LifetimeSnapshot(session.PlayerID)
	if err := a.counters.Save(ctx, session.PlayerID, snap); err != nil {
		return fmt.Errorf("save counters: %w", err)
	}
	player := session.Fight.Entity(session.PlayerID)
	if player != nil && player.Deck != nil {
		if err := a.decks.Save(ctx, session.PlayerID, player.Deck); err != nil {
			return fmt.Errorf("save deck: %w", err)
		}
	}
	a.logger.Info("fight finished",
		zap.String("session", session.ID),
		zap.Int("player", session.PlayerID),
		zap.Stringer("winner", winner),
		zap.Int("events", session.Journal.Size()),
		zap.String("progress_checksum", game.ProgressChecksum(snap)),
	)
	return nil
}
