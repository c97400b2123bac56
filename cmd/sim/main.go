package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
	"github.com/emberduel/ember-server-go/internal/server"
)

// memCounters keeps lifetime counters for the run, no database needed.
type memCounters struct {
	byPlayer map[int]counters.Snapshot
}

func (m *memCounters) Save(_ context.Context, playerID int, snap counters.Snapshot) error {
	m.byPlayer[playerID] = snap
	return nil
}

func (m *memCounters) Load(_ context.Context, playerID int) (counters.Snapshot, error) {
	if snap, ok := m.byPlayer[playerID]; ok {
		return snap, nil
	}
	return counters.Snapshot{}, nil
}

type memDecks struct {
	byPlayer map[int][]int
}

func (m *memDecks) Load(_ context.Context, playerID int) (*game.MemoryDeck, error) {
	return game.NewMemoryDeck(m.byPlayer[playerID]...), nil
}

func (m *memDecks) Save(_ context.Context, playerID int, deck game.DeckRecord) error {
	m.byPlayer[playerID] = deck.GetAllCardIDs()
	return nil
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	catalog := demoCatalog()

	counterStore := &memCounters{byPlayer: map[int]counters.Snapshot{}}
	deckStore := &memDecks{byPlayer: map[int][]int{
		1: {101, 101, 101, 102, 103},
	}}

	arena := server.NewArena(catalog, counterStore, deckStore, logger)

	ctx := context.Background()
	session, err := arena.StartFight(ctx, 1, "Iri", 60, 3, server.OpponentSetup{
		ID:        2,
		Name:      "Ashwalker",
		MaxHealth: 45,
		MaxEnergy: 3,
		DeckIDs:   []int{201, 201},
	})
	if err != nil {
		logger.Fatal("failed to start fight", zap.Error(err))
	}

	fight := session.Fight
	engine := session.Engine

	// Run three turns, playing every Cinder Jab drawn. The third play
	// triggers its upgrade into Cinder Barrage.
	for turn := 1; turn <= 3; turn++ {
		fight.StartTurn(1)
		for i := 0; i < 3; i++ {
			fight.DrawOneCard(1)
		}
		hand := append([]*game.CardInstance(nil), fight.CardsInHand(1)...)
		for _, inst := range hand {
			def := catalog.DefinitionByID(inst.DefID)
			if def == nil || def.Cost > fight.Entity(1).Energy {
				continue
			}
			if err := engine.ResolveCard(fight, 1, inst); err != nil {
				logger.Warn("card resolution failed", zap.Error(err))
				continue
			}
			logger.Info("played card",
				zap.Int("turn", turn),
				zap.String("card", def.Name),
				zap.Int("enemy_health", fight.Entity(2).Health),
			)
		}
		fight.EndTurn(1)
	}

	if session.Upgrades.Upgraded(1, 101) {
		logger.Info("cinder jab upgraded into cinder barrage")
	}

	if err := arena.FinishFight(ctx, session, targeting.SidePlayer); err != nil {
		logger.Fatal("failed to finish fight", zap.Error(err))
	}

	logger.Info("persistent deck after fight", zap.Ints("cards", deckStore.byPlayer[1]))
	for name, byKey := range counterStore.byPlayer[1] {
		for key, value := range byKey {
			logger.Info("lifetime counter",
				zap.String("counter", name),
				zap.Int("key", key),
				zap.Int("value", value),
			)
		}
	}
}

// demoCatalog builds a small card set inline so the sim runs standalone.
func demoCatalog() *game.Catalog {
	catalog := game.NewCatalog()

	catalog.Add(&game.CardDefinition{
		ID:            101,
		Name:          "Cinder Jab",
		Cost:          1,
		Type:          game.CardTypeAttack,
		ComboBuilding: true,
		Effects: []game.Effect{
			{Kind: game.EffectDamage, Target: targeting.SpecifierOpponent, Amount: 5},
		},
		Upgrade: &game.UpgradeSpec{
			Condition:     conditions.KindTimesPlayedThisFight,
			Comparator:    conditions.CompareGTE,
			Required:      3,
			UpgradedDefID: 111,
			AllCopies:     true,
		},
	})
	catalog.Add(&game.CardDefinition{
		ID:            111,
		Name:          "Cinder Barrage",
		Cost:          1,
		Type:          game.CardTypeAttack,
		ComboBuilding: true,
		Effects: []game.Effect{
			{
				Kind:    game.EffectDamage,
				Target:  targeting.SpecifierOpponent,
				Amount:  7,
				Scaling: &game.ScalingRule{Source: game.ScaleComboCount, Multiplier: 1.5, Cap: 14},
			},
		},
	})
	catalog.Add(&game.CardDefinition{
		ID:   102,
		Name: "Ember Veil",
		Cost: 1,
		Type: game.CardTypeSkill,
		Effects: []game.Effect{
			{Kind: game.EffectApplyShield, Target: targeting.SpecifierSelf, Amount: 6},
		},
		Stance: &game.StanceChange{Stance: game.StanceEmber},
	})
	catalog.Add(&game.CardDefinition{
		ID:       103,
		Name:     "Final Spark",
		Cost:     2,
		Type:     game.CardTypeAttack,
		Finisher: true,
		Effects: []game.Effect{
			{
				Kind:    game.EffectDamage,
				Target:  targeting.SpecifierOpponent,
				Amount:  4,
				Scaling: &game.ScalingRule{Source: game.ScaleComboCount, Multiplier: 2},
			},
		},
	})
	catalog.Add(&game.CardDefinition{
		ID:   201,
		Name: "Ash Claw",
		Cost: 1,
		Type: game.CardTypeAttack,
		Effects: []game.Effect{
			{Kind: game.EffectDamage, Target: targeting.SpecifierOpponent, Amount: 6},
		},
	})

	return catalog
}
