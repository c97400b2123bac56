package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

type memCounterStore struct {
	byPlayer map[int]counters.Snapshot
}

func (m *memCounterStore) Save(_ context.Context, playerID int, snap counters.Snapshot) error {
	m.byPlayer[playerID] = snap
	return nil
}

func (m *memCounterStore) Load(_ context.Context, playerID int) (counters.Snapshot, error) {
	if snap, ok := m.byPlayer[playerID]; ok {
		return snap, nil
	}
	return counters.Snapshot{}, nil
}

type memDeckStore struct {
	byPlayer map[int][]int
}

func (m *memDeckStore) Load(_ context.Context, playerID int) (*game.MemoryDeck, error) {
	return game.NewMemoryDeck(m.byPlayer[playerID]...), nil
}

func (m *memDeckStore) Save(_ context.Context, playerID int, deck game.DeckRecord) error {
	m.byPlayer[playerID] = deck.GetAllCardIDs()
	return nil
}

func arenaCatalog() *game.Catalog {
	catalog := game.NewCatalog()
	catalog.Add(&game.CardDefinition{
		ID: 101, Name: "Cinder Jab", Cost: 0, Type: game.CardTypeAttack, ComboBuilding: true,
		Effects: []game.Effect{{Kind: game.EffectDamage, Target: targeting.SpecifierOpponent, Amount: 3}},
		Upgrade: &game.UpgradeSpec{
			Condition:     conditions.KindTimesPlayedThisFight,
			Comparator:    conditions.CompareGTE,
			Required:      3,
			UpgradedDefID: 111,
			AllCopies:     true,
		},
	})
	catalog.Add(&game.CardDefinition{
		ID: 111, Name: "Cinder Barrage", Cost: 0, Type: game.CardTypeAttack,
		Effects: []game.Effect{{Kind: game.EffectDamage, Target: targeting.SpecifierOpponent, Amount: 6}},
	})
	catalog.Add(&game.CardDefinition{
		ID: 201, Name: "Ash Claw", Cost: 1, Type: game.CardTypeAttack,
		Effects: []game.Effect{{Kind: game.EffectDamage, Target: targeting.SpecifierOpponent, Amount: 4}},
	})
	return catalog
}

func TestArenaFightLifecycle(t *testing.T) {
	counterStore := &memCounterStore{byPlayer: map[int]counters.Snapshot{}}
	deckStore := &memDeckStore{byPlayer: map[int][]int{1: {101, 101, 101}}}
	arena := NewArena(arenaCatalog(), counterStore, deckStore, zap.NewNop())

	ctx := context.Background()
	session, err := arena.StartFight(ctx, 1, "Iri", 60, 3, OpponentSetup{
		ID: 2, Name: "Ashwalker", MaxHealth: 40, MaxEnergy: 3, DeckIDs: []int{201},
	})
	require.NoError(t, err)
	require.NotNil(t, arena.Session(session.ID))

	// Play the whole deck: the third play upgrades every copy.
	session.Fight.StartTurn(1)
	for i := 0; i < 3; i++ {
		inst := session.Fight.DrawOneCard(1)
		require.NotNil(t, inst)
		require.NoError(t, session.Engine.ResolveCard(session.Fight, 1, inst))
	}
	session.Fight.EndTurn(1)

	// The enemy acts too; its plays belong to its own record.
	enemyInst := session.Fight.DrawOneCard(2)
	require.NotNil(t, enemyInst)
	require.NoError(t, session.Engine.ResolveCard(session.Fight, 2, enemyInst))

	assert.True(t, session.Upgrades.Upgraded(1, 101))
	assert.Greater(t, session.Journal.Size(), 0)

	require.NoError(t, arena.FinishFight(ctx, session, targeting.SidePlayer))
	assert.Nil(t, arena.Session(session.ID))

	// The upgraded deck persisted.
	assert.Equal(t, []int{111, 111, 111}, deckStore.byPlayer[1])

	// Lifetime counters persisted under the migrated definition, and only
	// the player's: the enemy's Ash Claw plays and its loss stay out.
	saved := counterStore.byPlayer[1]
	require.NotNil(t, saved)
	assert.Equal(t, 3, saved[counters.NameCardPlayed][111])
	assert.Equal(t, 1, saved[counters.NameFightsWon][0])
	assert.NotContains(t, saved[counters.NameCardPlayed], 201)
	assert.NotContains(t, saved, counters.NameFightsLost)
}

func TestArenaCarriesLifetimeCountersIntoNextFight(t *testing.T) {
	counterStore := &memCounterStore{byPlayer: map[int]counters.Snapshot{
		1: {counters.NameCardPlayed: {101: 7}},
	}}
	deckStore := &memDeckStore{byPlayer: map[int][]int{1: {101}}}
	arena := NewArena(arenaCatalog(), counterStore, deckStore, zap.NewNop())

	session, err := arena.StartFight(context.Background(), 1, "Iri", 60, 3, OpponentSetup{
		ID: 2, Name: "Ashwalker", MaxHealth: 40, MaxEnergy: 3,
	})
	require.NoError(t, err)

	cc := session.Fight.Store().Card(1, 101)
	assert.Equal(t, 7, cc.Played.Lifetime)
	assert.Equal(t, 0, cc.Played.Fight)
}
