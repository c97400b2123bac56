package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedAddIncrementsBothScopes(t *testing.T) {
	var s Scoped
	s.Add(3)
	s.Add(2)

	assert.Equal(t, 5, s.Fight)
	assert.Equal(t, 5, s.Lifetime)

	s.ResetFight()
	assert.Equal(t, 0, s.Fight)
	assert.Equal(t, 5, s.Lifetime)

	// Zero and negative amounts are ignored.
	s.Add(0)
	s.Add(-4)
	assert.Equal(t, 0, s.Fight)
	assert.Equal(t, 5, s.Lifetime)
}

func TestStoreCardSharedPerDefinition(t *testing.T) {
	store := NewStore()

	// Two copies of the same definition owned by one entity share a bundle.
	a := store.Card(1, 101)
	b := store.Card(1, 101)
	require.Same(t, a, b)

	// A different owner gets its own bundle.
	c := store.Card(2, 101)
	require.NotSame(t, a, c)
}

func TestStoreResetFightKeepsLifetime(t *testing.T) {
	store := NewStore()
	cc := store.Card(1, 101)
	cc.Played.Add(4)
	ec := store.Entity(1)
	ec.RecordDamageDealt(25)
	ec.BattleTurns.Add(3)

	store.ResetFight()

	assert.Equal(t, 0, cc.Played.Fight)
	assert.Equal(t, 4, cc.Played.Lifetime)
	assert.Equal(t, 0, ec.DamageDealt.Fight)
	assert.Equal(t, 25, ec.DamageDealt.Lifetime)
	assert.Equal(t, 0, ec.BestRoundDamage)
}

func TestStoreMigrateCardMovesCounters(t *testing.T) {
	store := NewStore()
	cc := store.Card(1, 101)
	cc.Played.Add(3)
	cc.Drawn.Add(5)

	store.MigrateCard(1, 101, 111)

	migrated := store.Card(1, 111)
	assert.Equal(t, 3, migrated.Played.Fight)
	assert.Equal(t, 5, migrated.Drawn.Lifetime)

	// The old key starts fresh.
	assert.Equal(t, 0, store.Card(1, 101).Played.Fight)
}

func TestLifetimeSnapshotScopedToOwner(t *testing.T) {
	store := NewStore()
	store.Card(1, 101).Played.Add(2)
	store.Card(2, 101).Played.Add(3)
	store.Entity(1).RecordDamageDealt(10)
	store.Entity(2).FightsLost.Add(1)

	snap := store.LifetimeSnapshot(1)

	// Only owner 1's counters surface; the other participant's plays and
	// losses never leak into the record.
	assert.Equal(t, 2, snap[NameCardPlayed][101])
	assert.Equal(t, 10, snap[NameDamageDealt][0])
	_, ok := snap[NameFightsLost]
	assert.False(t, ok)

	// Zero-valued counters are omitted from the wire format.
	_, ok = snap[NameCardDiscarded]
	assert.False(t, ok)
}

func TestImportLifetimeRoundTrip(t *testing.T) {
	store := NewStore()
	store.Card(1, 101).Played.Add(7)
	store.Entity(1).FightsWon.Add(2)
	exported := store.LifetimeSnapshot(1)

	// The record is owner-relative, so it restores onto any entity id.
	restored := NewStore()
	restored.ImportLifetime(5, exported)

	cc := restored.Card(5, 101)
	assert.Equal(t, 7, cc.Played.Lifetime)
	// Fight scope starts clean after an import.
	assert.Equal(t, 0, cc.Played.Fight)

	ec := restored.Entity(5)
	assert.Equal(t, 2, ec.FightsWon.Lifetime)
	assert.Equal(t, 0, ec.FightsWon.Fight)

	assert.Equal(t, exported, restored.LifetimeSnapshot(5))
}

func TestSurviveStatusCountsDistinctNames(t *testing.T) {
	ec := NewEntityCounters()
	ec.SurviveStatus("burn")
	ec.SurviveStatus("burn")
	ec.SurviveStatus("weak")
	ec.SurviveStatus("")

	assert.Equal(t, 2, ec.StatusesSurvived.Fight)
}

func TestRecordDamageDealtTracksBestRound(t *testing.T) {
	ec := NewEntityCounters()
	ec.RecordDamageDealt(8)
	ec.RecordDamageDealt(4)
	ec.EndRound()
	ec.RecordDamageDealt(5)
	ec.EndRound()

	assert.Equal(t, 12, ec.BestRoundDamage)
	assert.Equal(t, 5, ec.DamageDealtLastRound)
	assert.Equal(t, 17, ec.DamageDealt.Fight)
}
