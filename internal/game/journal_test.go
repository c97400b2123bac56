package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/rules"
)

func TestJournalRecordsBusEvents(t *testing.T) {
	fight, player, enemy := newBareFight()
	journal := NewJournal(fight.ID)
	journal.Attach(fight)

	fight.Begin()
	fight.DealDamage(player, enemy, 5)
	journal.Detach()
	fight.DealDamage(player, enemy, 5)

	// FightStarted plus the three damage events; nothing after Detach.
	assert.Equal(t, 4, journal.Size())

	journal.Start()
	first := journal.Next()
	require.NotNil(t, first)
	assert.Equal(t, rules.EventFightStarted, first.Type)

	second := journal.Next()
	require.NotNil(t, second)
	assert.Equal(t, rules.EventDamageDealt, second.Type)
	assert.Equal(t, 5, second.Amount)

	back := journal.Previous()
	require.NotNil(t, back)
	assert.Equal(t, second.ID, back.ID)
}

func TestJournalCursorBounds(t *testing.T) {
	journal := NewJournal("f1")
	journal.Record(rules.NewEvent(rules.EventTurnStarted, 1, 1))

	journal.Start()
	assert.Nil(t, journal.Previous())
	require.NotNil(t, journal.Next())
	assert.Nil(t, journal.Next())

	assert.Nil(t, journal.EntryAt(-1))
	assert.Nil(t, journal.EntryAt(1))
	require.NotNil(t, journal.EntryAt(0))
}

func TestJournalSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	journal := NewJournal("f1")
	journal.Record(rules.NewCardEvent(rules.EventCardPlayed, 1, 101, "inst-1"))
	journal.Record(rules.NewAmountEvent(rules.EventDamageDealt, 1, 2, 9))
	require.NoError(t, journal.SaveToFile(dir))

	loaded, err := LoadJournal(dir, "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", loaded.FightID)
	require.Equal(t, 2, loaded.Size())
	assert.Equal(t, 101, loaded.EntryAt(0).CardDefID)
	assert.Equal(t, 9, loaded.EntryAt(1).Amount)
}

func TestLoadJournalMissingFile(t *testing.T) {
	_, err := LoadJournal(t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestProgressChecksumDeterministic(t *testing.T) {
	snap := counters.Snapshot{
		"card_played":  {101: 3, 102: 1},
		"damage_dealt": {1: 40},
	}
	same := counters.Snapshot{
		"damage_dealt": {1: 40},
		"card_played":  {102: 1, 101: 3},
	}
	different := counters.Snapshot{
		"card_played":  {101: 4, 102: 1},
		"damage_dealt": {1: 40},
	}

	assert.Equal(t, ProgressChecksum(snap), ProgressChecksum(same))
	assert.NotEqual(t, ProgressChecksum(snap), ProgressChecksum(different))
	assert.NotEmpty(t, ProgressChecksum(counters.Snapshot{}))
}
