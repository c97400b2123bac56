package game

import (
	"github.com/emberduel/ember-server-go/internal/game/conditions"
)

// ConditionSnapshot assembles everything the condition evaluator may inspect
// for one (entity, definition) pair: counter bundles, in-combat zone counts,
// the persistent deck composition and the entity's live state.
func (f *Fight) ConditionSnapshot(e *Entity, def *CardDefinition, catalog *Catalog) conditions.Snapshot {
	snap := conditions.Snapshot{
		Card:       f.store.Card(e.ID, def.ID),
		Entity:     f.store.Entity(e.ID),
		CardName:   def.Name,
		TurnNumber: f.Turn,

		CopiesInHand:    f.CopiesOf(e.ID, def.ID, ZoneHand),
		CopiesInDeck:    f.CopiesOf(e.ID, def.ID, ZoneDeck),
		CopiesInDiscard: f.CopiesOf(e.ID, def.ID, ZoneDiscard),

		CurrentHealth: e.Health,
		MaxHealth:     e.MaxHealth,
		ComboCount:    e.Combo,
		Stance:        int(e.Stance),

		CardIsFinisher: def.Finisher,
	}

	if e.Deck != nil {
		ids := e.Deck.GetAllCardIDs()
		snap.DeckSize = len(ids)
		typeCount := 0
		for _, id := range ids {
			other := catalog.DefinitionByID(id)
			if other == nil {
				continue
			}
			if other.Cost > snap.MaxDeckCost {
				snap.MaxDeckCost = other.Cost
			}
			if other.Type == def.Type {
				typeCount++
			}
			if other.ID != def.ID {
				snap.DeckNames = append(snap.DeckNames, other.Name)
			}
		}
		snap.OnlyTypeInDeck = typeCount == 1
	}

	return snap
}
