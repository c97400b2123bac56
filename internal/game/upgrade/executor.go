package upgrade

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/rules"
)

// Executor performs the actual card replacement: the in-combat zones and the
// persistent deck record are both staged before anything commits, so a
// failure in either half leaves no partial upgrade behind. The persistent
// half commits first because it is the only fallible write; the staged zone
// swaps cannot fail afterwards.
type Executor struct {
	catalog *game.Catalog
	logger  *zap.Logger
}

// NewExecutor creates an upgrade executor.
func NewExecutor(catalog *game.Catalog, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{catalog: catalog, logger: logger}
}

// slot points at one in-combat instance to be swapped, preserving its zone
// position.
type slot struct {
	pile *[]*game.CardInstance
	idx  int
	zone game.Zone
}

// Execute replaces the queued card in both the in-combat zones and the
// persistent deck, then announces the upgrade. State commits synchronously;
// presentation layers consume the CardUpgraded event on their own time.
func (x *Executor) Execute(fight *game.Fight, q QueuedUpgrade) error {
	if fight == nil {
		return fmt.Errorf("execute upgrade: nil fight")
	}
	entity := fight.Entity(q.EntityID)
	if entity == nil {
		return fmt.Errorf("execute upgrade: unknown entity %d", q.EntityID)
	}
	upgraded := x.catalog.DefinitionByID(q.UpgradedDefID)
	if upgraded == nil {
		return fmt.Errorf("execute upgrade: unknown upgraded definition %d", q.UpgradedDefID)
	}

	// Stage the in-combat half.
	slots := x.stageZoneSwaps(fight, q)
	if len(slots) == 0 {
		return fmt.Errorf("execute upgrade: no in-combat instance of definition %d owned by entity %d", q.BaseDefID, q.EntityID)
	}

	// Stage the persistent half.
	if entity.Deck == nil {
		return fmt.Errorf("execute upgrade: entity %d has no deck record", q.EntityID)
	}
	inDeck := 0
	for _, id := range entity.Deck.GetAllCardIDs() {
		if id == q.BaseDefID {
			inDeck++
		}
	}
	if inDeck == 0 {
		return fmt.Errorf("execute upgrade: definition %d not in persistent deck of entity %d", q.BaseDefID, q.EntityID)
	}

	// Commit: persistent record first (the only fallible write), then the
	// staged zone swaps, which cannot fail.
	if q.AllCopies {
		if replaced := entity.Deck.ReplaceCard(q.BaseDefID, q.UpgradedDefID); replaced == 0 {
			return fmt.Errorf("execute upgrade: persistent replacement of definition %d failed", q.BaseDefID)
		}
	} else {
		if !entity.Deck.ReplaceSingleCard(q.BaseDefID, q.UpgradedDefID) {
			return fmt.Errorf("execute upgrade: persistent replacement of definition %d failed", q.BaseDefID)
		}
	}

	for _, s := range slots {
		fresh := game.NewCardInstance(q.UpgradedDefID, q.EntityID)
		fresh.Zone = s.zone
		(*s.pile)[s.idx] = fresh
	}

	fight.Store().MigrateCard(q.EntityID, q.BaseDefID, q.UpgradedDefID)

	x.logger.Info("card upgraded",
		zap.Int("entity", q.EntityID),
		zap.Int("base", q.BaseDefID),
		zap.Int("upgraded", q.UpgradedDefID),
		zap.Bool("all_copies", q.AllCopies),
	)

	evt := rules.NewCardEvent(rules.EventCardUpgraded, q.EntityID, q.BaseDefID, q.InstanceID)
	evt.UpgradeDefID = q.UpgradedDefID
	fight.Bus().Publish(evt)
	fight.Bus().Publish(rules.NewEvent(rules.EventDeckChanged, q.EntityID, q.EntityID))
	return nil
}

// stageZoneSwaps locates the in-combat instances to replace. With AllCopies
// every owned instance of the base definition is staged; otherwise the
// queued instance, falling back to the first matching instance if it has
// already moved.
func (x *Executor) stageZoneSwaps(fight *game.Fight, q QueuedUpgrade) []slot {
	z := fight.ZonesOf(q.EntityID)
	piles := []struct {
		pile *[]*game.CardInstance
		zone game.Zone
	}{
		{&z.Hand, game.ZoneHand},
		{&z.Deck, game.ZoneDeck},
		{&z.Discard, game.ZoneDiscard},
		{&z.InPlay, game.ZoneInPlay},
	}

	var slots []slot
	var fallback *slot
	for _, p := range piles {
		for i, inst := range *p.pile {
			if inst.DefID != q.BaseDefID {
				continue
			}
			s := slot{pile: p.pile, idx: i, zone: p.zone}
			if q.AllCopies {
				slots = append(slots, s)
				continue
			}
			if inst.ID == q.InstanceID {
				return []slot{s}
			}
			if fallback == nil {
				fb := s
				fallback = &fb
			}
		}
	}
	if q.AllCopies {
		return slots
	}
	if fallback != nil {
		return []slot{*fallback}
	}
	return nil
}
