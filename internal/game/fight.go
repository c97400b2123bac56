package game

import (
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/rules"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

// Zones holds an entity's in-combat card piles.
type Zones struct {
	Deck    []*CardInstance
	Hand    []*CardInstance
	Discard []*CardInstance
	InPlay  []*CardInstance
}

// All returns every instance across the four piles.
func (z *Zones) All() []*CardInstance {
	out := make([]*CardInstance, 0, len(z.Deck)+len(z.Hand)+len(z.Discard)+len(z.InPlay))
	out = append(out, z.Deck...)
	out = append(out, z.Hand...)
	out = append(out, z.Discard...)
	out = append(out, z.InPlay...)
	return out
}

// Fight is one combat encounter: the participant graph, the in-combat card
// zones, and the turn bookkeeping. All mutation happens on the authoritative
// game loop.
type Fight struct {
	ID     string
	Turn   int
	logger *zap.Logger
	bus    *rules.EventBus
	store  *counters.Store
	intn   func(n int) int

	entities  map[int]*Entity
	order     []int
	allies    map[int]int
	opponents map[targeting.Side]int
	zones     map[int]*Zones

	ended     bool
	resolving bool
}

// NewFight creates an empty fight. A nil rng falls back to math/rand.
func NewFight(logger *zap.Logger, bus *rules.EventBus, store *counters.Store, intn func(n int) int) *Fight {
	if logger == nil {
		logger = zap.NewNop()
	}
	if intn == nil {
		intn = rand.Intn
	}
	return &Fight{
		ID:        uuid.NewString(),
		logger:    logger,
		bus:       bus,
		store:     store,
		intn:      intn,
		entities:  make(map[int]*Entity),
		allies:    make(map[int]int),
		opponents: make(map[targeting.Side]int),
		zones:     make(map[int]*Zones),
	}
}

// Bus returns the fight's event bus.
func (f *Fight) Bus() *rules.EventBus { return f.bus }

// Store returns the fight's counter store.
func (f *Fight) Store() *counters.Store { return f.store }

// Resolving reports whether a card resolution is in flight. Listeners that
// replace card instances must hold off until the play completes, or the
// resolving card's zone bookkeeping would act on a stale instance.
func (f *Fight) Resolving() bool { return f.resolving }

// AddEntity registers a participant.
func (f *Fight) AddEntity(e *Entity) {
	if e == nil {
		return
	}
	if _, ok := f.entities[e.ID]; !ok {
		f.order = append(f.order, e.ID)
	}
	f.entities[e.ID] = e
	if _, ok := f.zones[e.ID]; !ok {
		f.zones[e.ID] = &Zones{}
	}
}

// Entity returns a participant by id, nil if absent.
func (f *Fight) Entity(id int) *Entity {
	return f.entities[id]
}

// Bond marks two entities as allies of each other.
func (f *Fight) Bond(a, b int) {
	f.allies[a] = b
	f.allies[b] = a
}

// RegisterOpponent declares which entity a side fights against.
func (f *Fight) RegisterOpponent(side targeting.Side, entityID int) {
	f.opponents[side] = entityID
}

// EntityIDs implements targeting.Roster.
func (f *Fight) EntityIDs() []int {
	out := make([]int, len(f.order))
	copy(out, f.order)
	return out
}

// SideOf implements targeting.Roster.
func (f *Fight) SideOf(entityID int) (targeting.Side, bool) {
	e, ok := f.entities[entityID]
	if !ok {
		return 0, false
	}
	return e.Side, true
}

// AllyOf implements targeting.Roster.
func (f *Fight) AllyOf(entityID int) (int, bool) {
	ally, ok := f.allies[entityID]
	if !ok {
		return 0, false
	}
	if _, present := f.entities[ally]; !present {
		return 0, false
	}
	return ally, true
}

// OpponentOf implements targeting.Roster.
func (f *Fight) OpponentOf(entityID int) (int, bool) {
	side, ok := f.SideOf(entityID)
	if !ok {
		return 0, false
	}
	opponent, ok := f.opponents[side]
	if !ok {
		return 0, false
	}
	if _, present := f.entities[opponent]; !present {
		return 0, false
	}
	return opponent, true
}

// ZonesOf returns an entity's in-combat piles, creating them if needed.
func (f *Fight) ZonesOf(entityID int) *Zones {
	z, ok := f.zones[entityID]
	if !ok {
		z = &Zones{}
		f.zones[entityID] = z
	}
	return z
}

// Begin resets all fight-scoped counters and announces the fight. Lifetime
// counters carry over from previous encounters.
func (f *Fight) Begin() {
	f.store.ResetFight()
	f.Turn = 0
	f.publish(rules.NewEvent(rules.EventFightStarted, 0, 0))
}

// AddCardToDeck instantiates a definition into an entity's in-combat deck.
func (f *Fight) AddCardToDeck(entityID, defID int) *CardInstance {
	inst := NewCardInstance(defID, entityID)
	z := f.ZonesOf(entityID)
	z.Deck = append(z.Deck, inst)
	return inst
}

// DrawOneCard moves the top card of the deck into the hand. Returns nil when
// the deck is empty.
func (f *Fight) DrawOneCard(entityID int) *CardInstance {
	z := f.ZonesOf(entityID)
	if len(z.Deck) == 0 {
		return nil
	}
	inst := z.Deck[0]
	z.Deck = z.Deck[1:]
	inst.Zone = ZoneHand
	z.Hand = append(z.Hand, inst)

	f.store.Card(entityID, inst.DefID).Drawn.Add(1)
	f.publish(rules.NewCardEvent(rules.EventCardDrawn, entityID, inst.DefID, inst.ID))
	return inst
}

// DiscardCard moves a hand card to the discard pile. Manual discards count
// toward the card's discarded counter.
func (f *Fight) DiscardCard(entityID int, inst *CardInstance, manual bool) bool {
	z := f.ZonesOf(entityID)
	for i, c := range z.Hand {
		if c.ID == inst.ID {
			z.Hand = append(z.Hand[:i], z.Hand[i+1:]...)
			inst.Zone = ZoneDiscard
			z.Discard = append(z.Discard, inst)
			if manual {
				f.store.Card(entityID, inst.DefID).Discarded.Add(1)
			}
			evt := rules.NewCardEvent(rules.EventCardDiscarded, entityID, inst.DefID, inst.ID)
			evt.Flag = manual
			f.publish(evt)
			return true
		}
	}
	return false
}

// DiscardRandom discards up to count random hand cards.
func (f *Fight) DiscardRandom(entityID, count int) int {
	discarded := 0
	for i := 0; i < count; i++ {
		z := f.ZonesOf(entityID)
		if len(z.Hand) == 0 {
			break
		}
		inst := z.Hand[f.intn(len(z.Hand))]
		if f.DiscardCard(entityID, inst, false) {
			discarded++
		}
	}
	return discarded
}

// CardsInHand returns an entity's hand.
func (f *Fight) CardsInHand(entityID int) []*CardInstance {
	return f.ZonesOf(entityID).Hand
}

// CardsInDiscard returns an entity's discard pile.
func (f *Fight) CardsInDiscard(entityID int) []*CardInstance {
	return f.ZonesOf(entityID).Discard
}

// CopiesOf counts instances of a definition in one of an entity's piles.
func (f *Fight) CopiesOf(entityID, defID int, zone Zone) int {
	z := f.ZonesOf(entityID)
	var pile []*CardInstance
	switch zone {
	case ZoneDeck:
		pile = z.Deck
	case ZoneHand:
		pile = z.Hand
	case ZoneDiscard:
		pile = z.Discard
	case ZoneInPlay:
		pile = z.InPlay
	}
	count := 0
	for _, c := range pile {
		if c.DefID == defID {
			count++
		}
	}
	return count
}

// DealDamage applies damage from source to target, records both sides'
// counters and publishes the damage events.
func (f *Fight) DealDamage(source, target *Entity, amount int) int {
	if source == nil || target == nil || amount <= 0 {
		return 0
	}
	lost := target.TakeDamage(amount, source.ID)
	f.store.Entity(source.ID).RecordDamageDealt(lost)
	tc := f.store.Entity(target.ID)
	tc.DamageTaken.Add(lost)
	tc.DamageTakenThisTurn += lost

	f.publish(rules.NewAmountEvent(rules.EventDamageDealt, source.ID, target.ID, lost))
	f.publish(rules.NewAmountEvent(rules.EventDamageTaken, source.ID, target.ID, lost))
	f.publish(rules.NewAmountEvent(rules.EventHealthChanged, source.ID, target.ID, -lost))
	return lost
}

// Heal restores health on the target, records counters and publishes the
// healing events.
func (f *Fight) Heal(source, target *Entity, amount int) int {
	if source == nil || target == nil || amount <= 0 {
		return 0
	}
	restored := target.Heal(amount, source.ID)
	f.store.Entity(source.ID).HealingGiven.Add(restored)
	f.store.Entity(target.ID).HealingReceived.Add(restored)

	f.publish(rules.NewAmountEvent(rules.EventHealingGiven, source.ID, target.ID, restored))
	f.publish(rules.NewAmountEvent(rules.EventHealingReceived, source.ID, target.ID, restored))
	f.publish(rules.NewAmountEvent(rules.EventHealthChanged, source.ID, target.ID, restored))
	return restored
}

// StartTurn opens an entity's turn: per-turn windows reset, battle turn
// counters advance.
func (f *Fight) StartTurn(entityID int) {
	f.Turn++
	ec := f.store.Entity(entityID)
	ec.StartTurn()
	ec.BattleTurns.Add(1)
	f.publish(rules.NewEvent(rules.EventTurnStarted, entityID, entityID))
}

// EndTurn closes an entity's turn: held-at-turn-end sweep over the hand,
// status expiry, perfect-turn detection and the round damage window.
func (f *Fight) EndTurn(entityID int) {
	e := f.entities[entityID]
	z := f.ZonesOf(entityID)

	for _, inst := range z.Hand {
		f.store.Card(entityID, inst.DefID).HeldAtTurnEnd.Add(1)
		f.publish(rules.NewCardEvent(rules.EventCardHeldAtTurnEnd, entityID, inst.DefID, inst.ID))
	}

	if e != nil && e.Statuses != nil {
		if sl, ok := e.Statuses.(*StatusList); ok {
			for _, name := range sl.Tick() {
				if e.Alive() {
					f.store.Entity(entityID).SurviveStatus(name)
					evt := rules.NewEvent(rules.EventStatusSurvived, entityID, entityID)
					evt.Data = name
					f.publish(evt)
				}
			}
		}
	}

	ec := f.store.Entity(entityID)
	if e != nil && e.Alive() && ec.DamageTakenThisTurn == 0 {
		ec.PerfectTurns.Add(1)
	}
	ec.EndRound()

	f.publish(rules.NewEvent(rules.EventTurnEnded, entityID, entityID))
}

// End closes the fight: win/loss lifetime counters accumulate and the fight
// end is announced. Fight-scoped counters stay readable until the next
// fight's Begin resets them.
func (f *Fight) End(winner targeting.Side) {
	if f.ended {
		return
	}
	f.ended = true
	for _, id := range f.order {
		e := f.entities[id]
		ec := f.store.Entity(id)
		if e.Side == winner {
			ec.FightsWon.Add(1)
		} else {
			ec.FightsLost.Add(1)
		}
	}
	f.publish(rules.NewEvent(rules.EventFightEnded, 0, int(winner)))
}

func (f *Fight) publish(evt rules.Event) {
	if f.bus != nil {
		f.bus.Publish(evt)
	}
}
