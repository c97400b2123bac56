package counters

import (
	"sync"
)

// Lifetime counter names used on the wire and in persistence. The replicated
// surface is a flat map of counter name -> (int key -> int value); card
// counters are keyed by definition id, the owner's entity counters by key 0.
const (
	NameCardPlayed     = "card_played"
	NameCardDrawn      = "card_drawn"
	NameCardHeld       = "card_held_at_turn_end"
	NameCardDiscarded  = "card_discarded"
	NameCardFinal      = "card_final_in_hand"
	NameCardBackToBack = "card_back_to_back"
	NameCardSolo       = "card_solo_play"

	NameDamageDealt      = "damage_dealt"
	NameDamageTaken      = "damage_taken"
	NameHealingGiven     = "healing_given"
	NameHealingReceived  = "healing_received"
	NameZeroCostPlayed   = "zero_cost_played"
	NameCardsPlayed      = "cards_played"
	NameStatusesSurvived = "statuses_survived"
	NameBattleTurns      = "battle_turns"
	NamePerfectTurns     = "perfect_turns"
	NameFightsWon        = "fights_won"
	NameFightsLost       = "fights_lost"
)

// Snapshot is the replicated/persisted lifetime counter surface.
type Snapshot map[string]map[int]int

// Store holds all per-card and per-entity counters for one session. Only the
// authoritative game loop writes; network peers receive read-only snapshots.
type Store struct {
	mu       sync.RWMutex
	cards    map[int]map[int]*CardCounters // owner entity id -> definition id
	entities map[int]*EntityCounters
}

// NewStore creates an empty counter store.
func NewStore() *Store {
	return &Store{
		cards:    make(map[int]map[int]*CardCounters),
		entities: make(map[int]*EntityCounters),
	}
}

// Card returns the counter bundle for the given owner and card definition,
// creating it if needed.
func (s *Store) Card(ownerID, defID int) *CardCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDef, ok := s.cards[ownerID]
	if !ok {
		byDef = make(map[int]*CardCounters)
		s.cards[ownerID] = byDef
	}
	cc, ok := byDef[defID]
	if !ok {
		cc = NewCardCounters()
		byDef[defID] = cc
	}
	return cc
}

// Entity returns the counter bundle for the given entity, creating it if
// needed.
func (s *Store) Entity(entityID int) *EntityCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	ec, ok := s.entities[entityID]
	if !ok {
		ec = NewEntityCounters()
		s.entities[entityID] = ec
	}
	return ec
}

// MigrateCard moves a card counter bundle to a new definition id, used when
// an upgrade replaces a definition. Existing counters for the new id are
// kept if already present.
func (s *Store) MigrateCard(ownerID, oldDefID, newDefID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDef, ok := s.cards[ownerID]
	if !ok {
		return
	}
	cc, ok := byDef[oldDefID]
	if !ok {
		return
	}
	delete(byDef, oldDefID)
	if _, exists := byDef[newDefID]; !exists {
		byDef[newDefID] = cc
	}
}

// ResetFight zeroes every fight-scoped counter in the store. Lifetime values
// are untouched.
func (s *Store) ResetFight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, byDef := range s.cards {
		for _, cc := range byDef {
			cc.ResetFight()
		}
	}
	for _, ec := range s.entities {
		ec.ResetFight()
	}
}

// LifetimeSnapshot exports one owner's lifetime counters in the wire format.
// Card counters are keyed by definition id; the owner's entity counters are
// keyed at 0, so a persisted record never carries another participant's
// progress and never binds to a session entity id.
func (s *Store) LifetimeSnapshot(ownerID int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{}
	add := func(name string, key, value int) {
		if value == 0 {
			return
		}
		byKey, ok := snap[name]
		if !ok {
			byKey = make(map[int]int)
			snap[name] = byKey
		}
		byKey[key] += value
	}

	for defID, cc := range s.cards[ownerID] {
		add(NameCardPlayed, defID, cc.Played.Lifetime)
		add(NameCardDrawn, defID, cc.Drawn.Lifetime)
		add(NameCardHeld, defID, cc.HeldAtTurnEnd.Lifetime)
		add(NameCardDiscarded, defID, cc.Discarded.Lifetime)
		add(NameCardFinal, defID, cc.FinalCardInHand.Lifetime)
		add(NameCardBackToBack, defID, cc.BackToBack.Lifetime)
		add(NameCardSolo, defID, cc.SoloPlays.Lifetime)
	}
	if ec, ok := s.entities[ownerID]; ok {
		add(NameDamageDealt, 0, ec.DamageDealt.Lifetime)
		add(NameDamageTaken, 0, ec.DamageTaken.Lifetime)
		add(NameHealingGiven, 0, ec.HealingGiven.Lifetime)
		add(NameHealingReceived, 0, ec.HealingReceived.Lifetime)
		add(NameZeroCostPlayed, 0, ec.ZeroCostPlayed.Lifetime)
		add(NameCardsPlayed, 0, ec.CardsPlayed.Lifetime)
		add(NameStatusesSurvived, 0, ec.StatusesSurvived.Lifetime)
		add(NameBattleTurns, 0, ec.BattleTurns.Lifetime)
		add(NamePerfectTurns, 0, ec.PerfectTurns.Lifetime)
		add(NameFightsWon, 0, ec.FightsWon.Lifetime)
		add(NameFightsLost, 0, ec.FightsLost.Lifetime)
	}
	return snap
}

// ImportLifetime loads persisted lifetime counters into the store. Card and
// entity counters are both attributed to the given owner, whatever keys the
// record carries. Fight-scoped values are left at zero.
func (s *Store) ImportLifetime(ownerID int, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cardField := func(name string) func(*CardCounters) *Scoped {
		switch name {
		case NameCardPlayed:
			return func(cc *CardCounters) *Scoped { return &cc.Played }
		case NameCardDrawn:
			return func(cc *CardCounters) *Scoped { return &cc.Drawn }
		case NameCardHeld:
			return func(cc *CardCounters) *Scoped { return &cc.HeldAtTurnEnd }
		case NameCardDiscarded:
			return func(cc *CardCounters) *Scoped { return &cc.Discarded }
		case NameCardFinal:
			return func(cc *CardCounters) *Scoped { return &cc.FinalCardInHand }
		case NameCardBackToBack:
			return func(cc *CardCounters) *Scoped { return &cc.BackToBack }
		case NameCardSolo:
			return func(cc *CardCounters) *Scoped { return &cc.SoloPlays }
		}
		return nil
	}
	entityField := func(name string) func(*EntityCounters) *Scoped {
		switch name {
		case NameDamageDealt:
			return func(ec *EntityCounters) *Scoped { return &ec.DamageDealt }
		case NameDamageTaken:
			return func(ec *EntityCounters) *Scoped { return &ec.DamageTaken }
		case NameHealingGiven:
			return func(ec *EntityCounters) *Scoped { return &ec.HealingGiven }
		case NameHealingReceived:
			return func(ec *EntityCounters) *Scoped { return &ec.HealingReceived }
		case NameZeroCostPlayed:
			return func(ec *EntityCounters) *Scoped { return &ec.ZeroCostPlayed }
		case NameCardsPlayed:
			return func(ec *EntityCounters) *Scoped { return &ec.CardsPlayed }
		case NameStatusesSurvived:
			return func(ec *EntityCounters) *Scoped { return &ec.StatusesSurvived }
		case NameBattleTurns:
			return func(ec *EntityCounters) *Scoped { return &ec.BattleTurns }
		case NamePerfectTurns:
			return func(ec *EntityCounters) *Scoped { return &ec.PerfectTurns }
		case NameFightsWon:
			return func(ec *EntityCounters) *Scoped { return &ec.FightsWon }
		case NameFightsLost:
			return func(ec *EntityCounters) *Scoped { return &ec.FightsLost }
		}
		return nil
	}

	for name, byKey := range snap {
		if get := cardField(name); get != nil {
			byDef, ok := s.cards[ownerID]
			if !ok {
				byDef = make(map[int]*CardCounters)
				s.cards[ownerID] = byDef
			}
			for defID, value := range byKey {
				cc, ok := byDef[defID]
				if !ok {
					cc = NewCardCounters()
					byDef[defID] = cc
				}
				get(cc).Lifetime = value
			}
			continue
		}
		if get := entityField(name); get != nil {
			ec, ok := s.entities[ownerID]
			if !ok {
				ec = NewEntityCounters()
				s.entities[ownerID] = ec
			}
			total := 0
			for _, value := range byKey {
				total += value
			}
			get(ec).Lifetime = total
		}
	}
}
