package game

import (
	"sync"

	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

// Status effect names the closed effect set can install.
const (
	StatusBreak      = "break"
	StatusWeak       = "weak"
	StatusBurn       = "burn"
	StatusSalve      = "salve"
	StatusThorns     = "thorns"
	StatusShield     = "shield"
	StatusStrength   = "strength"
	StatusCurse      = "curse"
	StatusStun       = "stun"
	StatusLimitBreak = "limit_break"
	StatusCriticalUp = "critical_up"
)

// StatusEffect is one named effect active on an entity.
type StatusEffect struct {
	Name     string
	Potency  int
	Duration int // turns remaining
	SourceID int
}

// StatusSink receives status effect applications. Entities built without one
// simply cannot carry statuses; the engine skips the effect and logs it.
type StatusSink interface {
	AddEffect(name string, potency, duration, sourceID int)
	RemoveEffect(name string) bool
	EffectPotency(name string) int
	ActiveEffects() []*StatusEffect
}

// StatusList is the default status sink.
type StatusList struct {
	effects []*StatusEffect
}

// NewStatusList creates an empty status list.
func NewStatusList() *StatusList {
	return &StatusList{}
}

// AddEffect installs or stacks a status effect. Re-applying an active status
// adds potency and takes the longer duration.
func (sl *StatusList) AddEffect(name string, potency, duration, sourceID int) {
	for _, se := range sl.effects {
		if se.Name == name {
			se.Potency += potency
			if duration > se.Duration {
				se.Duration = duration
			}
			return
		}
	}
	sl.effects = append(sl.effects, &StatusEffect{
		Name:     name,
		Potency:  potency,
		Duration: duration,
		SourceID: sourceID,
	})
}

// RemoveEffect removes a status by name.
func (sl *StatusList) RemoveEffect(name string) bool {
	for i, se := range sl.effects {
		if se.Name == name {
			sl.effects = append(sl.effects[:i], sl.effects[i+1:]...)
			return true
		}
	}
	return false
}

// EffectPotency returns the potency of an active status, 0 if absent.
func (sl *StatusList) EffectPotency(name string) int {
	for _, se := range sl.effects {
		if se.Name == name {
			return se.Potency
		}
	}
	return 0
}

// ActiveEffects returns the active statuses in application order.
func (sl *StatusList) ActiveEffects() []*StatusEffect {
	out := make([]*StatusEffect, len(sl.effects))
	copy(out, sl.effects)
	return out
}

// Tick advances all durations by one turn and returns the names of statuses
// that expired.
func (sl *StatusList) Tick() []string {
	var expired []string
	kept := sl.effects[:0]
	for _, se := range sl.effects {
		se.Duration--
		if se.Duration <= 0 {
			expired = append(expired, se.Name)
			continue
		}
		kept = append(kept, se)
	}
	sl.effects = kept
	return expired
}

// DeckRecord is an entity's long-term deck, the persistent half of an
// upgrade replacement.
type DeckRecord interface {
	// GetAllCardIDs lists the definition ids in the deck, duplicates
	// included.
	GetAllCardIDs() []int
	// ReplaceCard replaces every copy of oldID with newID and returns how
	// many were replaced.
	ReplaceCard(oldID, newID int) int
	// ReplaceSingleCard replaces exactly one copy of oldID with newID.
	ReplaceSingleCard(oldID, newID int) bool
}

// MemoryDeck is an in-memory DeckRecord.
type MemoryDeck struct {
	mu  sync.Mutex
	ids []int
}

// NewMemoryDeck creates a deck record holding the given definition ids.
func NewMemoryDeck(ids ...int) *MemoryDeck {
	d := &MemoryDeck{}
	d.ids = append(d.ids, ids...)
	return d
}

// GetAllCardIDs implements DeckRecord.
func (d *MemoryDeck) GetAllCardIDs() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, len(d.ids))
	copy(out, d.ids)
	return out
}

// ReplaceCard implements DeckRecord.
func (d *MemoryDeck) ReplaceCard(oldID, newID int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for i, id := range d.ids {
		if id == oldID {
			d.ids[i] = newID
			count++
		}
	}
	return count
}

// ReplaceSingleCard implements DeckRecord.
func (d *MemoryDeck) ReplaceSingleCard(oldID, newID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, id := range d.ids {
		if id == oldID {
			d.ids[i] = newID
			return true
		}
	}
	return false
}

// Add appends a definition id to the deck.
func (d *MemoryDeck) Add(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

// Entity is a combat participant: the player or a companion on either side.
// Mutation happens only on the authoritative game loop.
type Entity struct {
	ID   int
	Name string
	Side targeting.Side

	MaxHealth int
	Health    int
	MaxEnergy int
	Energy    int

	Combo    int
	Stance   Stance
	Strength int

	Stunned    bool
	LimitBreak bool

	// Statuses may be nil for entities that cannot carry status effects;
	// the engine treats that as a missing collaborator and skips the
	// effect.
	Statuses StatusSink

	// Deck is the persistent deck record, nil for entities without one
	// (most opponents).
	Deck DeckRecord
}

// NewEntity creates an entity with full health and energy and a default
// status sink.
func NewEntity(id int, name string, side targeting.Side, maxHealth, maxEnergy int) *Entity {
	return &Entity{
		ID:        id,
		Name:      name,
		Side:      side,
		MaxHealth: maxHealth,
		Health:    maxHealth,
		MaxEnergy: maxEnergy,
		Energy:    maxEnergy,
		Statuses:  NewStatusList(),
	}
}

// TakeDamage applies damage after shield absorption and returns the health
// actually lost. The detailed damage formula lives outside this core; the
// engine hands it a concrete amount.
func (e *Entity) TakeDamage(amount, sourceID int) int {
	if amount <= 0 || e.Health <= 0 {
		return 0
	}
	if e.Statuses != nil {
		if shield := e.Statuses.EffectPotency(StatusShield); shield > 0 {
			absorbed := min(shield, amount)
			amount -= absorbed
			if remaining := shield - absorbed; remaining > 0 {
				e.Statuses.RemoveEffect(StatusShield)
				e.Statuses.AddEffect(StatusShield, remaining, 1, sourceID)
			} else {
				e.Statuses.RemoveEffect(StatusShield)
			}
		}
	}
	if amount <= 0 {
		return 0
	}
	lost := min(amount, e.Health)
	e.Health -= lost
	return lost
}

// Heal restores health up to the maximum and returns the amount actually
// restored.
func (e *Entity) Heal(amount, sourceID int) int {
	if amount <= 0 || e.Health <= 0 {
		return 0
	}
	restored := min(amount, e.MaxHealth-e.Health)
	e.Health += restored
	return restored
}

// Alive reports whether the entity is still in the fight.
func (e *Entity) Alive() bool {
	return e.Health > 0
}

// HealthPercent returns current health as a percentage of max.
func (e *Entity) HealthPercent() int {
	if e.MaxHealth <= 0 {
		return 0
	}
	return e.Health * 100 / e.MaxHealth
}
