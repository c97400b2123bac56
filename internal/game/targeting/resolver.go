package targeting

import (
	"math/rand"

	"go.uber.org/zap"
)

// Specifier declares which entities an effect applies to.
type Specifier string

const (
	// SpecifierSelf targets the entity playing the card.
	SpecifierSelf Specifier = "SELF"
	// SpecifierAlly targets the source's bonded partner, if any.
	SpecifierAlly Specifier = "ALLY"
	// SpecifierOpponent targets the registered opponent of the source's side.
	SpecifierOpponent Specifier = "OPPONENT"
	// SpecifierRandom targets one of self, ally, opponent chosen uniformly.
	SpecifierRandom Specifier = "RANDOM"
	// SpecifierAllAllies targets every entity on the source's side.
	SpecifierAllAllies Specifier = "ALL_ALLIES"
	// SpecifierAllOpponents targets every entity on the opposing side.
	SpecifierAllOpponents Specifier = "ALL_OPPONENTS"
	// SpecifierEveryone targets every entity in the fight.
	SpecifierEveryone Specifier = "EVERYONE"
)

// Side marks which half of the fight an entity belongs to.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// Roster is the fight's participant graph as the resolver sees it. Entity
// identifiers are the flat integer keys used everywhere else.
type Roster interface {
	// EntityIDs lists all participants in a stable order.
	EntityIDs() []int
	// SideOf reports the side an entity fights on.
	SideOf(entityID int) (Side, bool)
	// AllyOf returns the bonded partner of an entity, if present.
	AllyOf(entityID int) (int, bool)
	// OpponentOf returns the registered opponent for an entity's side.
	OpponentOf(entityID int) (int, bool)
}

// Resolver maps a target specifier and a source entity to a concrete target
// list. Resolution for non-random specifiers is pure given the same roster.
type Resolver struct {
	logger *zap.Logger
	intn   func(n int) int
}

// NewResolver creates a resolver. A nil rng falls back to math/rand.
func NewResolver(logger *zap.Logger, intn func(n int) int) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if intn == nil {
		intn = rand.Intn
	}
	return &Resolver{logger: logger, intn: intn}
}

// Resolve returns the entity ids the specifier selects for the given source.
// A missing opponent or ally is not an error: the effect is simply skipped
// for that target group, so the resolver reports it and returns an empty
// list.
func (r *Resolver) Resolve(sourceID int, spec Specifier, roster Roster) []int {
	if roster == nil {
		r.logger.Warn("target resolution without a fight context",
			zap.Int("source", sourceID),
			zap.String("specifier", string(spec)),
		)
		return nil
	}

	switch spec {
	case SpecifierSelf:
		return []int{sourceID}

	case SpecifierAlly:
		if ally, ok := roster.AllyOf(sourceID); ok {
			return []int{ally}
		}
		return nil

	case SpecifierOpponent:
		if opponent, ok := roster.OpponentOf(sourceID); ok {
			return []int{opponent}
		}
		r.logger.Warn("no opponent registered for source",
			zap.Int("source", sourceID),
		)
		return nil

	case SpecifierRandom:
		pool := []int{sourceID}
		if ally, ok := roster.AllyOf(sourceID); ok {
			pool = append(pool, ally)
		}
		if opponent, ok := roster.OpponentOf(sourceID); ok {
			pool = append(pool, opponent)
		}
		return []int{pool[r.intn(len(pool))]}

	case SpecifierAllAllies:
		side, ok := roster.SideOf(sourceID)
		if !ok {
			return nil
		}
		return r.bySide(roster, side, true)

	case SpecifierAllOpponents:
		side, ok := roster.SideOf(sourceID)
		if !ok {
			return nil
		}
		return r.bySide(roster, side, false)

	case SpecifierEveryone:
		return roster.EntityIDs()
	}

	r.logger.Warn("unknown target specifier",
		zap.String("specifier", string(spec)),
		zap.Int("source", sourceID),
	)
	return nil
}

func (r *Resolver) bySide(roster Roster, side Side, same bool) []int {
	var out []int
	for _, id := range roster.EntityIDs() {
		entitySide, ok := roster.SideOf(id)
		if !ok {
			continue
		}
		if (entitySide == side) == same {
			out = append(out, id)
		}
	}
	return out
}
