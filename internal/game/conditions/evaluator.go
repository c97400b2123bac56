package conditions

import (
	"strings"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game/counters"
)

// Snapshot carries everything a condition may inspect: the card's and the
// owning entity's counter bundles plus the live state the game layer derives
// from zones and the entity itself. Building one is cheap; the evaluator
// never reaches back into game state.
type Snapshot struct {
	Card   *counters.CardCounters
	Entity *counters.EntityCounters

	// Zone-derived values for the card under evaluation.
	CopiesInHand    int
	CopiesInDeck    int
	CopiesInDiscard int
	DeckSize        int
	MaxDeckCost     int
	OnlyTypeInDeck  bool
	CardName        string
	DeckNames       []string

	// Live entity state.
	CurrentHealth int
	MaxHealth     int
	ComboCount    int
	Stance        int
	TurnNumber    int

	// Card flags.
	CardIsFinisher bool
}

// Evaluator maps a condition kind and a snapshot to an integer value.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates a condition evaluator.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// Evaluate returns the current value for the given condition kind. Unknown
// kinds evaluate to 0 with a logged warning; they are a configuration gap,
// not a runtime fault.
func (e *Evaluator) Evaluate(kind Kind, snap Snapshot) int {
	card := snap.Card
	if card == nil {
		card = counters.NewCardCounters()
	}
	entity := snap.Entity
	if entity == nil {
		entity = counters.NewEntityCounters()
	}

	switch kind {
	case KindTimesPlayedThisFight:
		return card.Played.Fight
	case KindTimesPlayedLifetime:
		return card.Played.Lifetime
	case KindTimesDrawnThisFight:
		return card.Drawn.Fight
	case KindTimesDrawnLifetime:
		return card.Drawn.Lifetime
	case KindHeldAtTurnEndThisFight:
		return card.HeldAtTurnEnd.Fight
	case KindHeldAtTurnEndLifetime:
		return card.HeldAtTurnEnd.Lifetime
	case KindDiscardedThisFight:
		return card.Discarded.Fight
	case KindDiscardedLifetime:
		return card.Discarded.Lifetime
	case KindFinalCardInHand:
		return card.FinalCardInHand.Fight
	case KindBackToBackPlays:
		return card.BackToBack.Fight
	case KindSoloPlays:
		return card.SoloPlays.Fight

	case KindCopiesInHand:
		return snap.CopiesInHand
	case KindCopiesInDeck:
		return snap.CopiesInDeck
	case KindCopiesInDiscard:
		return snap.CopiesInDiscard
	case KindDeckSizeBelow:
		return snap.DeckSize
	case KindAllCardsCostAtMost:
		return snap.MaxDeckCost
	case KindOnlyCardOfTypeInDeck:
		return boolValue(snap.OnlyTypeInDeck)
	case KindFamiliarNameInDeck:
		return FamiliarNameCount(snap.CardName, snap.DeckNames)

	case KindDamageDealtThisFight:
		return entity.DamageDealt.Fight
	case KindDamageTakenThisFight:
		return entity.DamageTaken.Fight
	case KindDamageInSingleTurn:
		return entity.BestRoundDamage
	case KindHealingGivenThisFight:
		return entity.HealingGiven.Fight
	case KindHealingReceivedThisFight:
		return entity.HealingReceived.Fight
	case KindComboCountReached:
		return snap.ComboCount
	case KindPlayedAsFinisher:
		// Only combo-building finisher cards can cash in the combo.
		if !snap.CardIsFinisher {
			return 0
		}
		return snap.ComboCount
	case KindZeroCostPlaysThisTurn:
		return entity.ZeroCostPlayedTurn
	case KindZeroCostPlaysThisFight:
		return entity.ZeroCostPlayed.Fight
	case KindCardsPlayedThisTurn:
		return entity.CardsPlayedTurn
	case KindCardsPlayedThisFight:
		return entity.CardsPlayed.Fight
	case KindLastPlayedCardType:
		return entity.LastPlayedCardType
	case KindStatusEffectsSurvived:
		return entity.StatusesSurvived.Fight
	case KindBattleTurnCount:
		return entity.BattleTurns.Fight

	case KindPlayedAtLowHealth:
		return boolValue(healthPercent(snap.CurrentHealth, snap.MaxHealth) <= lowHealthPercent)
	case KindPlayedAtHighHealth:
		return boolValue(healthPercent(snap.CurrentHealth, snap.MaxHealth) >= highHealthPercent)
	case KindPlayedAtHalfHealth:
		return boolValue(healthPercent(snap.CurrentHealth, snap.MaxHealth) <= halfHealthPercent)
	case KindPlayedInStance:
		return snap.Stance

	case KindFightsWonLifetime:
		return entity.FightsWon.Lifetime
	case KindFightsLostLifetime:
		return entity.FightsLost.Lifetime
	case KindBattleTurnsLifetime:
		return entity.BattleTurns.Lifetime
	case KindPerfectTurnsLifetime:
		return entity.PerfectTurns.Lifetime
	}

	e.logger.Warn("unmapped condition kind", zap.Int("kind", int(kind)))
	return 0
}

// Compare applies the comparator between the current and required values.
// Unknown comparators return false.
func (e *Evaluator) Compare(current, required int, cmp Comparator) bool {
	switch cmp {
	case CompareGTE:
		return current >= required
	case CompareEQ:
		return current == required
	case CompareLTE:
		return current <= required
	case CompareGT:
		return current > required
	case CompareLT:
		return current < required
	}
	e.logger.Warn("unknown comparator", zap.String("comparator", string(cmp)))
	return false
}

// healthPercent returns current health as a percentage of max, 0 when max is
// not positive.
func healthPercent(current, max int) int {
	if max <= 0 {
		return 0
	}
	return current * 100 / max
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

// FamiliarNameCount returns how many deck card names share a substring of at
// least three characters with the given card name. The card's own name is
// not counted. Matching is case-insensitive.
func FamiliarNameCount(cardName string, deckNames []string) int {
	name := strings.ToLower(strings.TrimSpace(cardName))
	if len(name) < familiarNameMinLength {
		return 0
	}
	count := 0
	for _, other := range deckNames {
		otherName := strings.ToLower(strings.TrimSpace(other))
		if otherName == "" || otherName == name {
			continue
		}
		if sharesSubstring(name, otherName, familiarNameMinLength) {
			count++
		}
	}
	return count
}

func sharesSubstring(a, b string, minLen int) bool {
	if len(a) < minLen || len(b) < minLen {
		return false
	}
	for i := 0; i+minLen <= len(a); i++ {
		if strings.Contains(b, a[i:i+minLen]) {
			return true
		}
	}
	return false
}
