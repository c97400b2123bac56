package upgrade

import (
	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/rules"
)

// EventConditions maps each gameplay event to the condition kinds it can
// affect. Evaluation after an event only touches that subset, so the cost per
// event stays proportional to the cards whose conditions could actually have
// changed instead of a full events x cards x conditions scan. A test checks
// that every known kind is reachable from at least one event.
var EventConditions = map[rules.EventType][]conditions.Kind{
	rules.EventCardPlayed: {
		conditions.KindTimesPlayedThisFight,
		conditions.KindTimesPlayedLifetime,
		conditions.KindBackToBackPlays,
		conditions.KindSoloPlays,
		conditions.KindFinalCardInHand,
		conditions.KindCardsPlayedThisTurn,
		conditions.KindCardsPlayedThisFight,
		conditions.KindZeroCostPlaysThisTurn,
		conditions.KindZeroCostPlaysThisFight,
		conditions.KindLastPlayedCardType,
		conditions.KindComboCountReached,
		conditions.KindPlayedAsFinisher,
		conditions.KindPlayedAtLowHealth,
		conditions.KindPlayedAtHighHealth,
		conditions.KindPlayedAtHalfHealth,
		conditions.KindPlayedInStance,
		conditions.KindCopiesInHand,
		conditions.KindCopiesInDiscard,
	},
	rules.EventCardDrawn: {
		conditions.KindTimesDrawnThisFight,
		conditions.KindTimesDrawnLifetime,
		conditions.KindCopiesInHand,
		conditions.KindCopiesInDeck,
	},
	rules.EventCardDiscarded: {
		conditions.KindDiscardedThisFight,
		conditions.KindDiscardedLifetime,
		conditions.KindCopiesInHand,
		conditions.KindCopiesInDiscard,
	},
	rules.EventCardHeldAtTurnEnd: {
		conditions.KindHeldAtTurnEndThisFight,
		conditions.KindHeldAtTurnEndLifetime,
	},
	rules.EventDamageDealt: {
		conditions.KindDamageDealtThisFight,
		conditions.KindDamageInSingleTurn,
	},
	rules.EventDamageTaken: {
		conditions.KindDamageTakenThisFight,
	},
	rules.EventHealingGiven: {
		conditions.KindHealingGivenThisFight,
	},
	rules.EventHealingReceived: {
		conditions.KindHealingReceivedThisFight,
	},
	rules.EventComboChanged: {
		conditions.KindComboCountReached,
		conditions.KindPlayedAsFinisher,
	},
	rules.EventStanceChanged: {
		conditions.KindPlayedInStance,
	},
	rules.EventStatusSurvived: {
		conditions.KindStatusEffectsSurvived,
	},
	rules.EventTurnStarted: {
		conditions.KindBattleTurnCount,
		conditions.KindBattleTurnsLifetime,
	},
	rules.EventTurnEnded: {
		conditions.KindPerfectTurnsLifetime,
	},
	rules.EventFightEnded: {
		conditions.KindFightsWonLifetime,
		conditions.KindFightsLostLifetime,
	},
	rules.EventDeckChanged: {
		conditions.KindDeckSizeBelow,
		conditions.KindAllCardsCostAtMost,
		conditions.KindOnlyCardOfTypeInDeck,
		conditions.KindFamiliarNameInDeck,
		conditions.KindCopiesInDeck,
	},
}
