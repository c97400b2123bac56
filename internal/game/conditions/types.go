package conditions

// Kind identifies an upgrade/effect condition over the closed set the content
// pipeline can author. KindUnknown is the explicit catch-all for ids newer
// than this build; it always evaluates to 0.
type Kind int

const (
	KindUnknown Kind = iota

	// Per-card counters
	KindTimesPlayedThisFight
	KindTimesPlayedLifetime
	KindTimesDrawnThisFight
	KindTimesDrawnLifetime
	KindHeldAtTurnEndThisFight
	KindHeldAtTurnEndLifetime
	KindDiscardedThisFight
	KindDiscardedLifetime
	KindFinalCardInHand
	KindBackToBackPlays
	KindSoloPlays

	// Zone queries
	KindCopiesInHand
	KindCopiesInDeck
	KindCopiesInDiscard
	KindDeckSizeBelow
	KindAllCardsCostAtMost
	KindOnlyCardOfTypeInDeck
	KindFamiliarNameInDeck

	// Entity combat counters
	KindDamageDealtThisFight
	KindDamageTakenThisFight
	KindDamageInSingleTurn
	KindHealingGivenThisFight
	KindHealingReceivedThisFight
	KindComboCountReached
	KindPlayedAsFinisher
	KindZeroCostPlaysThisTurn
	KindZeroCostPlaysThisFight
	KindCardsPlayedThisTurn
	KindCardsPlayedThisFight
	KindLastPlayedCardType
	KindStatusEffectsSurvived
	KindBattleTurnCount

	// Entity live state at play time
	KindPlayedAtLowHealth
	KindPlayedAtHighHealth
	KindPlayedAtHalfHealth
	KindPlayedInStance

	// Lifetime entity counters
	KindFightsWonLifetime
	KindFightsLostLifetime
	KindBattleTurnsLifetime
	KindPerfectTurnsLifetime
)

var kindNames = map[Kind]string{
	KindUnknown:                  "unknown",
	KindTimesPlayedThisFight:     "times_played_this_fight",
	KindTimesPlayedLifetime:      "times_played_lifetime",
	KindTimesDrawnThisFight:      "times_drawn_this_fight",
	KindTimesDrawnLifetime:       "times_drawn_lifetime",
	KindHeldAtTurnEndThisFight:   "held_at_turn_end_this_fight",
	KindHeldAtTurnEndLifetime:    "held_at_turn_end_lifetime",
	KindDiscardedThisFight:       "discarded_this_fight",
	KindDiscardedLifetime:        "discarded_lifetime",
	KindFinalCardInHand:          "final_card_in_hand",
	KindBackToBackPlays:          "back_to_back_plays",
	KindSoloPlays:                "solo_plays",
	KindCopiesInHand:             "copies_in_hand",
	KindCopiesInDeck:             "copies_in_deck",
	KindCopiesInDiscard:          "copies_in_discard",
	KindDeckSizeBelow:            "deck_size_below",
	KindAllCardsCostAtMost:       "all_cards_cost_at_most",
	KindOnlyCardOfTypeInDeck:     "only_card_of_type_in_deck",
	KindFamiliarNameInDeck:       "familiar_name_in_deck",
	KindDamageDealtThisFight:     "damage_dealt_this_fight",
	KindDamageTakenThisFight:     "damage_taken_this_fight",
	KindDamageInSingleTurn:       "damage_in_single_turn",
	KindHealingGivenThisFight:    "healing_given_this_fight",
	KindHealingReceivedThisFight: "healing_received_this_fight",
	KindComboCountReached:        "combo_count_reached",
	KindPlayedAsFinisher:         "played_as_finisher",
	KindZeroCostPlaysThisTurn:    "zero_cost_plays_this_turn",
	KindZeroCostPlaysThisFight:   "zero_cost_plays_this_fight",
	KindCardsPlayedThisTurn:      "cards_played_this_turn",
	KindCardsPlayedThisFight:     "cards_played_this_fight",
	KindLastPlayedCardType:       "last_played_card_type",
	KindStatusEffectsSurvived:    "status_effects_survived",
	KindBattleTurnCount:          "battle_turn_count",
	KindPlayedAtLowHealth:        "played_at_low_health",
	KindPlayedAtHighHealth:       "played_at_high_health",
	KindPlayedAtHalfHealth:       "played_at_half_health",
	KindPlayedInStance:           "played_in_stance",
	KindFightsWonLifetime:        "fights_won_lifetime",
	KindFightsLostLifetime:       "fights_lost_lifetime",
	KindBattleTurnsLifetime:      "battle_turns_lifetime",
	KindPerfectTurnsLifetime:     "perfect_turns_lifetime",
}

// String returns the content-pipeline name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromName maps a content-pipeline name back to a Kind. Unrecognized
// names map to KindUnknown.
func KindFromName(name string) Kind {
	for kind, n := range kindNames {
		if n == name {
			return kind
		}
	}
	return KindUnknown
}

// AllKinds returns every known kind except KindUnknown, in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for k := KindTimesPlayedThisFight; k <= KindPerfectTurnsLifetime; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Comparator is the comparison applied between a condition's current value
// and its required threshold.
type Comparator string

const (
	CompareGTE Comparator = ">="
	CompareEQ  Comparator = "=="
	CompareLTE Comparator = "<="
	CompareGT  Comparator = ">"
	CompareLT  Comparator = "<"
)

// Health percentage thresholds for the play-time health conditions.
const (
	lowHealthPercent  = 25
	highHealthPercent = 75
	halfHealthPercent = 50
)

// familiarNameMinLength is the minimum shared substring length for the
// familiar-name condition.
const familiarNameMinLength = 3
