package counters

// Scoped holds the fight-scoped and lifetime-scoped value of one statistic.
// Increments apply to both scopes immediately, so lifetime totals always
// include the running fight; resetting the fight scope leaves the lifetime
// value untouched.
type Scoped struct {
	Fight    int
	Lifetime int
}

// Add increments both scopes by the given amount.
func (s *Scoped) Add(amount int) {
	if amount <= 0 {
		return
	}
	s.Fight += amount
	s.Lifetime += amount
}

// ResetFight zeroes the fight-scoped value only.
func (s *Scoped) ResetFight() {
	s.Fight = 0
}

// CardCounters is the per-card counter bundle tracked for upgrade conditions.
// Counters are keyed by the owning entity and the card definition, so every
// copy of a definition owned by the same entity shares one bundle.
type CardCounters struct {
	Played          Scoped
	Drawn           Scoped
	HeldAtTurnEnd   Scoped
	Discarded       Scoped // manual discards only
	FinalCardInHand Scoped // played as the last card in hand
	BackToBack      Scoped // played twice in a row
	SoloPlays       Scoped // only card played that turn
}

// NewCardCounters creates a zeroed card counter bundle.
func NewCardCounters() *CardCounters {
	return &CardCounters{}
}

// ResetFight zeroes all fight-scoped values.
func (cc *CardCounters) ResetFight() {
	cc.Played.ResetFight()
	cc.Drawn.ResetFight()
	cc.HeldAtTurnEnd.ResetFight()
	cc.Discarded.ResetFight()
	cc.FinalCardInHand.ResetFight()
	cc.BackToBack.ResetFight()
	cc.SoloPlays.ResetFight()
}

// EntityCounters is the tracking bundle for one combat participant.
type EntityCounters struct {
	DamageDealt     Scoped
	DamageTaken     Scoped
	HealingGiven    Scoped
	HealingReceived Scoped

	// Round-windowed damage, fight scope only.
	DamageDealtThisRound int
	DamageDealtLastRound int
	BestRoundDamage      int
	DamageTakenThisTurn  int

	ZeroCostPlayed     Scoped
	ZeroCostPlayedTurn int
	CardsPlayed        Scoped
	CardsPlayedTurn    int

	// LastPlayedCardType is the card type of the most recent play this
	// fight, 0 when nothing has been played yet.
	LastPlayedCardType int
	// LastPlayedDefID is the definition of the most recent play this fight.
	LastPlayedDefID int

	// SurvivedStatuses records status effects that expired on this entity
	// without killing it, fight scope.
	SurvivedStatuses map[string]bool
	StatusesSurvived Scoped

	BattleTurns  Scoped
	PerfectTurns Scoped
	FightsWon    Scoped
	FightsLost   Scoped
}

// NewEntityCounters creates a zeroed entity counter bundle.
func NewEntityCounters() *EntityCounters {
	return &EntityCounters{
		SurvivedStatuses: make(map[string]bool),
	}
}

// ResetFight zeroes all fight-scoped values.
func (ec *EntityCounters) ResetFight() {
	ec.DamageDealt.ResetFight()
	ec.DamageTaken.ResetFight()
	ec.HealingGiven.ResetFight()
	ec.HealingReceived.ResetFight()
	ec.DamageDealtThisRound = 0
	ec.DamageDealtLastRound = 0
	ec.BestRoundDamage = 0
	ec.DamageTakenThisTurn = 0
	ec.ZeroCostPlayed.ResetFight()
	ec.ZeroCostPlayedTurn = 0
	ec.CardsPlayed.ResetFight()
	ec.CardsPlayedTurn = 0
	ec.LastPlayedCardType = 0
	ec.LastPlayedDefID = 0
	ec.SurvivedStatuses = make(map[string]bool)
	ec.StatusesSurvived.ResetFight()
	ec.BattleTurns.ResetFight()
	ec.PerfectTurns.ResetFight()
	ec.FightsWon.ResetFight()
	ec.FightsLost.ResetFight()
}

// StartTurn resets the per-turn windows.
func (ec *EntityCounters) StartTurn() {
	ec.ZeroCostPlayedTurn = 0
	ec.CardsPlayedTurn = 0
	ec.DamageTakenThisTurn = 0
}

// RecordDamageDealt adds to the fight/lifetime totals and the current round
// window, keeping the best single-round figure up to date.
func (ec *EntityCounters) RecordDamageDealt(amount int) {
	if amount <= 0 {
		return
	}
	ec.DamageDealt.Add(amount)
	ec.DamageDealtThisRound += amount
	if ec.DamageDealtThisRound > ec.BestRoundDamage {
		ec.BestRoundDamage = ec.DamageDealtThisRound
	}
}

// EndRound closes the current damage window; damage dealt this round becomes
// last round's total.
func (ec *EntityCounters) EndRound() {
	ec.DamageDealtLastRound = ec.DamageDealtThisRound
	ec.DamageDealtThisRound = 0
}

// SurviveStatus records a status effect that expired without killing the
// entity. Each distinct status name counts once per fight.
func (ec *EntityCounters) SurviveStatus(name string) {
	if name == "" || ec.SurvivedStatuses[name] {
		return
	}
	ec.SurvivedStatuses[name] = true
	ec.StatusesSurvived.Add(1)
}
