package game

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/rules"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

// Engine resolves a played card's declarative effect list into concrete state
// mutations. All collaborators are injected; the engine holds no globals and
// runs entirely on the authoritative game loop.
type Engine struct {
	catalog    *Catalog
	evaluator  *conditions.Evaluator
	resolver   *targeting.Resolver
	logger     *zap.Logger
}

// NewEngine creates an effect resolution engine.
func NewEngine(catalog *Catalog, evaluator *conditions.Evaluator, resolver *targeting.Resolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:   catalog,
		evaluator: evaluator,
		resolver:  resolver,
		logger:    logger,
	}
}

// ResolveCard resolves one card play. The fixed order is: stance change
// first, then each effect in declaration order against its own target list,
// then play recording and the synchronous upgrade notification via the
// fight's event bus. A nil definition or missing source aborts the play with
// no state mutation.
func (eng *Engine) ResolveCard(fight *Fight, sourceID int, inst *CardInstance) error {
	if fight == nil {
		return fmt.Errorf("resolve card: nil fight")
	}
	if inst == nil {
		return fmt.Errorf("resolve card: nil card instance")
	}
	source := fight.Entity(sourceID)
	if source == nil {
		return fmt.Errorf("resolve card: unknown source entity %d", sourceID)
	}
	def := eng.catalog.DefinitionByID(inst.DefID)
	if def == nil {
		return fmt.Errorf("resolve card: unknown definition %d", inst.DefID)
	}

	// Pre-play state that the play record depends on.
	ec := fight.Store().Entity(sourceID)
	soloPlay := ec.CardsPlayedTurn == 0
	backToBack := ec.LastPlayedDefID == def.ID && ec.CardsPlayed.Fight > 0

	// Mark the resolution in flight so upgrade execution triggered by this
	// card's own effects waits until the play record completes.
	fight.resolving = true

	// Lift the card out of the hand before effects resolve so random
	// discards and copy counts never see the card being played.
	z := fight.ZonesOf(sourceID)
	for i, c := range z.Hand {
		if c.ID == inst.ID {
			z.Hand = append(z.Hand[:i], z.Hand[i+1:]...)
			inst.Zone = ZoneInPlay
			z.InPlay = append(z.InPlay, inst)
			break
		}
	}
	finalCard := len(z.Hand) == 0

	// Stance changes apply before any effect so scaling lookups within the
	// same resolution see the new stance.
	if def.Stance != nil {
		eng.applyStance(fight, source, def.Stance)
	}

	for i := range def.Effects {
		eng.resolveEffect(fight, source, def, &def.Effects[i])
	}

	eng.recordPlay(fight, source, def, inst, soloPlay, backToBack, finalCard)
	return nil
}

func (eng *Engine) applyStance(fight *Fight, source *Entity, change *StanceChange) {
	previous := source.Stance
	if change.Exit {
		source.Stance = StanceNeutral
	} else {
		source.Stance = change.Stance
	}
	if source.Stance == previous {
		return
	}
	evt := rules.NewEvent(rules.EventStanceChanged, source.ID, source.ID)
	evt.Data = source.Stance.String()
	fight.Bus().Publish(evt)
}

// resolveEffect handles one effect: targeting, scaling, conditional
// branching and dispatch.
func (eng *Engine) resolveEffect(fight *Fight, source *Entity, def *CardDefinition, eff *Effect) {
	targets := eng.resolveTargets(fight, source, eff.Target)

	primary := true
	if eff.Condition != nil {
		primary = eng.conditionMet(fight, source, def, eff, targets)
	}

	if primary {
		eng.executeEffect(fight, source, def, eff, targets)
	}
	if eff.Alternative != nil {
		switch eff.Combine {
		case CombineReplace:
			// Exactly one of primary/alternative executes.
			if !primary {
				altTargets := eng.resolveTargets(fight, source, eff.Alternative.Target)
				eng.executeEffect(fight, source, def, eff.Alternative, altTargets)
			}
		case CombineAdditional:
			// The alternative always fires when declared; the condition
			// gates only the primary.
			altTargets := eng.resolveTargets(fight, source, eff.Alternative.Target)
			eng.executeEffect(fight, source, def, eff.Alternative, altTargets)
		}
	}
}

func (eng *Engine) resolveTargets(fight *Fight, source *Entity, spec targeting.Specifier) []*Entity {
	ids := eng.resolver.Resolve(source.ID, spec, fight)
	targets := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		if e := fight.Entity(id); e != nil {
			targets = append(targets, e)
		}
	}
	return targets
}

// conditionMet evaluates an effect's condition against the source's state.
// Health-threshold conditions read the first resolved target instead when
// the effect targets someone other than the source.
func (eng *Engine) conditionMet(fight *Fight, source *Entity, def *CardDefinition, eff *Effect, targets []*Entity) bool {
	snap := fight.ConditionSnapshot(source, def, eng.catalog)
	if len(targets) > 0 && targets[0].ID != source.ID {
		switch eff.Condition.Kind {
		case conditions.KindPlayedAtLowHealth, conditions.KindPlayedAtHighHealth, conditions.KindPlayedAtHalfHealth:
			snap.CurrentHealth = targets[0].Health
			snap.MaxHealth = targets[0].MaxHealth
		}
	}
	current := eng.evaluator.Evaluate(eff.Condition.Kind, snap)
	return eng.evaluator.Compare(current, eff.Condition.Threshold, eff.Condition.Comparator)
}

// scaledAmount computes the effect's final amount. The cap only binds when it
// exceeds the base amount; a cap at or below the base is ignored so a
// misconfigured low cap cannot silently nerf the base effect.
func (eng *Engine) scaledAmount(fight *Fight, source *Entity, eff *Effect) int {
	amount := eff.Amount
	if eff.Scaling == nil || eff.Scaling.Source == ScaleNone {
		return amount
	}
	value := eng.scalingValue(fight, source, eff.Scaling.Source)
	bonus := int(math.Floor(float64(value) * eff.Scaling.Multiplier))
	scaled := amount + bonus
	if eff.Scaling.Cap > eff.Amount && scaled > eff.Scaling.Cap {
		scaled = eff.Scaling.Cap
	}
	return scaled
}

func (eng *Engine) scalingValue(fight *Fight, source *Entity, src ScalingSource) int {
	ec := fight.Store().Entity(source.ID)
	switch src {
	case ScaleComboCount:
		return source.Combo
	case ScaleStrength:
		return source.Strength
	case ScaleMissingHealth:
		return source.MaxHealth - source.Health
	case ScaleCurrentEnergy:
		return source.Energy
	case ScaleCardsPlayedThisTurn:
		return ec.CardsPlayedTurn
	case ScaleDamageDealtThisFight:
		return ec.DamageDealt.Fight
	case ScaleTurnNumber:
		return fight.Turn
	case ScaleStatusesSurvived:
		return ec.StatusesSurvived.Fight
	}
	return 0
}

// executeEffect dispatches one concrete effect to each resolved target. An
// empty target list is a no-op, not an error.
func (eng *Engine) executeEffect(fight *Fight, source *Entity, def *CardDefinition, eff *Effect, targets []*Entity) {
	if len(targets) == 0 {
		return
	}
	amount := eng.scaledAmount(fight, source, eff)

	for _, target := range targets {
		eng.dispatch(fight, source, target, def, eff, amount)

		evt := rules.NewEvent(rules.EventEffectTriggered, source.ID, target.ID)
		evt.CardDefID = def.ID
		evt.Data = eff.Kind.String()
		evt.Amount = amount
		fight.Bus().Publish(evt)
	}
}

func (eng *Engine) dispatch(fight *Fight, source, target *Entity, def *CardDefinition, eff *Effect, amount int) {
	switch eff.Kind {
	case EffectDamage:
		fight.DealDamage(source, target, amount)

	case EffectHeal:
		fight.Heal(source, target, amount)

	case EffectDrawCard:
		for i := 0; i < amount; i++ {
			if fight.DrawOneCard(target.ID) == nil {
				break
			}
		}

	case EffectRestoreEnergy:
		restored := min(amount, target.MaxEnergy-target.Energy)
		if restored > 0 {
			target.Energy += restored
			fight.Bus().Publish(rules.NewAmountEvent(rules.EventEnergyChanged, source.ID, target.ID, restored))
		}

	case EffectLoseEnergy:
		lost := min(amount, target.Energy)
		if lost > 0 {
			target.Energy -= lost
			fight.Bus().Publish(rules.NewAmountEvent(rules.EventEnergyChanged, source.ID, target.ID, -lost))
		}

	case EffectDiscardRandom:
		fight.DiscardRandom(target.ID, amount)

	case EffectEnterStance:
		eng.applyStance(fight, target, &StanceChange{Stance: eff.Stance})

	case EffectExitStance:
		eng.applyStance(fight, target, &StanceChange{Exit: true})

	case EffectGainCombo:
		target.Combo += amount
		fight.Bus().Publish(rules.NewAmountEvent(rules.EventComboChanged, source.ID, target.ID, target.Combo))

	case EffectResetCombo:
		if target.Combo != 0 {
			target.Combo = 0
			fight.Bus().Publish(rules.NewAmountEvent(rules.EventComboChanged, source.ID, target.ID, 0))
		}

	case EffectCleanse:
		if target.Statuses == nil {
			eng.logMissingSink(target, eff)
			return
		}
		for _, se := range target.Statuses.ActiveEffects() {
			target.Statuses.RemoveEffect(se.Name)
		}

	case EffectApplyBreak, EffectApplyWeak, EffectApplyBurn, EffectApplySalve,
		EffectApplyThorns, EffectApplyShield, EffectApplyStrength, EffectApplyCurse,
		EffectApplyStun, EffectApplyLimitBreak, EffectApplyCriticalUp:
		if target.Statuses == nil {
			eng.logMissingSink(target, eff)
			return
		}
		name := eff.Kind.StatusName()
		target.Statuses.AddEffect(name, amount, eff.Duration, source.ID)
		switch eff.Kind {
		case EffectApplyStrength:
			target.Strength += amount
		case EffectApplyStun:
			target.Stunned = true
		case EffectApplyLimitBreak:
			target.LimitBreak = true
		}
		evt := rules.NewAmountEvent(rules.EventStatusApplied, source.ID, target.ID, amount)
		evt.Data = name
		fight.Bus().Publish(evt)

	default:
		// Configuration gap, not a runtime fault.
		eng.logger.Warn("unmapped effect kind",
			zap.Int("kind", int(eff.Kind)),
			zap.Int("card", def.ID),
		)
	}
}

func (eng *Engine) logMissingSink(target *Entity, eff *Effect) {
	eng.logger.Warn("target has no status sink, skipping effect",
		zap.Int("target", target.ID),
		zap.String("effect", eff.Kind.String()),
	)
}

// recordPlay updates the play counters, consumes the card and notifies the
// upgrade evaluator synchronously through the bus before returning.
func (eng *Engine) recordPlay(fight *Fight, source *Entity, def *CardDefinition, inst *CardInstance, soloPlay, backToBack, finalCard bool) {
	store := fight.Store()
	cc := store.Card(source.ID, def.ID)
	cc.Played.Add(1)
	if backToBack {
		cc.BackToBack.Add(1)
	}
	if soloPlay {
		cc.SoloPlays.Add(1)
	}
	if finalCard {
		cc.FinalCardInHand.Add(1)
	}

	ec := store.Entity(source.ID)
	ec.CardsPlayed.Add(1)
	ec.CardsPlayedTurn++
	if def.Cost == 0 {
		ec.ZeroCostPlayed.Add(1)
		ec.ZeroCostPlayedTurn++
	}
	ec.LastPlayedCardType = int(def.Type)
	ec.LastPlayedDefID = def.ID

	if def.Cost > 0 {
		source.Energy = max(0, source.Energy-def.Cost)
	}

	comboBefore := source.Combo
	switch {
	case def.ComboBuilding:
		source.Combo++
	case def.Finisher:
		source.Combo = 0
	default:
		source.Combo = 0
	}
	if source.Combo != comboBefore {
		fight.Bus().Publish(rules.NewAmountEvent(rules.EventComboChanged, source.ID, source.ID, source.Combo))
	}

	// The played card lands in the discard pile.
	z := fight.ZonesOf(source.ID)
	for i, c := range z.InPlay {
		if c.ID == inst.ID {
			z.InPlay = append(z.InPlay[:i], z.InPlay[i+1:]...)
			break
		}
	}
	inst.Zone = ZoneDiscard
	z.Discard = append(z.Discard, inst)

	// The play is fully recorded; upgrades queued by this card's effects
	// may now execute against the settled zones.
	fight.resolving = false

	evt := rules.NewCardEvent(rules.EventCardPlayed, source.ID, def.ID, inst.ID)
	evt.Flag = def.Cost == 0
	fight.Bus().Publish(evt)
}
