package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/counters"
	"github.com/emberduel/ember-server-go/internal/game/rules"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

// newDuel builds a two-entity fight with a fixed rng and an engine over the
// given catalog.
func newDuel(catalog *Catalog) (*Fight, *Engine, *Entity, *Entity) {
	bus := rules.NewEventBus()
	store := counters.NewStore()
	fight := NewFight(zap.NewNop(), bus, store, func(n int) int { return 0 })

	player := NewEntity(1, "Iri", targeting.SidePlayer, 60, 3)
	enemy := NewEntity(2, "Ashwalker", targeting.SideOpponent, 50, 3)
	fight.AddEntity(player)
	fight.AddEntity(enemy)
	fight.RegisterOpponent(targeting.SidePlayer, enemy.ID)
	fight.RegisterOpponent(targeting.SideOpponent, player.ID)

	evaluator := conditions.NewEvaluator(zap.NewNop())
	resolver := targeting.NewResolver(zap.NewNop(), func(n int) int { return 0 })
	engine := NewEngine(catalog, evaluator, resolver, zap.NewNop())
	return fight, engine, player, enemy
}

// drawCard places a fresh instance of the definition in the entity's hand.
func drawCard(fight *Fight, entityID, defID int) *CardInstance {
	fight.AddCardToDeck(entityID, defID)
	return fight.DrawOneCard(entityID)
}

func TestResolveCardBasicDamage(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Jab", Cost: 1, Type: CardTypeAttack,
		Effects: []Effect{{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 5}},
	})
	fight, engine, player, enemy := newDuel(catalog)
	inst := drawCard(fight, 1, 101)

	require.NoError(t, engine.ResolveCard(fight, 1, inst))

	assert.Equal(t, 45, enemy.Health)
	assert.Equal(t, 2, player.Energy)
	assert.Equal(t, ZoneDiscard, inst.Zone)
	assert.Equal(t, 1, fight.CopiesOf(1, 101, ZoneDiscard))
	assert.Equal(t, 1, fight.Store().Card(1, 101).Played.Fight)
	assert.Equal(t, 5, fight.Store().Entity(1).DamageDealt.Fight)
}

func TestScalingWithCap(t *testing.T) {
	cases := []struct {
		name       string
		base       int
		multiplier float64
		cap        int
		combo      int
		wantDamage int
	}{
		{"bonus under cap", 5, 1.5, 10, 2, 8},
		{"bonus capped", 5, 1.5, 10, 4, 10},
		{"base above bonus still capped", 8, 1.5, 10, 4, 10},
		{"cap at or below base is ignored", 8, 1.5, 5, 4, 14},
		{"fractional bonus floors", 5, 1.5, 20, 3, 9},
		{"no scaling source", 5, 0, 0, 4, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := NewCatalog()
			def := &CardDefinition{
				ID: 101, Name: "Jab", Cost: 1, Type: CardTypeAttack,
				Effects: []Effect{{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: tc.base}},
			}
			if tc.multiplier != 0 {
				def.Effects[0].Scaling = &ScalingRule{
					Source: ScaleComboCount, Multiplier: tc.multiplier, Cap: tc.cap,
				}
			}
			catalog.Add(def)

			fight, engine, player, enemy := newDuel(catalog)
			player.Combo = tc.combo
			inst := drawCard(fight, 1, 101)

			require.NoError(t, engine.ResolveCard(fight, 1, inst))
			assert.Equal(t, tc.wantDamage, 50-enemy.Health)
		})
	}
}

func TestConditionalReplaceRunsExactlyOneBranch(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Gambit", Cost: 1, Type: CardTypeAttack,
		Effects: []Effect{{
			Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 3,
			Condition: &EffectCondition{
				Kind: conditions.KindComboCountReached, Comparator: conditions.CompareGTE, Threshold: 3,
			},
			Alternative: &Effect{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 9},
			Combine:     CombineReplace,
		}},
	})

	// Condition unmet: only the alternative fires.
	fight, engine, player, enemy := newDuel(catalog)
	inst := drawCard(fight, 1, 101)
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 9, 50-enemy.Health)

	// Condition met: only the primary fires.
	fight, engine, player, enemy = newDuel(catalog)
	player.Combo = 3
	inst = drawCard(fight, 1, 101)
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 3, 50-enemy.Health)
}

func TestConditionalAdditionalAlwaysFiresAlternative(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Surge", Cost: 1, Type: CardTypeAttack,
		Effects: []Effect{{
			Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 4,
			Condition: &EffectCondition{
				Kind: conditions.KindComboCountReached, Comparator: conditions.CompareGTE, Threshold: 3,
			},
			Alternative: &Effect{Kind: EffectHeal, Target: targeting.SpecifierSelf, Amount: 2},
			Combine:     CombineAdditional,
		}},
	})

	// Condition unmet: only the alternative.
	fight, engine, player, enemy := newDuel(catalog)
	player.Health = 40
	inst := drawCard(fight, 1, 101)
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 50, enemy.Health)
	assert.Equal(t, 42, player.Health)

	// Condition met: primary and alternative.
	fight, engine, player, enemy = newDuel(catalog)
	player.Health = 40
	player.Combo = 3
	inst = drawCard(fight, 1, 101)
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 46, enemy.Health)
	assert.Equal(t, 42, player.Health)
}

func TestHealthConditionReadsTarget(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Opportunist", Cost: 1, Type: CardTypeAttack,
		Effects: []Effect{{
			Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 3,
			Condition: &EffectCondition{
				Kind: conditions.KindPlayedAtLowHealth, Comparator: conditions.CompareGTE, Threshold: 1,
			},
			Alternative: &Effect{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 1},
			Combine:     CombineReplace,
		}},
	})

	// Enemy at 20 percent health: the low-health check passes on the target
	// even though the source is at full health.
	fight, engine, _, enemy := newDuel(catalog)
	enemy.Health = 10
	inst := drawCard(fight, 1, 101)
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 7, enemy.Health)
}

func TestStanceAppliesBeforeEffects(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Ignite", Cost: 1, Type: CardTypeSkill,
		Stance: &StanceChange{Stance: StanceEmber},
		Effects: []Effect{{
			Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 2,
			Condition: &EffectCondition{
				Kind: conditions.KindPlayedInStance, Comparator: conditions.CompareEQ, Threshold: int(StanceEmber),
			},
			Alternative: &Effect{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 1},
			Combine:     CombineReplace,
		}},
	})
	fight, engine, player, enemy := newDuel(catalog)
	inst := drawCard(fight, 1, 101)

	var stanceEvents int
	fight.Bus().SubscribeTyped(rules.EventStanceChanged, func(rules.Event) { stanceEvents++ })

	require.NoError(t, engine.ResolveCard(fight, 1, inst))

	assert.Equal(t, StanceEmber, player.Stance)
	assert.Equal(t, 1, stanceEvents)
	// The stance condition saw the new stance, so the primary fired.
	assert.Equal(t, 48, enemy.Health)
}

func TestEnterStanceEffectUsesDeclaredStance(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Stormstep", Cost: 1, Type: CardTypeSkill,
		Effects: []Effect{{
			Kind:   EffectEnterStance,
			Target: targeting.SpecifierSelf,
			Stance: StanceTempest,
			// The amount carries no stance meaning.
			Amount: 99,
		}},
	})
	fight, engine, player, _ := newDuel(catalog)
	inst := drawCard(fight, 1, 101)

	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, StanceTempest, player.Stance)
}

func TestComboBookkeeping(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Builder", Cost: 0, Type: CardTypeAttack, ComboBuilding: true,
		Effects: []Effect{{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 1}},
	})
	catalog.Add(&CardDefinition{
		ID: 102, Name: "Closer", Cost: 0, Type: CardTypeAttack, Finisher: true,
		Effects: []Effect{{
			Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 2,
			Scaling: &ScalingRule{Source: ScaleComboCount, Multiplier: 2},
		}},
	})
	catalog.Add(&CardDefinition{
		ID: 103, Name: "Plain", Cost: 0, Type: CardTypeSkill,
		Effects: []Effect{{Kind: EffectHeal, Target: targeting.SpecifierSelf, Amount: 1}},
	})
	fight, engine, player, enemy := newDuel(catalog)

	require.NoError(t, engine.ResolveCard(fight, 1, drawCard(fight, 1, 101)))
	require.NoError(t, engine.ResolveCard(fight, 1, drawCard(fight, 1, 101)))
	assert.Equal(t, 2, player.Combo)

	// The finisher scales off the built combo, then resets it.
	require.NoError(t, engine.ResolveCard(fight, 1, drawCard(fight, 1, 102)))
	assert.Equal(t, 0, player.Combo)
	assert.Equal(t, 2+(2+4), 50-enemy.Health)

	// A card that neither builds nor finishes also resets the combo.
	require.NoError(t, engine.ResolveCard(fight, 1, drawCard(fight, 1, 101)))
	require.NoError(t, engine.ResolveCard(fight, 1, drawCard(fight, 1, 103)))
	assert.Equal(t, 0, player.Combo)
}

func TestPlayPatternCounters(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Jab", Cost: 0, Type: CardTypeAttack, ComboBuilding: true,
		Effects: []Effect{{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 1}},
	})
	catalog.Add(&CardDefinition{
		ID: 102, Name: "Other", Cost: 0, Type: CardTypeSkill,
		Effects: []Effect{{Kind: EffectHeal, Target: targeting.SpecifierSelf, Amount: 1}},
	})
	fight, engine, _, _ := newDuel(catalog)
	fight.StartTurn(1)

	first := drawCard(fight, 1, 101)
	second := drawCard(fight, 1, 101)
	third := drawCard(fight, 1, 102)

	require.NoError(t, engine.ResolveCard(fight, 1, first))
	require.NoError(t, engine.ResolveCard(fight, 1, second))
	require.NoError(t, engine.ResolveCard(fight, 1, third))

	cc := fight.Store().Card(1, 101)
	// Only the first play of the turn counts as solo.
	assert.Equal(t, 1, cc.SoloPlays.Fight)
	// The second Jab directly followed the first.
	assert.Equal(t, 1, cc.BackToBack.Fight)
	// The last card emptied the hand.
	assert.Equal(t, 1, fight.Store().Card(1, 102).FinalCardInHand.Fight)

	ec := fight.Store().Entity(1)
	assert.Equal(t, 3, ec.CardsPlayedTurn)
	assert.Equal(t, 3, ec.ZeroCostPlayed.Fight)
	assert.Equal(t, 102, ec.LastPlayedDefID)
}

func TestStatusEffects(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Brand", Cost: 1, Type: CardTypeSkill,
		Effects: []Effect{
			{Kind: EffectApplyBurn, Target: targeting.SpecifierOpponent, Amount: 3, Duration: 2},
			{Kind: EffectApplyStrength, Target: targeting.SpecifierSelf, Amount: 2, Duration: 3},
		},
	})
	fight, engine, player, enemy := newDuel(catalog)
	inst := drawCard(fight, 1, 101)

	require.NoError(t, engine.ResolveCard(fight, 1, inst))

	assert.Equal(t, 3, enemy.Statuses.EffectPotency(StatusBurn))
	assert.Equal(t, 2, player.Statuses.EffectPotency(StatusStrength))
	assert.Equal(t, 2, player.Strength)
}

func TestMissingStatusSinkSkipsEffect(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Brand", Cost: 1, Type: CardTypeSkill,
		Effects: []Effect{{Kind: EffectApplyWeak, Target: targeting.SpecifierOpponent, Amount: 2, Duration: 2}},
	})
	fight, engine, _, enemy := newDuel(catalog)
	enemy.Statuses = nil
	inst := drawCard(fight, 1, 101)

	// No sink on the target: the effect is skipped, the play still records.
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 1, fight.Store().Card(1, 101).Played.Fight)
}

func TestShieldAbsorbsBeforeHealth(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Jab", Cost: 1, Type: CardTypeAttack,
		Effects: []Effect{{Kind: EffectDamage, Target: targeting.SpecifierOpponent, Amount: 4}},
	})
	fight, engine, _, enemy := newDuel(catalog)
	enemy.Statuses.AddEffect(StatusShield, 6, 1, 2)
	inst := drawCard(fight, 1, 101)

	require.NoError(t, engine.ResolveCard(fight, 1, inst))

	assert.Equal(t, 50, enemy.Health)
	assert.Equal(t, 2, enemy.Statuses.EffectPotency(StatusShield))
	// Absorbed damage never reaches the dealt-damage counter.
	assert.Equal(t, 0, fight.Store().Entity(1).DamageDealt.Fight)
}

func TestMissingTargetIsNoOp(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Jab", Cost: 1, Type: CardTypeAttack,
		Effects: []Effect{{Kind: EffectDamage, Target: targeting.SpecifierAlly, Amount: 5}},
	})
	fight, engine, _, enemy := newDuel(catalog)
	inst := drawCard(fight, 1, 101)

	// No ally bonded: the effect fizzles, the play itself still resolves.
	require.NoError(t, engine.ResolveCard(fight, 1, inst))
	assert.Equal(t, 50, enemy.Health)
	assert.Equal(t, 1, fight.Store().Card(1, 101).Played.Fight)
}

func TestResolveCardUnknownDefinitionAborts(t *testing.T) {
	fight, engine, _, _ := newDuel(NewCatalog())
	inst := drawCard(fight, 1, 999)

	err := engine.ResolveCard(fight, 1, inst)
	require.Error(t, err)
	// No mutation: the card is still in hand.
	assert.Equal(t, 1, fight.CopiesOf(1, 999, ZoneHand))
	assert.Equal(t, 0, fight.Store().Card(1, 999).Played.Fight)
}

func TestResolveCardNilArguments(t *testing.T) {
	catalog := NewCatalog()
	fight, engine, _, _ := newDuel(catalog)

	assert.Error(t, engine.ResolveCard(nil, 1, &CardInstance{}))
	assert.Error(t, engine.ResolveCard(fight, 1, nil))
	assert.Error(t, engine.ResolveCard(fight, 99, &CardInstance{}))
}

func TestDrawAndEnergyEffects(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(&CardDefinition{
		ID: 101, Name: "Insight", Cost: 2, Type: CardTypeSkill,
		Effects: []Effect{
			{Kind: EffectDrawCard, Target: targeting.SpecifierSelf, Amount: 2},
			{Kind: EffectRestoreEnergy, Target: targeting.SpecifierSelf, Amount: 5},
		},
	})
	catalog.Add(&CardDefinition{ID: 102, Name: "Filler", Cost: 0, Type: CardTypeSkill})
	fight, engine, player, _ := newDuel(catalog)
	fight.AddCardToDeck(1, 102)
	fight.AddCardToDeck(1, 102)
	fight.AddCardToDeck(1, 102)
	inst := drawCard(fight, 1, 101)

	require.NoError(t, engine.ResolveCard(fight, 1, inst))

	assert.Equal(t, 2, len(fight.CardsInHand(1)))
	// The restore was clamped at full energy; the cost is paid when the play
	// records, after effects resolve.
	assert.Equal(t, 1, player.Energy)
}
