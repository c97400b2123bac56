package game

import (
	"github.com/google/uuid"

	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/targeting"
)

// CardType categorizes a card definition.
type CardType int

const (
	CardTypeNone CardType = iota
	CardTypeAttack
	CardTypeSkill
	CardTypePower
	CardTypeCurse
)

var cardTypeNames = map[CardType]string{
	CardTypeNone:   "none",
	CardTypeAttack: "attack",
	CardTypeSkill:  "skill",
	CardTypePower:  "power",
	CardTypeCurse:  "curse",
}

func (ct CardType) String() string {
	if name, ok := cardTypeNames[ct]; ok {
		return name
	}
	return "none"
}

// CardTypeFromName maps a content-pipeline name to a CardType.
func CardTypeFromName(name string) CardType {
	for ct, n := range cardTypeNames {
		if n == name {
			return ct
		}
	}
	return CardTypeNone
}

// Rarity of a card definition.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityLegendary
)

// Stance is a mutually-exclusive combat mode on an entity.
type Stance int

const (
	StanceNeutral Stance = iota
	StanceEmber          // offense
	StanceBulwark        // defense
	StanceTempest        // speed
)

var stanceNames = map[Stance]string{
	StanceNeutral: "neutral",
	StanceEmber:   "ember",
	StanceBulwark: "bulwark",
	StanceTempest: "tempest",
}

func (s Stance) String() string {
	if name, ok := stanceNames[s]; ok {
		return name
	}
	return "neutral"
}

// StanceFromName maps a content-pipeline name to a Stance.
func StanceFromName(name string) Stance {
	for s, n := range stanceNames {
		if n == name {
			return s
		}
	}
	return StanceNeutral
}

// EffectKind identifies a concrete effect over the closed set the content
// pipeline can author. EffectUnknown is the explicit catch-all for ids newer
// than this build; resolving it is a logged no-op.
type EffectKind int

const (
	EffectUnknown EffectKind = iota
	EffectDamage
	EffectHeal
	EffectDrawCard
	EffectRestoreEnergy
	EffectLoseEnergy
	EffectDiscardRandom
	EffectEnterStance
	EffectExitStance
	EffectGainCombo
	EffectResetCombo
	EffectCleanse
	EffectApplyBreak
	EffectApplyWeak
	EffectApplyBurn
	EffectApplySalve
	EffectApplyThorns
	EffectApplyShield
	EffectApplyStrength
	EffectApplyCurse
	EffectApplyStun
	EffectApplyLimitBreak
	EffectApplyCriticalUp
)

var effectKindNames = map[EffectKind]string{
	EffectUnknown:         "unknown",
	EffectDamage:          "damage",
	EffectHeal:            "heal",
	EffectDrawCard:        "draw_card",
	EffectRestoreEnergy:   "restore_energy",
	EffectLoseEnergy:      "lose_energy",
	EffectDiscardRandom:   "discard_random",
	EffectEnterStance:     "enter_stance",
	EffectExitStance:      "exit_stance",
	EffectGainCombo:       "gain_combo",
	EffectResetCombo:      "reset_combo",
	EffectCleanse:         "cleanse",
	EffectApplyBreak:      "apply_break",
	EffectApplyWeak:       "apply_weak",
	EffectApplyBurn:       "apply_burn",
	EffectApplySalve:      "apply_salve",
	EffectApplyThorns:     "apply_thorns",
	EffectApplyShield:     "apply_shield",
	EffectApplyStrength:   "apply_strength",
	EffectApplyCurse:      "apply_curse",
	EffectApplyStun:       "apply_stun",
	EffectApplyLimitBreak: "apply_limit_break",
	EffectApplyCriticalUp: "apply_critical_up",
}

func (ek EffectKind) String() string {
	if name, ok := effectKindNames[ek]; ok {
		return name
	}
	return "unknown"
}

// EffectKindFromName maps a content-pipeline name to an EffectKind.
func EffectKindFromName(name string) EffectKind {
	for ek, n := range effectKindNames {
		if n == name {
			return ek
		}
	}
	return EffectUnknown
}

// StatusName returns the status effect name an Apply* kind installs, or ""
// for non-status kinds.
func (ek EffectKind) StatusName() string {
	switch ek {
	case EffectApplyBreak:
		return StatusBreak
	case EffectApplyWeak:
		return StatusWeak
	case EffectApplyBurn:
		return StatusBurn
	case EffectApplySalve:
		return StatusSalve
	case EffectApplyThorns:
		return StatusThorns
	case EffectApplyShield:
		return StatusShield
	case EffectApplyStrength:
		return StatusStrength
	case EffectApplyCurse:
		return StatusCurse
	case EffectApplyStun:
		return StatusStun
	case EffectApplyLimitBreak:
		return StatusLimitBreak
	case EffectApplyCriticalUp:
		return StatusCriticalUp
	}
	return ""
}

// ScalingSource names the live counter a scaling rule reads.
type ScalingSource int

const (
	ScaleNone ScalingSource = iota
	ScaleComboCount
	ScaleStrength
	ScaleMissingHealth
	ScaleCurrentEnergy
	ScaleCardsPlayedThisTurn
	ScaleDamageDealtThisFight
	ScaleTurnNumber
	ScaleStatusesSurvived
)

var scalingSourceNames = map[ScalingSource]string{
	ScaleNone:                 "none",
	ScaleComboCount:           "combo_count",
	ScaleStrength:             "strength",
	ScaleMissingHealth:        "missing_health",
	ScaleCurrentEnergy:        "current_energy",
	ScaleCardsPlayedThisTurn:  "cards_played_this_turn",
	ScaleDamageDealtThisFight: "damage_dealt_this_fight",
	ScaleTurnNumber:           "turn_number",
	ScaleStatusesSurvived:     "statuses_survived",
}

func (ss ScalingSource) String() string {
	if name, ok := scalingSourceNames[ss]; ok {
		return name
	}
	return "none"
}

// ScalingSourceFromName maps a content-pipeline name to a ScalingSource.
func ScalingSourceFromName(name string) ScalingSource {
	for ss, n := range scalingSourceNames {
		if n == name {
			return ss
		}
	}
	return ScaleNone
}

// ScalingRule adds a bonus proportional to a live counter to an effect's base
// amount. The cap applies only when it exceeds the base amount; a cap at or
// below the base is treated as misconfigured and ignored rather than letting
// it silently nerf the base effect.
type ScalingRule struct {
	Source     ScalingSource
	Multiplier float64
	Cap        int
}

// CombinePolicy controls how an effect's alternative combines with the
// primary when a condition is declared.
type CombinePolicy int

const (
	// CombineReplace executes the alternative instead of the primary when
	// the condition is not met; exactly one of the two executes.
	CombineReplace CombinePolicy = iota
	// CombineAdditional always executes the alternative; the condition
	// gates only the primary.
	CombineAdditional
)

// EffectCondition gates an effect's primary branch.
type EffectCondition struct {
	Kind       conditions.Kind
	Comparator conditions.Comparator
	Threshold  int
}

// Effect is one declarative step of a card, resolved in declaration order.
// Its target specifier is independent of the card's overall declared targets.
type Effect struct {
	Kind        EffectKind
	Target      targeting.Specifier
	Amount      int
	Duration    int
	Stance      Stance // EffectEnterStance only
	Scaling     *ScalingRule
	Condition   *EffectCondition
	Alternative *Effect
	Combine     CombinePolicy
}

// UpgradeSpec attaches a one-time upgrade condition to a definition.
type UpgradeSpec struct {
	Condition     conditions.Kind
	Comparator    conditions.Comparator
	Required      int
	UpgradedDefID int
	AllCopies     bool
}

// StanceChange is an optional stance change a card applies before any of its
// effects resolve.
type StanceChange struct {
	Stance Stance
	Exit   bool // exit the current stance instead of entering one
}

// CardDefinition is the immutable, shared description of a card. Created at
// content-authoring time and never mutated at runtime.
type CardDefinition struct {
	ID            int
	Name          string
	Cost          int
	Rarity        Rarity
	Type          CardType
	ComboBuilding bool
	Finisher      bool
	Effects       []Effect
	Upgrade       *UpgradeSpec
	Stance        *StanceChange
}

// CanUpgrade reports whether the definition has a complete upgrade spec.
func (d *CardDefinition) CanUpgrade() bool {
	return d != nil && d.Upgrade != nil && d.Upgrade.UpgradedDefID != 0
}

// Zone identifies where a card instance currently lives.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneDiscard
	ZoneInPlay
)

func (z Zone) String() string {
	switch z {
	case ZoneDeck:
		return "deck"
	case ZoneHand:
		return "hand"
	case ZoneDiscard:
		return "discard"
	case ZoneInPlay:
		return "in_play"
	}
	return "unknown"
}

// CardInstance is a live occurrence of a definition, owned by exactly one
// entity for its lifetime.
type CardInstance struct {
	ID      string
	DefID   int
	OwnerID int
	Zone    Zone
}

// NewCardInstance creates a fresh instance of a definition for an owner.
func NewCardInstance(defID, ownerID int) *CardInstance {
	return &CardInstance{
		ID:      uuid.NewString(),
		DefID:   defID,
		OwnerID: ownerID,
		Zone:    ZoneDeck,
	}
}
