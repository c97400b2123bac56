package upgrade

import (
	"time"

	"go.uber.org/zap"

	"github.com/emberduel/ember-server-go/internal/game"
	"github.com/emberduel/ember-server-go/internal/game/conditions"
	"github.com/emberduel/ember-server-go/internal/game/rules"
)

// QueuedUpgrade is a pending one-time card replacement, held until the
// executor drains the queue within the same processing step.
type QueuedUpgrade struct {
	BaseDefID     int
	UpgradedDefID int
	InstanceID    string
	EntityID      int
	AllCopies     bool
	QueuedAt      time.Time
}

// Evaluator re-checks upgrade conditions on every relevant gameplay event
// and queues upgrades whose condition is met. Each (entity, definition) pair
// moves Eligible -> Triggered -> Upgraded within a fight; the Upgraded mark
// is terminal until the next fight resets it.
type Evaluator struct {
	logger    *zap.Logger
	catalog   *game.Catalog
	evaluator *conditions.Evaluator
	executor  *Executor

	fight *game.Fight

	// record holds the Triggered/Upgraded marks per entity and definition
	// for the running fight.
	record map[int]map[int]bool

	queue    []QueuedUpgrade
	draining bool
}

// NewEvaluator creates an upgrade evaluator.
func NewEvaluator(catalog *game.Catalog, evaluator *conditions.Evaluator, executor *Executor, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		logger:    logger,
		catalog:   catalog,
		evaluator: evaluator,
		executor:  executor,
		record:    make(map[int]map[int]bool),
	}
}

// Attach subscribes the evaluator to a fight's event bus. Events are
// delivered synchronously on the authoritative game loop, so a met condition
// queues and executes its upgrade before the next player action is accepted.
func (ev *Evaluator) Attach(fight *game.Fight) {
	ev.fight = fight
	fight.Bus().Subscribe(ev.HandleEvent)
}

// HandleEvent re-evaluates the condition kinds the event can affect.
func (ev *Evaluator) HandleEvent(evt rules.Event) {
	if ev.fight == nil {
		return
	}
	if evt.Type == rules.EventFightStarted {
		ev.record = make(map[int]map[int]bool)
		ev.queue = nil
		return
	}

	if kinds := EventConditions[evt.Type]; len(kinds) > 0 {
		affected := make(map[conditions.Kind]bool, len(kinds))
		for _, k := range kinds {
			affected[k] = true
		}
		for _, entityID := range ev.fight.EntityIDs() {
			ev.evaluateEntity(entityID, affected)
		}
	}

	// A card's own effects can meet its upgrade condition mid-resolution,
	// while the instance still sits in play. Executing then would swap the
	// in-play slot under the resolving card, so the queue waits for the
	// play-recorded event that follows the resolution step.
	if !ev.fight.Resolving() {
		ev.drain()
	}

	if evt.Type == rules.EventFightEnded {
		// All Upgraded marks return to Eligible for the next fight;
		// lifetime counters are untouched.
		ev.record = make(map[int]map[int]bool)
	}
}

func (ev *Evaluator) evaluateEntity(entityID int, affected map[conditions.Kind]bool) {
	entity := ev.fight.Entity(entityID)
	if entity == nil {
		return
	}
	zones := ev.fight.ZonesOf(entityID)

	seen := make(map[int]bool)
	for _, inst := range zones.All() {
		if seen[inst.DefID] {
			continue
		}
		seen[inst.DefID] = true

		def := ev.catalog.DefinitionByID(inst.DefID)
		if !def.CanUpgrade() {
			continue
		}
		spec := def.Upgrade
		if !affected[spec.Condition] {
			continue
		}
		if ev.record[entityID][def.ID] {
			continue
		}

		snap := ev.fight.ConditionSnapshot(entity, def, ev.catalog)
		current := ev.evaluator.Evaluate(spec.Condition, snap)
		if !ev.evaluator.Compare(current, spec.Required, spec.Comparator) {
			continue
		}

		ev.mark(entityID, def.ID)
		ev.queue = append(ev.queue, QueuedUpgrade{
			BaseDefID:     def.ID,
			UpgradedDefID: spec.UpgradedDefID,
			InstanceID:    inst.ID,
			EntityID:      entityID,
			AllCopies:     spec.AllCopies,
			QueuedAt:      time.Now(),
		})
		ev.logger.Info("upgrade condition met",
			zap.Int("entity", entityID),
			zap.Int("card", def.ID),
			zap.String("condition", spec.Condition.String()),
			zap.Int("value", current),
		)
	}
}

// drain executes queued upgrades in enqueue order. Events published during
// execution may queue further upgrades; the outer drain picks them up, so
// ordering is preserved and nested drains never run concurrently.
func (ev *Evaluator) drain() {
	if ev.draining {
		return
	}
	ev.draining = true
	defer func() { ev.draining = false }()

	for len(ev.queue) > 0 {
		q := ev.queue[0]
		ev.queue = ev.queue[1:]
		if err := ev.executor.Execute(ev.fight, q); err != nil {
			ev.logger.Warn("upgrade execution failed",
				zap.Int("entity", q.EntityID),
				zap.Int("card", q.BaseDefID),
				zap.Error(err),
			)
		}
	}
}

func (ev *Evaluator) mark(entityID, defID int) {
	byDef, ok := ev.record[entityID]
	if !ok {
		byDef = make(map[int]bool)
		ev.record[entityID] = byDef
	}
	byDef[defID] = true
}

// Upgraded reports whether the pair already triggered this fight.
func (ev *Evaluator) Upgraded(entityID, defID int) bool {
	return ev.record[entityID][defID]
}
