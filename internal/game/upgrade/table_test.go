package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emberduel/ember-server-go/internal/game/conditions"
)

func TestEveryConditionKindIsReachable(t *testing.T) {
	reachable := make(map[conditions.Kind]bool)
	for _, kinds := range EventConditions {
		for _, k := range kinds {
			reachable[k] = true
		}
	}
	for _, kind := range conditions.AllKinds() {
		assert.True(t, reachable[kind], "condition %s is not affected by any event", kind)
	}
}

func TestTableContainsOnlyKnownKinds(t *testing.T) {
	known := make(map[conditions.Kind]bool)
	for _, kind := range conditions.AllKinds() {
		known[kind] = true
	}
	for evt, kinds := range EventConditions {
		for _, k := range kinds {
			assert.True(t, known[k], "event %s maps to unknown condition %d", evt, k)
		}
	}
}
