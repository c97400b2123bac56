package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attackDef(id int, name string) *CardDefinition {
	return &CardDefinition{ID: id, Name: name, Type: CardTypeAttack}
}

func TestCatalogAddAndLookup(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(attackDef(1, "Cinder Jab"))
	catalog.Add(&CardDefinition{ID: 2, Name: "Ember Veil", Type: CardTypeSkill})
	catalog.Add(nil)

	require.NotNil(t, catalog.DefinitionByID(1))
	assert.Equal(t, "Cinder Jab", catalog.DefinitionByID(1).Name)
	assert.Nil(t, catalog.DefinitionByID(99))
	assert.Equal(t, 2, catalog.Size())
	assert.Len(t, catalog.All(), 2)
}

func TestCatalogAddReplacesSameID(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(attackDef(1, "Cinder Jab"))
	catalog.Add(&CardDefinition{ID: 1, Name: "Cinder Jab", Type: CardTypeSkill})

	assert.Equal(t, 1, catalog.Size())
	assert.Equal(t, CardTypeSkill, catalog.DefinitionByID(1).Type)
	assert.Empty(t, catalog.ByType(CardTypeAttack))
	assert.Len(t, catalog.ByType(CardTypeSkill), 1)
}

func TestCatalogByTypeReturnsCopy(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(attackDef(1, "Cinder Jab"))

	defs := catalog.ByType(CardTypeAttack)
	require.Len(t, defs, 1)
	defs[0] = nil
	require.NotNil(t, catalog.ByType(CardTypeAttack)[0])
}

func TestCatalogReplaceCategory(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(attackDef(1, "Cinder Jab"))
	catalog.Add(attackDef(2, "Ash Claw"))
	catalog.Add(&CardDefinition{ID: 3, Name: "Ember Veil", Type: CardTypeSkill})

	catalog.ReplaceCategory(CardTypeAttack, []*CardDefinition{
		attackDef(4, "Cinder Barrage"),
		nil,
		{ID: 5, Name: "Mismatched", Type: CardTypeSkill},
	})

	assert.Nil(t, catalog.DefinitionByID(1))
	assert.Nil(t, catalog.DefinitionByID(2))
	assert.Nil(t, catalog.DefinitionByID(5))
	require.NotNil(t, catalog.DefinitionByID(4))
	assert.Len(t, catalog.ByType(CardTypeAttack), 1)
	assert.NotNil(t, catalog.DefinitionByID(3))
	assert.Equal(t, 2, catalog.Size())
}
