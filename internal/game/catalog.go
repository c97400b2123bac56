package game

import (
	"sync"
)

// Catalog is the globally addressable card definition registry. Definitions
// are immutable; the catalog itself is mutated only through explicit methods
// so network sync never has to reach into its internals.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[int]*CardDefinition
	byType map[CardType][]*CardDefinition
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[int]*CardDefinition),
		byType: make(map[CardType][]*CardDefinition),
	}
}

// Add registers a definition. A definition with the same id replaces the
// previous one.
func (c *Catalog) Add(def *CardDefinition) {
	if def == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.byID[def.ID]; ok {
		c.removeFromTypeLocked(old)
	}
	c.byID[def.ID] = def
	c.byType[def.Type] = append(c.byType[def.Type], def)
}

// DefinitionByID returns the definition for an id, or nil.
func (c *Catalog) DefinitionByID(id int) *CardDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// ByType returns the definitions of one card type.
func (c *Catalog) ByType(cardType CardType) []*CardDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := c.byType[cardType]
	out := make([]*CardDefinition, len(defs))
	copy(out, defs)
	return out
}

// All returns every registered definition.
func (c *Catalog) All() []*CardDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*CardDefinition, 0, len(c.byID))
	for _, def := range c.byID {
		out = append(out, def)
	}
	return out
}

// ReplaceCategory swaps the full definition list of one card type, used when
// a content sync delivers a new set.
func (c *Catalog) ReplaceCategory(cardType CardType, defs []*CardDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, old := range c.byType[cardType] {
		delete(c.byID, old.ID)
	}
	c.byType[cardType] = nil
	for _, def := range defs {
		if def == nil || def.Type != cardType {
			continue
		}
		c.byID[def.ID] = def
		c.byType[cardType] = append(c.byType[cardType], def)
	}
}

// Size returns the number of registered definitions.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

func (c *Catalog) removeFromTypeLocked(def *CardDefinition) {
	defs := c.byType[def.Type]
	for i, d := range defs {
		if d.ID == def.ID {
			c.byType[def.Type] = append(defs[:i], defs[i+1:]...)
			return
		}
	}
}
