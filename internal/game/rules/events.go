package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Fight lifecycle events
	EventFightStarted EventType = "FIGHT_STARTED"
	EventFightEnded   EventType = "FIGHT_ENDED"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventTurnEnded    EventType = "TURN_ENDED"

	// Card zone events
	EventCardPlayed        EventType = "CARD_PLAYED"
	EventCardDrawn         EventType = "CARD_DRAWN"
	EventCardDiscarded     EventType = "CARD_DISCARDED"
	EventCardHeldAtTurnEnd EventType = "CARD_HELD_AT_TURN_END"
	EventDeckChanged       EventType = "DECK_CHANGED"

	// Entity state events
	EventDamageDealt     EventType = "DAMAGE_DEALT"
	EventDamageTaken     EventType = "DAMAGE_TAKEN"
	EventHealingGiven    EventType = "HEALING_GIVEN"
	EventHealingReceived EventType = "HEALING_RECEIVED"
	EventHealthChanged   EventType = "HEALTH_CHANGED"
	EventEnergyChanged   EventType = "ENERGY_CHANGED"
	EventStanceChanged   EventType = "STANCE_CHANGED"
	EventComboChanged    EventType = "COMBO_CHANGED"
	EventStatusApplied   EventType = "STATUS_APPLIED"
	EventStatusSurvived  EventType = "STATUS_SURVIVED"

	// Upgrade events
	EventCardUpgraded EventType = "CARD_UPGRADED"

	// Presentation events, consumed fire-and-forget by the animation layer
	EventEffectTriggered EventType = "EFFECT_TRIGGERED"
)

// Event represents a state change that other subsystems may react to.
// Entity and card identifiers are the flat integer keys the counter store
// and the replication surface use.
type Event struct {
	Type         EventType
	ID           string // unique event ID
	SourceID     int    // entity that caused the change
	TargetID     int    // entity the change applied to
	CardDefID    int    // card definition involved, 0 if none
	UpgradeDefID int    // upgraded definition for EventCardUpgraded, 0 otherwise
	InstanceID   string // card instance involved, empty if none
	Amount       int    // numeric value (damage, healing, combo delta, ...)
	Flag         bool   // context-dependent flag (manual discard, zero-cost play, ...)
	Data         string // additional string data (status name, stance name, ...)
	Timestamp    time.Time
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, sourceID, targetID int) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Timestamp: time.Now(),
	}
}

// NewCardEvent creates a new event referring to a specific card instance.
func NewCardEvent(eventType EventType, ownerID, cardDefID int, instanceID string) Event {
	evt := NewEvent(eventType, ownerID, ownerID)
	evt.CardDefID = cardDefID
	evt.InstanceID = instanceID
	return evt
}

// NewAmountEvent creates a new event with a numeric amount.
func NewAmountEvent(eventType EventType, sourceID, targetID, amount int) Event {
	evt := NewEvent(eventType, sourceID, targetID)
	evt.Amount = amount
	return evt
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Delivery happens on the caller's goroutine; the authoritative
// game loop is both producer and consumer, so subscribers observe events in
// exactly the order they were published.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	listener := TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	}
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], listener)
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}

	if typedListeners, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typedListeners {
			listener.Callback(event)
		}
	}
}

// PublishBatch publishes multiple events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
