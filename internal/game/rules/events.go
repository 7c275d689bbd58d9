package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Match lifecycle events
	EventMatchCreated EventType = "MATCH_CREATED"
	EventMatchReset   EventType = "MATCH_RESET"
	EventPlayerJoined EventType = "PLAYER_JOINED"

	// Phase and turn events
	EventArenaStarted EventType = "ARENA_STARTED"
	EventArenaEnded   EventType = "ARENA_ENDED"
	EventRoundStarted EventType = "ROUND_STARTED"
	EventTurnAdvanced EventType = "TURN_ADVANCED"
	EventTurnPassed   EventType = "TURN_PASSED"
	EventActionSpent  EventType = "ACTION_SPENT"

	// Spell events
	EventSpellCast        EventType = "SPELL_CAST"
	EventSpellFizzled     EventType = "SPELL_FIZZLED"
	EventSpellLearned     EventType = "SPELL_LEARNED"
	EventMeditated        EventType = "MEDITATED"
	EventDefenseActivated EventType = "DEFENSE_ACTIVATED"

	// Combat events
	EventAttackDeclared   EventType = "ATTACK_DECLARED"
	EventAttackBlocked    EventType = "ATTACK_BLOCKED"
	EventDamageDealt      EventType = "DAMAGE_DEALT"
	EventManaDrained      EventType = "MANA_DRAINED"
	EventPlayerEliminated EventType = "PLAYER_ELIMINATED"

	// Potion events
	EventPotionBrewed  EventType = "POTION_BREWED"
	EventPotionGranted EventType = "POTION_GRANTED"
	EventPotionUsed    EventType = "POTION_USED"

	// Glyph events
	EventGlyphsDistributed EventType = "GLYPHS_DISTRIBUTED"
	EventGlyphUsed         EventType = "GLYPH_USED"
	EventGlyphsCompleted   EventType = "GLYPHS_COMPLETED"
	EventArenaEligible     EventType = "ARENA_ELIGIBLE"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType         `json:"type"`
	MatchID     string            `json:"matchId,omitempty"`
	PlayerID    string            `json:"playerId,omitempty"`
	TargetID    string            `json:"targetId,omitempty"`
	Amount      int               `json:"amount,omitempty"`
	Data        string            `json:"data,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Description string            `json:"description,omitempty"`
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
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
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
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
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, matchID, playerID string) Event {
	return Event{
		Type:      eventType,
		MatchID:   matchID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, matchID, playerID string, amount int) Event {
	evt := NewEvent(eventType, matchID, playerID)
	evt.Amount = amount
	return evt
}
