// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// Type represents the type of event
type Type string

// Event types published by the engine and config watcher
const (
	ShapeAdded        Type = "shape_added"
	ShapeRemoved      Type = "shape_removed"
	ShapesCleared     Type = "shapes_cleared"
	CollisionDetected Type = "collision_detected"
	WorldBoundsHit    Type = "world_bounds_hit"
	ConfigReloaded    Type = "config_reloaded"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies one registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// Copy so a concurrent Publish iterating the old slice is unaffected.
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// HasSubscribers reports whether anything listens for eventType.
func (b *Bus) HasSubscribers(eventType Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// ShapeEvent reports a shape entering or leaving the world
type ShapeEvent struct {
	BaseEvent
	ShapeID uint64
	Kind    physics.Kind
}

// NewShapeEvent creates a new shape event
func NewShapeEvent(eventType Type, source interface{}, shapeID uint64, kind physics.Kind) *ShapeEvent {
	return &ShapeEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		ShapeID:   shapeID,
		Kind:      kind,
	}
}

// ClearedEvent reports a full clear
type ClearedEvent struct {
	BaseEvent
	Count int
}

// NewClearedEvent creates a new clear event
func NewClearedEvent(source interface{}, count int) *ClearedEvent {
	return &ClearedEvent{
		BaseEvent: BaseEvent{EventType: ShapesCleared, Source: source},
		Count:     count,
	}
}

// CollisionEvent contains one resolved contact
type CollisionEvent struct {
	BaseEvent
	ShapeA      uint64
	ShapeB      uint64
	Normal      physics.Vector2D
	Penetration float64
	Frame       uint64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, shapeA, shapeB uint64, normal physics.Vector2D, penetration float64, frame uint64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent:   BaseEvent{EventType: CollisionDetected, Source: source},
		ShapeA:      shapeA,
		ShapeB:      shapeB,
		Normal:      normal,
		Penetration: penetration,
		Frame:       frame,
	}
}

// BoundsEvent reports a shape reflected off a world edge
type BoundsEvent struct {
	BaseEvent
	ShapeID uint64
	Frame   uint64
}

// NewBoundsEvent creates a new world-bounds event
func NewBoundsEvent(source interface{}, shapeID uint64, frame uint64) *BoundsEvent {
	return &BoundsEvent{
		BaseEvent: BaseEvent{EventType: WorldBoundsHit, Source: source},
		ShapeID:   shapeID,
		Frame:     frame,
	}
}

// ConfigEvent reports a configuration reload
type ConfigEvent struct {
	BaseEvent
	Path string
	Err  error
}

// NewConfigEvent creates a new config reload event. Err is set when the
// reload failed and the previous configuration stays in effect.
func NewConfigEvent(source interface{}, path string, err error) *ConfigEvent {
	return &ConfigEvent{
		BaseEvent: BaseEvent{EventType: ConfigReloaded, Source: source},
		Path:      path,
		Err:       err,
	}
}
