package proximity

import "github.com/akmonengine/proximity/gjk"

const (
	CONTACT_BEGIN EventType = iota
	CONTACT_PERSIST
	CONTACT_END
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case CONTACT_BEGIN:
		return "begin"
	case CONTACT_PERSIST:
		return "persist"
	case CONTACT_END:
		return "end"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// ContactBeginEvent is emitted the first frame a pair is in contact.
type ContactBeginEvent struct {
	PairID int
	Result Result
}

func (e ContactBeginEvent) Type() EventType { return CONTACT_BEGIN }

// ContactPersistEvent is emitted every following frame the pair stays in contact.
type ContactPersistEvent struct {
	PairID int
	Result Result
}

func (e ContactPersistEvent) Type() EventType { return CONTACT_PERSIST }

// ContactEndEvent is emitted the first frame a pair is no longer in contact.
type ContactEndEvent struct {
	PairID int
}

func (e ContactEndEvent) Type() EventType { return CONTACT_END }

// EventListener - callback for events
type EventListener func(event Event)

// Events turns the results of successive batch queries into contact
// begin/persist/end events, keyed by pair ID. A frame is everything recorded
// between two calls to Flush.
//
// Events is not safe for concurrent use: record from the goroutine draining
// NarrowPhase.
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	previousActivePairs map[int]bool
	currentActivePairs  map[int]Result
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[int]bool),
		currentActivePairs:  make(map[int]Result),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// Record registers the contacts of the current frame. Pairs whose status is
// not StatusContact are ignored.
func (e *Events) Record(contacts ...Contact) {
	for _, c := range contacts {
		if c.Result.Status == gjk.StatusContact {
			e.currentActivePairs[c.Pair.ID] = c.Result
		}
	}
}

// processContactEvents compares current and previous pairs to detect Begin/Persist/End
func (e *Events) processContactEvents() {
	for id, result := range e.currentActivePairs {
		if e.previousActivePairs[id] {
			e.buffer = append(e.buffer, ContactPersistEvent{PairID: id, Result: result})
		} else {
			e.buffer = append(e.buffer, ContactBeginEvent{PairID: id, Result: result})
		}
	}

	for id := range e.previousActivePairs {
		if _, active := e.currentActivePairs[id]; !active {
			e.buffer = append(e.buffer, ContactEndEvent{PairID: id})
		}
	}

	// Swap for next frame
	clear(e.previousActivePairs)
	for id := range e.currentActivePairs {
		e.previousActivePairs[id] = true
	}
	clear(e.currentActivePairs)
}

// Flush closes the frame and sends its events to the listeners.
func (e *Events) Flush() {
	e.processContactEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
