package telemetry

// Event is one row of the run's tick-ordered event stream. Births carry
// parent and origin fields; deaths carry the lifespan instead.
type Event struct {
	Tick       int32  `csv:"tick"`
	Type       string `csv:"event"`
	CreatureID uint32 `csv:"creature_id"`
	Origin     string `csv:"origin"`
	ParentA    uint32 `csv:"parent_a"`
	ParentB    uint32 `csv:"parent_b"`
	Lifespan   int32  `csv:"lifespan"`
}

// Event type names as written to events.csv.
const (
	EventBirth = "birth"
	EventDeath = "death"
)

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int32, creatureID, parentA, parentB uint32, origin string) Event {
	return Event{
		Tick:       tick,
		Type:       EventBirth,
		CreatureID: creatureID,
		Origin:     origin,
		ParentA:    parentA,
		ParentB:    parentB,
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int32, creatureID uint32, lifespan int32) Event {
	return Event{
		Tick:       tick,
		Type:       EventDeath,
		CreatureID: creatureID,
		Lifespan:   lifespan,
	}
}

// EventLog buffers events between output flushes.
type EventLog struct {
	events []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{events: make([]Event, 0, 256)}
}

// Append adds an event to the buffer.
func (el *EventLog) Append(e Event) {
	el.events = append(el.events, e)
}

// Len returns the number of buffered events.
func (el *EventLog) Len() int {
	return len(el.events)
}

// Drain returns the buffered events and resets the buffer. The returned
// slice is owned by the caller.
func (el *EventLog) Drain() []Event {
	out := el.events
	el.events = make([]Event, 0, cap(out))
	return out
}
