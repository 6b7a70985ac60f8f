package sim

const eventLogMaxEntries = 40

// EventKind colours entries in the HUD.
type EventKind int

const (
	EventState EventKind = iota
	EventHealth
	EventTaxi
	EventSystem
)

// EventEntry is a single line in the event log.
type EventEntry struct {
	Tick    int
	Kind    EventKind
	Message string
}

// EventLog is a ring buffer of recent events shown on screen.
type EventLog struct {
	entries []EventEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]EventEntry, eventLogMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(tick int, kind EventKind, msg string) {
	el.entries[el.head] = EventEntry{Tick: tick, Kind: kind, Message: msg}
	el.head = (el.head + 1) % eventLogMaxEntries
	if el.count < eventLogMaxEntries {
		el.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []EventEntry {
	result := make([]EventEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + eventLogMaxEntries) % eventLogMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Len is the number of stored entries.
func (el *EventLog) Len() int { return el.count }
