package heli

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Listener receives state changes synchronously, inside the tick.
type Listener func(StateChange)

type listenerEntry struct {
	id int
	fn Listener
}

// Notifier is a per-entity listener list. A panicking listener is logged
// and skipped; it never escapes Notify.
type Notifier struct {
	listeners []listenerEntry
	nextID    int
	log       zerolog.Logger
}

// NewNotifier creates an empty listener list.
func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{log: log}
}

// Subscribe registers fn and returns the function that removes it.
func (n *Notifier) Subscribe(fn Listener) (unsubscribe func()) {
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, listenerEntry{id: id, fn: fn})
	return func() { n.remove(id) }
}

func (n *Notifier) remove(id int) {
	for i, l := range n.listeners {
		if l.id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of listeners.
func (n *Notifier) Len() int { return len(n.listeners) }

// Notify delivers ev to a snapshot of the current listeners.
func (n *Notifier) Notify(ev StateChange) {
	snapshot := n.listeners
	for _, l := range snapshot {
		n.deliver(l, ev)
	}
}

func (n *Notifier) deliver(l listenerEntry, ev StateChange) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().
				Int("listener", l.id).
				Str("new", ev.New.String()).
				Str("previous", ev.Previous.String()).
				Err(fmt.Errorf("%v", r)).
				Msg("state listener panicked")
		}
	}()
	l.fn(ev)
}
