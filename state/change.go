package state

import (
	"fmt"

	"github.com/npillmayer/reactree/slab"
)

// Subscriber denotes a binding of a widget which reads a value: Key is the widget's key
// in the widget tree, Binding identifies the attribute or binding of that widget.
type Subscriber struct {
	Key     slab.Key
	Binding int
}

func (sub Subscriber) String() string {
	return fmt.Sprintf("<sub %s | %d>", sub.Key, sub.Binding)
}

// ChangeKind is the type of a change to a value.
type ChangeKind uint8

const (
	Changed  ChangeKind = iota // value was replaced
	Inserted                   // element was inserted into a list
	Removed                    // element was removed from a list
	Dropped                    // value is gone
)

func (k ChangeKind) String() string {
	switch k {
	case Changed:
		return "Changed"
	case Inserted:
		return "Inserted"
	case Removed:
		return "Removed"
	case Dropped:
		return "Dropped"
	}
	return fmt.Sprintf("ChangeKind(%d)", uint8(k))
}

// Change describes a change to a value. For Inserted and Removed, Index is the list
// index of the element. For Inserted, Element is the key of the element inserted,
// which is not necessarily the element at Index by the time the change is processed.
type Change struct {
	Kind    ChangeKind
	Index   int
	Element slab.Key
}

// InsertedAt creates an Inserted change.
func InsertedAt(index int, element slab.Key) Change {
	return Change{Kind: Inserted, Index: index, Element: element}
}

// RemovedAt creates a Removed change.
func RemovedAt(index int) Change {
	return Change{Kind: Removed, Index: index, Element: slab.NilKey}
}

// ChangedValue and DroppedValue are changes without an index.
var (
	ChangedValue = Change{Kind: Changed, Element: slab.NilKey}
	DroppedValue = Change{Kind: Dropped, Element: slab.NilKey}
)

func (c Change) String() string {
	switch c.Kind {
	case Inserted:
		return fmt.Sprintf("Inserted(%d, %s)", c.Index, c.Element)
	case Removed:
		return fmt.Sprintf("Removed(%d)", c.Index)
	}
	return c.Kind.String()
}

// Record is a queued change: the subscribers of a value at the time of the change,
// together with the change itself and the key of the value which changed.
type Record struct {
	Subscribers []Subscriber
	Change      Change
	Source      slab.Key
}

func (r Record) String() string {
	return fmt.Sprintf("%s on %s for %v", r.Change, r.Source, r.Subscribers)
}

// --- Subscriptions ---------------------------------------------------------

// Subscribe registers sub as a reader of the value for key. Subscribing twice is
// a no-op. It returns false if key is stale.
func (s *Store) Subscribe(key slab.Key, sub Subscriber) bool {
	c := s.values.GetMut(key)
	if c == nil {
		tracer().Debugf("subscribe %s to stale value %s", sub, key)
		return false
	}
	for _, existing := range c.subs {
		if existing == sub {
			return true
		}
	}
	c.subs = append(c.subs, sub)
	return true
}

// Unsubscribe removes sub from the subscribers of the value for key.
func (s *Store) Unsubscribe(key slab.Key, sub Subscriber) {
	c := s.values.GetMut(key)
	if c == nil {
		return
	}
	for i, existing := range c.subs {
		if existing == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns a copy of the subscribers of the value for key.
func (s *Store) Subscribers(key slab.Key) []Subscriber {
	c := s.values.GetMut(key)
	if c == nil || len(c.subs) == 0 {
		return nil
	}
	return append([]Subscriber(nil), c.subs...)
}

// ClearSubscribers removes all subscribers from all values, keeping the values intact.
func (s *Store) ClearSubscribers() {
	s.values.Each(func(_ slab.Key, c *cell) bool {
		c.subs = nil
		return true
	})
}

// Notify records a change to the value for key. If the value has no subscribers, no
// record is queued. A watcher on the value is triggered in either case.
func (s *Store) Notify(key slab.Key, change Change) {
	c := s.values.GetMut(key)
	if c == nil {
		tracer().Debugf("notify %s for stale value %s", change, key)
		return
	}
	s.trigger(key, c)
	if len(c.subs) == 0 {
		return
	}
	s.changes = append(s.changes, Record{
		Subscribers: append([]Subscriber(nil), c.subs...),
		Change:      change,
		Source:      key,
	})
	tracer().Debugf("queued %s", s.changes[len(s.changes)-1])
}

// Pending returns the number of queued change records.
func (s *Store) Pending() int {
	return len(s.changes)
}

// Drain returns all queued change records in the order they were queued, and empties
// the queue. Records queued while the caller processes the result are not included,
// so callers drain repeatedly until Pending is zero.
func (s *Store) Drain() []Record {
	records := s.changes
	s.changes = nil
	return records
}

// Clear drops all queued change records and watcher triggers.
func (s *Store) Clear() {
	s.changes = nil
	s.watchQueue = nil
}
