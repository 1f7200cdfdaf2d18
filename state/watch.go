package state

import "github.com/npillmayer/reactree/slab"

// Watcher identifies a party waiting for a value to change.
type Watcher int

// Watch arms a one-shot watcher for the value for key. The next change to the value
// (including dropping it) queues w, and the value has to be watched again to be
// notified of further changes. A previous watcher on the same value is replaced.
func (s *Store) Watch(key slab.Key, w Watcher) bool {
	c := s.values.GetMut(key)
	if c == nil {
		return false
	}
	c.watcher, c.watched = w, true
	s.watched.Add(key)
	return true
}

// Unwatch disarms a watcher for key without triggering it.
func (s *Store) Unwatch(key slab.Key) {
	if c := s.values.GetMut(key); c != nil {
		c.watched = false
	}
	s.watched.Remove(key)
}

// IsWatched is true if there is an armed watcher for key.
func (s *Store) IsWatched(key slab.Key) bool {
	return s.watched.Contains(key)
}

// DrainWatchers returns the watchers triggered since the last call, in the order
// they were triggered.
func (s *Store) DrainWatchers() []Watcher {
	triggered := s.watchQueue
	s.watchQueue = nil
	return triggered
}

func (s *Store) trigger(key slab.Key, c *cell) {
	if !c.watched {
		return
	}
	c.watched = false
	s.watched.Remove(key)
	s.watchQueue = append(s.watchQueue, c.watcher)
	tracer().Debugf("watcher %d triggered by %s", c.watcher, key)
}
