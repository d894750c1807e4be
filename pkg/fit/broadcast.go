package fit

import (
	"sync"
	"sync/atomic"
)

// Handle identifies a registered listener. The zero Handle is never issued.
type Handle struct {
	id uint64
}

// Valid reports whether h was issued by a Broadcaster.
func (h Handle) Valid() bool { return h.id != 0 }

type listenerEntry[T any] struct {
	id       uint64
	listener T
	removed  atomic.Bool
}

// listenerList is copy-on-write: a broadcast iterates the slice it loaded,
// so registrations made during a broadcast take effect from the next one.
// Removal marks the entry so it is skipped even mid-broadcast.
type listenerList[T any] struct {
	entries []*listenerEntry[T]
}

func (l *listenerList[T]) add(id uint64, listener T) {
	next := make([]*listenerEntry[T], len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	l.entries = append(next, &listenerEntry[T]{id: id, listener: listener})
}

func (l *listenerList[T]) remove(id uint64) bool {
	for i, e := range l.entries {
		if e.id != id {
			continue
		}
		e.removed.Store(true)
		next := make([]*listenerEntry[T], 0, len(l.entries)-1)
		next = append(next, l.entries[:i]...)
		l.entries = append(next, l.entries[i+1:]...)
		return true
	}
	return false
}

func each[T any](entries []*listenerEntry[T], fn func(T)) {
	for _, e := range entries {
		if e.removed.Load() {
			continue
		}
		fn(e.listener)
	}
}

// Broadcaster routes messages, definitions and developer field
// descriptions to registered listeners in registration order. It is itself
// a listener of all three kinds, so broadcasters can be chained.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64

	mesgs       listenerList[MesgListener]
	definitions listenerList[MesgDefinitionListener]
	devFields   listenerList[DeveloperFieldDescriptionListener]
}

func (b *Broadcaster) issue() uint64 {
	b.nextID++
	return b.nextID
}

// AddMesgListener registers l for messages.
func (b *Broadcaster) AddMesgListener(l MesgListener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.issue()
	b.mesgs.add(id, l)
	return Handle{id: id}
}

// AddMesgDefinitionListener registers l for definition records.
func (b *Broadcaster) AddMesgDefinitionListener(l MesgDefinitionListener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.issue()
	b.definitions.add(id, l)
	return Handle{id: id}
}

// AddDeveloperFieldDescriptionListener registers l for developer field
// descriptions.
func (b *Broadcaster) AddDeveloperFieldDescriptionListener(l DeveloperFieldDescriptionListener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.issue()
	b.devFields.add(id, l)
	return Handle{id: id}
}

// RemoveListener unregisters the listener behind h. Removing an unknown or
// already removed handle is a no-op that returns false.
func (b *Broadcaster) RemoveListener(h Handle) bool {
	if !h.Valid() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mesgs.remove(h.id) || b.definitions.remove(h.id) || b.devFields.remove(h.id)
}

// OnMesg sends m to every message listener.
func (b *Broadcaster) OnMesg(m *Mesg) {
	b.mu.Lock()
	entries := b.mesgs.entries
	b.mu.Unlock()
	each(entries, func(l MesgListener) { l.OnMesg(m) })
}

// OnMesgDefinition sends d to every definition listener.
func (b *Broadcaster) OnMesgDefinition(d *MesgDefinition) {
	b.mu.Lock()
	entries := b.definitions.entries
	b.mu.Unlock()
	each(entries, func(l MesgDefinitionListener) { l.OnMesgDefinition(d) })
}

// OnDeveloperFieldDescription sends d to every developer field listener.
func (b *Broadcaster) OnDeveloperFieldDescription(d *DeveloperFieldDescription) {
	b.mu.Lock()
	entries := b.devFields.entries
	b.mu.Unlock()
	each(entries, func(l DeveloperFieldDescriptionListener) { l.OnDeveloperFieldDescription(d) })
}

// Compile-time interface satisfaction checks.
var (
	_ MesgListener                      = (*Broadcaster)(nil)
	_ MesgDefinitionListener            = (*Broadcaster)(nil)
	_ DeveloperFieldDescriptionListener = (*Broadcaster)(nil)
)
