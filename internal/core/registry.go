package core

import "sync"

// Sender is a live transport endpoint that can be handed an event.
// Send must not block; it reports whether the event was queued.
type Sender interface {
	Send(ev *Event) bool
}

type connEntry struct {
	sender  Sender
	binding Binding
	bound   bool
}

// ConnectionRegistry maps connection ids to senders and keeps the reverse
// index connection -> (room, participant) used for disconnect cleanup.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]*connEntry
}

// NewConnectionRegistry returns an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[string]*connEntry)}
}

// Register records a new connection, replacing any previous entry with the same id.
func (r *ConnectionRegistry) Register(connID string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = &connEntry{sender: s}
}

// Unregister removes the connection and returns its binding, if any.
func (r *ConnectionRegistry) Unregister(connID string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[connID]
	if !ok {
		return Binding{}, false
	}
	delete(r.conns, connID)
	return e.binding, e.bound
}

// Registered reports whether the connection is live.
func (r *ConnectionRegistry) Registered(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[connID]
	return ok
}

// Bind sets the connection's room binding. Returns false if the connection is gone.
func (r *ConnectionRegistry) Bind(connID, roomID, participantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[connID]
	if !ok {
		return false
	}
	e.binding = Binding{RoomID: roomID, ParticipantID: participantID}
	e.bound = true
	return true
}

// Unbind clears the connection's room binding.
func (r *ConnectionRegistry) Unbind(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[connID]; ok {
		e.binding = Binding{}
		e.bound = false
	}
}

// UnbindIf clears the binding only if it still equals b.
func (r *ConnectionRegistry) UnbindIf(connID string, b Binding) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[connID]
	if !ok || !e.bound || e.binding != b {
		return false
	}
	e.binding = Binding{}
	e.bound = false
	return true
}

// BindingOf returns the connection's current binding.
func (r *ConnectionRegistry) BindingOf(connID string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[connID]
	if !ok || !e.bound {
		return Binding{}, false
	}
	return e.binding, true
}

// Send delivers ev to the connection if it is still registered.
// A missing connection or a full buffer drops the event silently.
func (r *ConnectionRegistry) Send(connID string, ev *Event) bool {
	r.mu.RLock()
	e, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return e.sender.Send(ev)
}

// Len returns the number of live connections.
func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
