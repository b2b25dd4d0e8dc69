package core

import (
	"sync"
	"time"
)

// Room groups the participants currently in the same call.
// All fields below mu are guarded by it.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	order        []string
	participants map[string]Participant
	// closed is set once the room has been removed from the store; a join that
	// acquired the lock afterwards must retry against a fresh room.
	closed bool
}

// NewRoom constructs a room with no participants.
func NewRoom(id string, now time.Time) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    now,
		participants: make(map[string]Participant),
	}
}

// put inserts or overwrites a participant. An overwritten participant keeps its position.
func (r *Room) put(p Participant) (Participant, bool) {
	prev, exists := r.participants[p.ID]
	if !exists {
		r.order = append(r.order, p.ID)
	}
	r.participants[p.ID] = p
	return prev, exists
}

// remove deletes a participant. Returns the removed record and true if it was present.
func (r *Room) remove(id string) (Participant, bool) {
	p, exists := r.participants[id]
	if !exists {
		return Participant{}, false
	}
	delete(r.participants, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

func (r *Room) size() int {
	return len(r.participants)
}

func (r *Room) snapshot() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id])
	}
	return out
}
