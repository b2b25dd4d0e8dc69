package core

import (
	"sync"
	"testing"
	"time"
)

// recorder is a Sender that keeps every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recorder) Send(ev *Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

func (r *recorder) ofKind(kind EventKind) []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(HubConfig{}, nil)
}

func connect(h *Hub, connID string) *recorder {
	rec := &recorder{}
	h.Connect(connID, rec)
	return rec
}

func join(h *Hub, connID, roomID, userID, name string) {
	h.Dispatch(connID, &Command{
		Kind:          CommandJoinRoom,
		RoomID:        roomID,
		ParticipantID: userID,
		DisplayName:   name,
	})
}

func participantIDs(ps []Participant) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}
