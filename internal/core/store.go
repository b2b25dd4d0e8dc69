package core

import (
	"sync"
	"time"
)

// JoinCommit runs while the room lock is held, right after a successful insert.
// prev is the record that was overwritten, or nil.
type JoinCommit func(prev *Participant, members []Participant)

// LeaveCommit runs while the room lock is held, right after a removal.
type LeaveCommit func(removed Participant, remaining []Participant)

// RoomInfo is a consistent view of a room for the control plane.
type RoomInfo struct {
	Participants []Participant
	Available    bool
}

// RoomStore owns all rooms of the process. Membership changes of one room are
// serialized by that room's lock; different rooms proceed in parallel.
//
// Lock order is room.mu before s.mu. s.mu is never held while waiting on a room.
type RoomStore struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	policy CapacityPolicy
	now    func() time.Time
}

// NewRoomStore creates an empty store enforcing the given policy.
func NewRoomStore(policy CapacityPolicy) *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*Room),
		policy: policy,
		now:    time.Now,
	}
}

// Policy returns the capacity policy in force.
func (s *RoomStore) Policy() CapacityPolicy {
	return s.policy
}

// Create pre-allocates an empty room. Returns false if the id is taken.
func (s *RoomStore) Create(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[roomID]; exists {
		return false
	}
	s.rooms[roomID] = NewRoom(roomID, s.now())
	return true
}

func (s *RoomStore) getOrCreate(roomID string) *Room {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return room
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok = s.rooms[roomID]; !ok {
		room = NewRoom(roomID, s.now())
		s.rooms[roomID] = room
	}
	return room
}

func (s *RoomStore) get(roomID string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[roomID]
}

// dropLocked removes a room from the map. The caller holds room.mu.
func (s *RoomStore) dropLocked(room *Room) {
	room.closed = true
	s.mu.Lock()
	if s.rooms[room.ID] == room {
		delete(s.rooms, room.ID)
	}
	s.mu.Unlock()
}

// Join inserts or overwrites p in the room, creating the room if needed.
// The capacity check uses the size before insertion. On success the returned
// list includes p.
func (s *RoomStore) Join(roomID string, p Participant, commit JoinCommit) ([]Participant, error) {
	for {
		room := s.getOrCreate(roomID)
		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}
		if !s.policy.Admits(room.size()) {
			room.mu.Unlock()
			return nil, ErrRoomFull
		}

		prev, overwritten := room.put(p)
		members := room.snapshot()
		if commit != nil {
			var prevPtr *Participant
			if overwritten {
				prevPtr = &prev
			}
			commit(prevPtr, members)
		}
		room.mu.Unlock()
		return members, nil
	}
}

// Leave removes participantID from the room and deletes the room once empty.
// If connectionID is non-empty the entry is removed only while that connection
// still represents the participant. Leaving an absent participant is a no-op.
func (s *RoomStore) Leave(roomID, participantID, connectionID string, commit LeaveCommit) bool {
	room := s.get(roomID)
	if room == nil {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return false
	}
	current, ok := room.participants[participantID]
	if !ok || (connectionID != "" && current.ConnectionID != connectionID) {
		return false
	}

	removed, _ := room.remove(participantID)
	remaining := room.snapshot()
	if len(remaining) == 0 {
		s.dropLocked(room)
	}
	if commit != nil {
		commit(removed, remaining)
	}
	return true
}

// Snapshot returns the current participants of a room.
func (s *RoomStore) Snapshot(roomID string) ([]Participant, error) {
	room := s.get(roomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil, ErrRoomNotFound
	}
	return room.snapshot(), nil
}

// Info returns participants and availability under a single lock.
func (s *RoomStore) Info(roomID string) (RoomInfo, error) {
	room := s.get(roomID)
	if room == nil {
		return RoomInfo{}, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return RoomInfo{}, ErrRoomNotFound
	}
	return RoomInfo{
		Participants: room.snapshot(),
		Available:    s.policy.Admits(room.size()),
	}, nil
}

// Exists reports whether the room is present.
func (s *RoomStore) Exists(roomID string) bool {
	room := s.get(roomID)
	if room == nil {
		return false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return !room.closed
}

// IsAvailable reports whether a join would pass the capacity check right now.
// A missing room is available since a join creates it.
func (s *RoomStore) IsAvailable(roomID string) bool {
	room := s.get(roomID)
	if room == nil {
		return true
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.closed || s.policy.Admits(room.size())
}

// Sweep deletes empty rooms created before cutoff and returns how many were removed.
func (s *RoomStore) Sweep(cutoff time.Time) int {
	s.mu.RLock()
	candidates := make([]*Room, 0)
	for _, room := range s.rooms {
		if room.CreatedAt.Before(cutoff) {
			candidates = append(candidates, room)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, room := range candidates {
		room.mu.Lock()
		if !room.closed && room.size() == 0 {
			s.dropLocked(room)
			removed++
		}
		room.mu.Unlock()
	}
	return removed
}

// Len returns the number of rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
