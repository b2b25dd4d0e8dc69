package core

import "encoding/json"

// EventKind is a notification the core emits to connections.
type EventKind int

const (
	// EventRoomUsers delivers the full participant list to a joiner.
	EventRoomUsers EventKind = iota
	// EventUserJoined notifies existing members about a new participant.
	EventUserJoined
	// EventUserLeft notifies remaining members that a participant left.
	EventUserLeft
	// EventRoomFull tells a joiner the room is at capacity.
	EventRoomFull
	// EventOffer carries a relayed session offer.
	EventOffer
	// EventAnswer carries a relayed session answer.
	EventAnswer
	// EventICECandidate carries a relayed candidate.
	EventICECandidate
	// EventError notifies a connection about a rejected command.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventRoomUsers:
		return "room-users"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	case EventRoomFull:
		return "room-full"
	case EventOffer:
		return "offer"
	case EventAnswer:
		return "answer"
	case EventICECandidate:
		return "ice-candidate"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to connections to describe what happened in the system.
type Event struct {
	Kind         EventKind
	RoomID       string
	UserID       string
	Username     string
	Participants []Participant // EventRoomUsers, EventUserJoined
	From         string        // EventOffer, EventAnswer
	Payload      json.RawMessage
	Error        *CoreError
}
