package core

import "encoding/json"

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandJoinRoom adds the sender to a room as a participant.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom removes a participant from a room.
	CommandLeaveRoom
	// CommandOffer relays a session offer to another connection.
	CommandOffer
	// CommandAnswer relays a session answer to another connection.
	CommandAnswer
	// CommandICECandidate relays a network path candidate to another connection.
	CommandICECandidate
	// CommandDisconnect is raised by the transport when the connection closes.
	CommandDisconnect
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinRoom:
		return "join-room"
	case CommandLeaveRoom:
		return "leave-room"
	case CommandOffer:
		return "offer"
	case CommandAnswer:
		return "answer"
	case CommandICECandidate:
		return "ice-candidate"
	case CommandDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a connection.
// Payload is forwarded verbatim by relays.
type Command struct {
	Kind          CommandKind
	RoomID        string
	ParticipantID string
	DisplayName   string
	To            string
	From          string
	Payload       json.RawMessage
}
