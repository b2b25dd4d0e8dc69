package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom     = "join-room"
	InboundTypeLeaveRoom    = "leave-room"
	InboundTypeOffer        = "offer"
	InboundTypeAnswer       = "answer"
	InboundTypeICECandidate = "ice-candidate"

	OutboundTypeUserJoined   = "user-joined"
	OutboundTypeRoomUsers    = "room-users"
	OutboundTypeRoomFull     = "room-full"
	OutboundTypeUserLeft     = "user-left"
	OutboundTypeOffer        = "offer"
	OutboundTypeAnswer       = "answer"
	OutboundTypeICECandidate = "ice-candidate"
	OutboundTypeError        = "error"
)

// JoinRoomData requests membership in a room.
type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// LeaveRoomData requests removal from a room.
type LeaveRoomData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// OfferData carries a session offer addressed to a connection id.
type OfferData struct {
	To    string          `json:"to"`
	From  string          `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

// AnswerData carries a session answer addressed to a connection id.
type AnswerData struct {
	To     string          `json:"to"`
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

// ICECandidateData carries a candidate addressed to a connection id.
type ICECandidateData struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventUserJoined is sent to existing members when someone joins.
type EventUserJoined struct {
	UserID       string             `json:"userId"`
	Username     string             `json:"username"`
	Participants []ParticipantEntry `json:"participants"`
}

// EventRoomUsers is the snapshot sent to the joiner.
type EventRoomUsers struct {
	Participants []ParticipantEntry `json:"participants"`
}

// EventUserLeft notifies that a participant left.
type EventUserLeft struct {
	UserID string `json:"userId"`
}

// EventOffer is a relayed offer.
type EventOffer struct {
	From  string          `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

// EventAnswer is a relayed answer.
type EventAnswer struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

// EventICECandidate is a relayed candidate. It carries no sender.
type EventICECandidate struct {
	Candidate json.RawMessage `json:"candidate"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
