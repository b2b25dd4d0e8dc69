package core

// Participant is one user's presence inside a room.
type Participant struct {
	ID           string
	DisplayName  string
	ConnectionID string
}

// Binding ties a connection to the participant it represents.
type Binding struct {
	RoomID        string
	ParticipantID string
}
