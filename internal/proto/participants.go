package proto

import (
	"encoding/json"
	"fmt"
)

// ParticipantInfo is the per-participant metadata exposed to peers.
// ConnectionID is the address to use as "to" in relays.
type ParticipantInfo struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId"`
}

// ParticipantEntry encodes as a two-element array: [participantId, info].
type ParticipantEntry struct {
	ID   string
	Info ParticipantInfo
}

func (p ParticipantEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.ID, p.Info})
}

func (p *ParticipantEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("participant entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.ID); err != nil {
		return fmt.Errorf("participant entry id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Info); err != nil {
		return fmt.Errorf("participant entry info: %w", err)
	}
	return nil
}
