package http

import (
	"encoding/json"
	"testing"

	"github.com/vovakirdan/meetsignal/internal/core"
	"github.com/vovakirdan/meetsignal/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	cases := []struct {
		name    string
		inbound proto.Inbound
		kind    core.CommandKind
		code    string
	}{
		{"join", proto.Inbound{Type: "join-room", Data: json.RawMessage(`{"roomId":"R","userId":"u1","username":"alice"}`)}, core.CommandJoinRoom, ""},
		{"join without user", proto.Inbound{Type: "join-room", Data: json.RawMessage(`{"roomId":"R"}`)}, 0, core.ErrCodeBadRequest},
		{"join with bad data", proto.Inbound{Type: "join-room", Data: json.RawMessage(`[1]`)}, 0, core.ErrCodeBadRequest},
		{"leave", proto.Inbound{Type: "leave-room", Data: json.RawMessage(`{"roomId":"R","userId":"u1"}`)}, core.CommandLeaveRoom, ""},
		{"offer", proto.Inbound{Type: "offer", Data: json.RawMessage(`{"to":"c2","from":"u1","offer":{"sdp":"x"}}`)}, core.CommandOffer, ""},
		{"answer without to", proto.Inbound{Type: "answer", Data: json.RawMessage(`{"answer":{}}`)}, 0, core.ErrCodeBadRequest},
		{"candidate", proto.Inbound{Type: "ice-candidate", Data: json.RawMessage(`{"to":"c2","candidate":{"candidate":"x"}}`)}, core.CommandICECandidate, ""},
		{"unknown", proto.Inbound{Type: "chat"}, 0, core.ErrCodeUnknownEvent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, perr := inboundToCommand(tc.inbound)
			if tc.code != "" {
				if perr == nil || perr.Code != tc.code {
					t.Fatalf("expected error %s, got cmd=%+v err=%+v", tc.code, cmd, perr)
				}
				return
			}
			if perr != nil {
				t.Fatalf("unexpected error: %+v", perr)
			}
			if cmd.Kind != tc.kind {
				t.Fatalf("expected %s, got %s", tc.kind, cmd.Kind)
			}
		})
	}
}

func TestJoinCommandFields(t *testing.T) {
	cmd, perr := inboundToCommand(proto.Inbound{
		Type: "join-room",
		Data: json.RawMessage(`{"roomId":"R","userId":"u1","username":"alice"}`),
	})
	if perr != nil {
		t.Fatalf("unexpected error: %+v", perr)
	}
	if cmd.RoomID != "R" || cmd.ParticipantID != "u1" || cmd.DisplayName != "alice" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestOutboundEmptyParticipants(t *testing.T) {
	out := outboundFromEvent(&core.Event{Kind: core.EventRoomUsers})
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"room-users","data":{"participants":[]}}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
}

func TestOutboundError(t *testing.T) {
	out := outboundFromEvent(&core.Event{Kind: core.EventError, Error: core.NewError(core.ErrCodeBadRequest, "to is required")})
	if out.Type != proto.OutboundTypeError || out.Error == nil || out.Error.Code != core.ErrCodeBadRequest || out.Error.Msg != "to is required" {
		t.Fatalf("unexpected error outbound: %+v", out)
	}
}
