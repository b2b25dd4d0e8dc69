package http

import (
	"encoding/json"

	"github.com/vovakirdan/meetsignal/internal/core"
	"github.com/vovakirdan/meetsignal/internal/proto"
)

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

// inboundToCommand decodes one inbound envelope. Malformed input yields a
// protocol error for the sender; it never ends the connection.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, badRequest("invalid join-room payload")
		}
		if join.RoomID == "" || join.UserID == "" {
			return nil, badRequest("roomId and userId are required")
		}
		return &core.Command{
			Kind:          core.CommandJoinRoom,
			RoomID:        join.RoomID,
			ParticipantID: join.UserID,
			DisplayName:   join.Username,
		}, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.LeaveRoomData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, badRequest("invalid leave-room payload")
		}
		if leave.RoomID == "" || leave.UserID == "" {
			return nil, badRequest("roomId and userId are required")
		}
		return &core.Command{
			Kind:          core.CommandLeaveRoom,
			RoomID:        leave.RoomID,
			ParticipantID: leave.UserID,
		}, nil
	case proto.InboundTypeOffer:
		var offer proto.OfferData
		if err := json.Unmarshal(inbound.Data, &offer); err != nil {
			return nil, badRequest("invalid offer payload")
		}
		if offer.To == "" {
			return nil, badRequest("to is required")
		}
		return &core.Command{Kind: core.CommandOffer, To: offer.To, From: offer.From, Payload: offer.Offer}, nil
	case proto.InboundTypeAnswer:
		var answer proto.AnswerData
		if err := json.Unmarshal(inbound.Data, &answer); err != nil {
			return nil, badRequest("invalid answer payload")
		}
		if answer.To == "" {
			return nil, badRequest("to is required")
		}
		return &core.Command{Kind: core.CommandAnswer, To: answer.To, From: answer.From, Payload: answer.Answer}, nil
	case proto.InboundTypeICECandidate:
		var cand proto.ICECandidateData
		if err := json.Unmarshal(inbound.Data, &cand); err != nil {
			return nil, badRequest("invalid ice-candidate payload")
		}
		if cand.To == "" {
			return nil, badRequest("to is required")
		}
		return &core.Command{Kind: core.CommandICECandidate, To: cand.To, Payload: cand.Candidate}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeUnknownEvent, Msg: "unknown message type"}
	}
}

func participantEntries(ps []core.Participant) []proto.ParticipantEntry {
	out := make([]proto.ParticipantEntry, 0, len(ps))
	for _, p := range ps {
		out = append(out, proto.ParticipantEntry{
			ID:   p.ID,
			Info: proto.ParticipantInfo{Username: p.DisplayName, ConnectionID: p.ConnectionID},
		})
	}
	return out
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.EventUserJoined{
				UserID:       event.UserID,
				Username:     event.Username,
				Participants: participantEntries(event.Participants),
			},
		}
	case core.EventRoomUsers:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomUsers,
			Data: proto.EventRoomUsers{Participants: participantEntries(event.Participants)},
		}
	case core.EventRoomFull:
		return proto.Outbound{Type: proto.OutboundTypeRoomFull}
	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.EventUserLeft{UserID: event.UserID},
		}
	case core.EventOffer:
		return proto.Outbound{
			Type: proto.OutboundTypeOffer,
			Data: proto.EventOffer{From: event.From, Offer: event.Payload},
		}
	case core.EventAnswer:
		return proto.Outbound{
			Type: proto.OutboundTypeAnswer,
			Data: proto.EventAnswer{From: event.From, Answer: event.Payload},
		}
	case core.EventICECandidate:
		return proto.Outbound{
			Type: proto.OutboundTypeICECandidate,
			Data: proto.EventICECandidate{Candidate: event.Payload},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}
