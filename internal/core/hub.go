package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HubConfig tunes the hub.
type HubConfig struct {
	RoomCapacity int
	// EmptyRoomTTL is how long a pre-allocated room may stay empty. Zero disables sweeping.
	EmptyRoomTTL  time.Duration
	SweepInterval time.Duration
	Observer      Observer
}

type handlerFunc func(h *Hub, connID string, cmd *Command)

// handlers is the single dispatch table for inbound commands.
var handlers = map[CommandKind]handlerFunc{
	CommandJoinRoom:     (*Hub).handleJoin,
	CommandLeaveRoom:    (*Hub).handleLeave,
	CommandOffer:        (*Hub).handleOffer,
	CommandAnswer:       (*Hub).handleAnswer,
	CommandICECandidate: (*Hub).handleICECandidate,
	CommandDisconnect:   (*Hub).handleDisconnect,
}

// Hub routes signaling commands between connections and keeps room membership.
type Hub struct {
	rooms    *RoomStore
	conns    *ConnectionRegistry
	observer Observer
	log      *zerolog.Logger

	emptyRoomTTL  time.Duration
	sweepInterval time.Duration
}

// NewHub creates a hub with its own room store and connection registry.
func NewHub(cfg HubConfig, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = time.Minute
	}
	return &Hub{
		rooms:         NewRoomStore(NewCapacityPolicy(cfg.RoomCapacity)),
		conns:         NewConnectionRegistry(),
		observer:      observer,
		log:           logger,
		emptyRoomTTL:  cfg.EmptyRoomTTL,
		sweepInterval: sweep,
	}
}

// Rooms exposes the room store.
func (h *Hub) Rooms() *RoomStore { return h.rooms }

// Connections exposes the connection registry.
func (h *Hub) Connections() *ConnectionRegistry { return h.conns }

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int { return h.rooms.Len() }

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int { return h.conns.Len() }

// Run sweeps stale empty rooms until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	if h.emptyRoomTTL <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(h.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := h.rooms.Sweep(now.Add(-h.emptyRoomTTL)); n > 0 {
				h.log.Info().Int("rooms", n).Msg("swept empty rooms")
			}
		}
	}
}

// Connect registers a transport endpoint under connID.
func (h *Hub) Connect(connID string, s Sender) {
	h.conns.Register(connID, s)
	h.log.Debug().Str("conn_id", connID).Msg("connection registered")
}

// Disconnect tears down the connection and its room membership.
func (h *Hub) Disconnect(connID string) {
	h.Dispatch(connID, &Command{Kind: CommandDisconnect})
}

// RegisterClient connects a channel-backed client.
func (h *Hub) RegisterClient(c *Client) {
	h.Connect(c.ID, c)
}

// UnregisterClient disconnects a channel-backed client.
func (h *Hub) UnregisterClient(c *Client) {
	h.Disconnect(c.ID)
}

// Dispatch handles one inbound command from connID. It never panics.
func (h *Hub) Dispatch(connID string, cmd *Command) {
	if cmd == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("conn_id", connID).Str("type", cmd.Kind.String()).Msg("command handler panicked")
		}
	}()

	handle, ok := handlers[cmd.Kind]
	if !ok {
		h.sendError(connID, coreError(ErrCodeUnknownEvent, "unknown event"))
		return
	}
	handle(h, connID, cmd)
	h.observer.CommandHandled(cmd.Kind)
}

// CreateRoom pre-allocates an empty room under a fresh id.
func (h *Hub) CreateRoom() string {
	for {
		id := uuid.NewString()
		if h.rooms.Create(id) {
			h.log.Info().Str("room_id", id).Msg("room created")
			return id
		}
	}
}

// RoomInfo returns a room's participants and whether it accepts joins.
func (h *Hub) RoomInfo(roomID string) (RoomInfo, error) {
	return h.rooms.Info(roomID)
}

func (h *Hub) handleJoin(connID string, cmd *Command) {
	if cmd.RoomID == "" || cmd.ParticipantID == "" {
		h.sendError(connID, coreError(ErrCodeBadRequest, "roomId and userId are required"))
		return
	}
	if !h.conns.Registered(connID) {
		return
	}

	// A connection holds at most one binding.
	if b, ok := h.conns.BindingOf(connID); ok && (b.RoomID != cmd.RoomID || b.ParticipantID != cmd.ParticipantID) {
		h.leave(b.RoomID, b.ParticipantID, connID)
	}

	joiner := Participant{
		ID:           cmd.ParticipantID,
		DisplayName:  cmd.DisplayName,
		ConnectionID: connID,
	}
	_, err := h.rooms.Join(cmd.RoomID, joiner, func(prev *Participant, members []Participant) {
		if prev != nil && prev.ConnectionID != connID {
			h.conns.UnbindIf(prev.ConnectionID, Binding{RoomID: cmd.RoomID, ParticipantID: prev.ID})
		}
		h.conns.Bind(connID, cmd.RoomID, joiner.ID)

		for _, m := range members {
			if m.ID == joiner.ID {
				continue
			}
			h.send(m.ConnectionID, &Event{
				Kind:         EventUserJoined,
				RoomID:       cmd.RoomID,
				UserID:       joiner.ID,
				Username:     joiner.DisplayName,
				Participants: members,
			})
		}
		h.send(connID, &Event{
			Kind:         EventRoomUsers,
			RoomID:       cmd.RoomID,
			Participants: members,
		})
	})
	if errors.Is(err, ErrRoomFull) {
		h.observer.JoinRejected()
		h.log.Info().Str("conn_id", connID).Str("room_id", cmd.RoomID).Str("user_id", joiner.ID).Msg("join rejected: room full")
		h.send(connID, &Event{Kind: EventRoomFull, RoomID: cmd.RoomID})
		return
	}
	h.log.Info().Str("conn_id", connID).Str("room_id", cmd.RoomID).Str("user_id", joiner.ID).Msg("joined room")
}

func (h *Hub) handleLeave(connID string, cmd *Command) {
	if cmd.RoomID == "" || cmd.ParticipantID == "" {
		h.sendError(connID, coreError(ErrCodeBadRequest, "roomId and userId are required"))
		return
	}
	h.leave(cmd.RoomID, cmd.ParticipantID, "")
	h.conns.UnbindIf(connID, Binding{RoomID: cmd.RoomID, ParticipantID: cmd.ParticipantID})
}

func (h *Hub) handleDisconnect(connID string, _ *Command) {
	b, bound := h.conns.Unregister(connID)
	h.log.Debug().Str("conn_id", connID).Msg("connection unregistered")
	if bound {
		h.leave(b.RoomID, b.ParticipantID, connID)
	}
}

// leave removes a participant and notifies the rest of the room. A non-empty
// connID restricts removal to the participant still represented by it.
func (h *Hub) leave(roomID, participantID, connID string) bool {
	removed := h.rooms.Leave(roomID, participantID, connID, func(p Participant, remaining []Participant) {
		h.conns.UnbindIf(p.ConnectionID, Binding{RoomID: roomID, ParticipantID: p.ID})
		for _, m := range remaining {
			h.send(m.ConnectionID, &Event{Kind: EventUserLeft, RoomID: roomID, UserID: p.ID})
		}
	})
	if removed {
		h.log.Info().Str("room_id", roomID).Str("user_id", participantID).Msg("left room")
	}
	return removed
}

func (h *Hub) handleOffer(connID string, cmd *Command) {
	h.relay(connID, cmd, &Event{Kind: EventOffer, From: cmd.From, Payload: cmd.Payload})
}

func (h *Hub) handleAnswer(connID string, cmd *Command) {
	h.relay(connID, cmd, &Event{Kind: EventAnswer, From: cmd.From, Payload: cmd.Payload})
}

// The candidate relay carries no sender identity; receivers correlate it themselves.
func (h *Hub) handleICECandidate(connID string, cmd *Command) {
	h.relay(connID, cmd, &Event{Kind: EventICECandidate, Payload: cmd.Payload})
}

func (h *Hub) relay(connID string, cmd *Command, ev *Event) {
	if cmd.To == "" {
		h.sendError(connID, coreError(ErrCodeBadRequest, "to is required"))
		return
	}
	if !h.send(cmd.To, ev) {
		h.log.Debug().Str("conn_id", connID).Str("to", cmd.To).Str("type", ev.Kind.String()).Msg("relay target unreachable")
	}
}

func (h *Hub) send(connID string, ev *Event) bool {
	if h.conns.Send(connID, ev) {
		return true
	}
	h.observer.EventDropped(ev.Kind)
	return false
}

func (h *Hub) sendError(connID string, err *CoreError) {
	h.send(connID, &Event{Kind: EventError, Error: err})
}
