package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/meetsignal/internal/core"
	"github.com/vovakirdan/meetsignal/internal/proto"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// CreateRoomResponse is returned by POST /api/rooms.
type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

// RoomInfoResponse is returned by GET /api/rooms/:roomId.
type RoomInfoResponse struct {
	Participants []proto.ParticipantEntry `json:"participants"`
	Available    bool                     `json:"available"`
}

// CreateRoom pre-allocates an empty room.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	roomID := h.hub.CreateRoom()
	h.log.Debug().Str("room_id", roomID).Str("user_id", c.GetString(ContextKeyUserID)).Msg("room requested over http")
	c.JSON(http.StatusOK, CreateRoomResponse{RoomID: roomID})
}

// GetRoom reports the participants of a room and whether it can take another one.
// GET /api/rooms/:roomId
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID := c.Param("roomId")
	info, err := h.hub.RoomInfo(roomID)
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to read room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, RoomInfoResponse{
		Participants: participantEntries(info.Participants),
		Available:    info.Available,
	})
}
