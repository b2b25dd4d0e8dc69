package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"

	"github.com/vovakirdan/meetsignal/internal/config"
)

// ICEServersResponse is returned by GET /api/ice-servers.
type ICEServersResponse struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// ICEHandlers hands STUN/TURN servers to clients before they build a peer connection.
type ICEHandlers struct {
	servers []webrtc.ICEServer
}

// NewICEHandlers converts the configured servers once.
func NewICEHandlers(servers []config.ICEServer) *ICEHandlers {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		srv := webrtc.ICEServer{
			URLs:     append([]string(nil), s.URLs...),
			Username: s.Username,
		}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return &ICEHandlers{servers: out}
}

// List returns the ICE servers.
// GET /api/ice-servers
func (h *ICEHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, ICEServersResponse{ICEServers: h.servers})
}
