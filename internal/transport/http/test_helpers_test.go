package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/meetsignal/internal/auth"
	"github.com/vovakirdan/meetsignal/internal/config"
	"github.com/vovakirdan/meetsignal/internal/core"
	"github.com/vovakirdan/meetsignal/internal/proto"
)

const testSecret = "test-secret"

// testEnv is a running server backed by a real hub.
type testEnv struct {
	hub *core.Hub
	cfg *config.Config
	ts  *httptest.Server
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.PingInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.Nop()
	hub := core.NewHub(core.HubConfig{RoomCapacity: cfg.RoomCapacity}, &disabledLogger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, &cfg, &disabledLogger, nil)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{hub: hub, cfg: &cfg, ts: ts}
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

func testToken(t *testing.T, userID, name string) string {
	t.Helper()
	token, err := auth.GenerateToken(&auth.JWTConfig{Secret: []byte(testSecret), TTL: time.Hour}, userID, name)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

type outbound struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error,omitempty"`
}

// expect reads the next message and fails unless it has the given type.
func expect(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, into any) outbound {
	t.Helper()
	var out outbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read %s: %v", typ, err)
	}
	if out.Type != typ {
		t.Fatalf("expected %s, got %s (data=%s error=%+v)", typ, out.Type, out.Data, out.Error)
	}
	if into != nil {
		if err := json.Unmarshal(out.Data, into); err != nil {
			t.Fatalf("decode %s data: %v", typ, err)
		}
	}
	return out
}

// joinRoom joins and returns the room-users snapshot.
func joinRoom(t *testing.T, ctx context.Context, conn *websocket.Conn, roomID, userID, name string) proto.EventRoomUsers {
	t.Helper()
	send(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: roomID, UserID: userID, Username: name})
	var users proto.EventRoomUsers
	expect(t, ctx, conn, proto.OutboundTypeRoomUsers, &users)
	return users
}

func connectionOf(t *testing.T, entries []proto.ParticipantEntry, userID string) string {
	t.Helper()
	for _, e := range entries {
		if e.ID == userID {
			return e.Info.ConnectionID
		}
	}
	t.Fatalf("participant %s not listed in %+v", userID, entries)
	return ""
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
