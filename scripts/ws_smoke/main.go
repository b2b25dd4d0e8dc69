package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/meetsignal/internal/log"
	"github.com/vovakirdan/meetsignal/internal/proto"
)

type outbound struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error,omitempty"`
}

type peer struct {
	name   string
	conn   *websocket.Conn
	connID string
}

func main() {
	logger := log.New("info", "console")
	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("ws_smoke failed")
		os.Exit(1)
	}
	logger.Info().Msg("ws_smoke passed")
}

// run joins two peers to one room and walks them through an offer/answer/candidate exchange.
func run(logger *zerolog.Logger) error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	room := flag.String("room", "smoke", "room id")
	token := flag.String("token", "", "bearer token, when the server requires one")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var opts *websocket.DialOptions
	if *token != "" {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+*token)
		opts = &websocket.DialOptions{HTTPHeader: header}
	}

	alice, err := dialPeer(ctx, *addr, opts, "alice")
	if err != nil {
		return err
	}
	defer alice.conn.Close(websocket.StatusNormalClosure, "bye")
	bob, err := dialPeer(ctx, *addr, opts, "bob")
	if err != nil {
		return err
	}
	defer bob.conn.Close(websocket.StatusNormalClosure, "bye")

	if _, err := alice.join(ctx, *room); err != nil {
		return err
	}
	users, err := bob.join(ctx, *room)
	if err != nil {
		return err
	}
	logger.Info().Int("participants", len(users.Participants)).Str("room_id", *room).Msg("both peers joined")

	if _, err := alice.expect(ctx, proto.OutboundTypeUserJoined); err != nil {
		return err
	}

	if err := bob.send(ctx, proto.InboundTypeOffer, proto.OfferData{
		To: alice.connID, From: bob.name, Offer: json.RawMessage(`{"type":"offer","sdp":"v=0"}`),
	}); err != nil {
		return err
	}
	if _, err := alice.expect(ctx, proto.OutboundTypeOffer); err != nil {
		return err
	}

	if err := alice.send(ctx, proto.InboundTypeAnswer, proto.AnswerData{
		To: bob.connID, From: alice.name, Answer: json.RawMessage(`{"type":"answer","sdp":"v=0"}`),
	}); err != nil {
		return err
	}
	if _, err := bob.expect(ctx, proto.OutboundTypeAnswer); err != nil {
		return err
	}

	if err := alice.send(ctx, proto.InboundTypeICECandidate, proto.ICECandidateData{
		To: bob.connID, Candidate: json.RawMessage(`{"candidate":"candidate:0 1 udp 1 127.0.0.1 9 typ host"}`),
	}); err != nil {
		return err
	}
	if _, err := bob.expect(ctx, proto.OutboundTypeICECandidate); err != nil {
		return err
	}
	logger.Info().Msg("offer, answer and candidate relayed")

	bob.conn.Close(websocket.StatusNormalClosure, "bye")
	if _, err := alice.expect(ctx, proto.OutboundTypeUserLeft); err != nil {
		return err
	}
	return nil
}

func dialPeer(ctx context.Context, addr string, opts *websocket.DialOptions, name string) (*peer, error) {
	conn, _, err := websocket.Dial(ctx, addr, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	return &peer{name: name, conn: conn}, nil
}

func (p *peer) send(ctx context.Context, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, p.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("%s send %s: %w", p.name, typ, err)
	}
	return nil
}

func (p *peer) expect(ctx context.Context, typ string) (outbound, error) {
	var out outbound
	if err := wsjson.Read(ctx, p.conn, &out); err != nil {
		return out, fmt.Errorf("%s read: %w", p.name, err)
	}
	if out.Type == proto.OutboundTypeError && out.Error != nil {
		return out, fmt.Errorf("%s got error %s: %s", p.name, out.Error.Code, out.Error.Msg)
	}
	if out.Type != typ {
		return out, fmt.Errorf("%s expected %s, got %s", p.name, typ, out.Type)
	}
	return out, nil
}

func (p *peer) join(ctx context.Context, room string) (proto.EventRoomUsers, error) {
	var users proto.EventRoomUsers
	if err := p.send(ctx, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room, UserID: p.name, Username: p.name}); err != nil {
		return users, err
	}
	out, err := p.expect(ctx, proto.OutboundTypeRoomUsers)
	if err != nil {
		if out.Type == proto.OutboundTypeRoomFull {
			return users, errors.New("room is full")
		}
		return users, err
	}
	if err := json.Unmarshal(out.Data, &users); err != nil {
		return users, fmt.Errorf("decode room-users: %w", err)
	}
	for _, e := range users.Participants {
		if e.ID == p.name {
			p.connID = e.Info.ConnectionID
		}
	}
	if p.connID == "" {
		return users, fmt.Errorf("%s missing from room-users", p.name)
	}
	return users, nil
}
