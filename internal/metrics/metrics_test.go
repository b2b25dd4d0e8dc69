package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vovakirdan/meetsignal/internal/core"
)

func TestMetricsFollowHub(t *testing.T) {
	m := New()
	hub := core.NewHub(core.HubConfig{RoomCapacity: 1, Observer: m}, nil)
	m.Track(hub)

	hub.Connect("c1", core.NewClient("c1", 4))
	hub.Connect("c2", core.NewClient("c2", 4))
	hub.Dispatch("c1", &core.Command{Kind: core.CommandJoinRoom, RoomID: "R", ParticipantID: "u1"})
	hub.Dispatch("c2", &core.Command{Kind: core.CommandJoinRoom, RoomID: "R", ParticipantID: "u2"})
	hub.Dispatch("c1", &core.Command{Kind: core.CommandOffer, To: "gone"})

	if got := testutil.ToFloat64(m.commands.WithLabelValues("join-room")); got != 2 {
		t.Fatalf("expected 2 join commands, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejected); got != 1 {
		t.Fatalf("expected 1 rejected join, got %v", got)
	}
	if got := testutil.ToFloat64(m.dropped.WithLabelValues("offer")); got != 1 {
		t.Fatalf("expected 1 dropped offer, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"meetsignal_rooms 1", "meetsignal_connections 2"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
