package core

import "testing"

func TestRegistryBindAndUnregister(t *testing.T) {
	r := NewConnectionRegistry()
	rec := &recorder{}
	r.Register("c1", rec)

	if _, ok := r.BindingOf("c1"); ok {
		t.Fatalf("fresh connection must be unbound")
	}
	if !r.Bind("c1", "R", "u1") {
		t.Fatalf("bind must succeed for a live connection")
	}
	if b, ok := r.BindingOf("c1"); !ok || b != (Binding{RoomID: "R", ParticipantID: "u1"}) {
		t.Fatalf("unexpected binding: %+v %v", b, ok)
	}

	b, ok := r.Unregister("c1")
	if !ok || b.RoomID != "R" || b.ParticipantID != "u1" {
		t.Fatalf("unregister must return the binding, got %+v %v", b, ok)
	}
	if r.Bind("c1", "R", "u1") {
		t.Fatalf("bind must fail for a removed connection")
	}
	if _, ok := r.Unregister("c1"); ok {
		t.Fatalf("second unregister must report no binding")
	}
}

func TestRegistrySendToMissingIsSilent(t *testing.T) {
	r := NewConnectionRegistry()
	if r.Send("ghost", &Event{Kind: EventOffer}) {
		t.Fatalf("send to missing connection must report no delivery")
	}

	rec := &recorder{}
	r.Register("c1", rec)
	if !r.Send("c1", &Event{Kind: EventOffer}) {
		t.Fatalf("send to live connection must be delivered")
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 event, got %d", rec.count())
	}
}

func TestRegistryUnbindIf(t *testing.T) {
	r := NewConnectionRegistry()
	r.Register("c1", &recorder{})
	r.Bind("c1", "R", "u1")

	if r.UnbindIf("c1", Binding{RoomID: "R", ParticipantID: "other"}) {
		t.Fatalf("mismatched binding must not be cleared")
	}
	if !r.UnbindIf("c1", Binding{RoomID: "R", ParticipantID: "u1"}) {
		t.Fatalf("matching binding must be cleared")
	}
	if _, ok := r.BindingOf("c1"); ok {
		t.Fatalf("binding must be gone")
	}

	r.Bind("c1", "R2", "u2")
	r.Unbind("c1")
	if _, ok := r.BindingOf("c1"); ok {
		t.Fatalf("unbind must clear the binding")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Len())
	}
}

func TestClientSendDropsWhenFull(t *testing.T) {
	c := NewClient("c1", 1)
	if !c.Send(&Event{Kind: EventOffer}) {
		t.Fatalf("first send must fit the buffer")
	}
	if c.Send(&Event{Kind: EventAnswer}) {
		t.Fatalf("second send must be dropped")
	}
}
