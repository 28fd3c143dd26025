package bridge

import (
	"context"
	"testing"

	"github.com/tbourn/go-support-bridge/internal/transport"
	"github.com/tbourn/go-support-bridge/internal/transport/transporttest"
)

func diffDispatcher() (*Dispatcher, *transporttest.Recorder) {
	relay := transporttest.New()
	return &Dispatcher{Relay: relay}, relay
}

func TestApplyEdits_TextOnly(t *testing.T) {
	d, relay := diffDispatcher()
	old := transport.Text("before")
	edited := transport.Text("after")

	if err := d.applyEdits(context.Background(), 1, 10, old, edited); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	if got := relay.Calls(); len(got) != 1 || got[0].Op != "EditText" {
		t.Fatalf("calls = %s", relay)
	}
}

func TestApplyEdits_NothingChanged(t *testing.T) {
	d, relay := diffDispatcher()
	c := transport.Text("same")

	if err := d.applyEdits(context.Background(), 1, 10, c, c); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	if got := relay.Calls(); len(got) != 0 {
		t.Fatalf("identical content issued edits: %s", relay)
	}
}

func TestApplyEdits_CaptionAndEntities(t *testing.T) {
	d, relay := diffDispatcher()
	old := transport.Content{Kind: transport.KindPhoto, FileID: "f", Caption: "cap"}
	edited := old
	edited.CaptionEntities = []transport.Entity{{Type: "bold", Offset: 0, Length: 3}}

	if err := d.applyEdits(context.Background(), 1, 10, old, edited); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	// Entity-only change still counts as a caption change.
	if got := relay.Calls(); len(got) != 1 || got[0].Op != "EditCaption" {
		t.Fatalf("calls = %s", relay)
	}
}

func TestApplyEdits_Location(t *testing.T) {
	d, relay := diffDispatcher()
	old := transport.Content{Kind: transport.KindLocation, Location: &transport.Location{Latitude: 1, Longitude: 2}}
	edited := transport.Content{Kind: transport.KindLocation, Location: &transport.Location{Latitude: 3, Longitude: 4}}

	if err := d.applyEdits(context.Background(), 1, 10, old, edited); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	calls := relay.CallsTo("EditLocation")
	if len(calls) != 1 || calls[0].Lat != 3 || calls[0].Lon != 4 {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestApplyEdits_LocationRemoved(t *testing.T) {
	d, relay := diffDispatcher()
	old := transport.Content{Kind: transport.KindLocation, Location: &transport.Location{Latitude: 1, Longitude: 2}}
	edited := transport.Content{Kind: transport.KindLocation}

	if err := d.applyEdits(context.Background(), 1, 10, old, edited); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	// A vanished location cannot be propagated; nothing is sent.
	if got := relay.Calls(); len(got) != 0 {
		t.Fatalf("calls = %s", relay)
	}
}

func TestApplyEdits_TextClearedNotPropagated(t *testing.T) {
	d, relay := diffDispatcher()

	if err := d.applyEdits(context.Background(), 1, 10, transport.Text("x"), transport.Text("")); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	if got := relay.Calls(); len(got) != 0 {
		t.Fatalf("empty replacement text issued an edit: %s", relay)
	}
}
