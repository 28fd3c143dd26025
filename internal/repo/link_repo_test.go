package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-support-bridge/internal/domain"
)

func TestCreateLink_AndFind(t *testing.T) {
	db := newTestDB(t, &domain.User{}, &domain.MessageLink{})
	ctx := context.Background()

	u := &domain.User{ExternalID: 1, ThreadID: 10}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	l := &domain.MessageLink{
		UserID:     u.ID,
		Direction:  domain.Incoming,
		OriginalID: 333,
		Snapshot:   []byte(`{"kind":1,"text":"hello"}`),
		ForwardID:  901,
	}
	if err := CreateLink(ctx, db, l); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	got, err := FindLink(ctx, db, u.ID, domain.Incoming, 333)
	if err != nil {
		t.Fatalf("FindLink: %v", err)
	}
	if got.ForwardID != 901 || string(got.Snapshot) != `{"kind":1,"text":"hello"}` {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Same original id, other direction: distinct key, no hit.
	if _, err := FindLink(ctx, db, u.ID, domain.Outgoing, 333); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other direction, got %v", err)
	}
	if _, err := FindLink(ctx, db, u.ID, domain.Incoming, 334); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unseen original id, got %v", err)
	}
}

func TestCreateLink_DuplicateOriginalRejected(t *testing.T) {
	db := newTestDB(t, &domain.User{}, &domain.MessageLink{})
	ctx := context.Background()

	u := &domain.User{ExternalID: 1, ThreadID: 10}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	first := &domain.MessageLink{UserID: u.ID, Direction: domain.Incoming, OriginalID: 5, Snapshot: []byte("{}"), ForwardID: 1}
	if err := CreateLink(ctx, db, first); err != nil {
		t.Fatalf("first CreateLink: %v", err)
	}
	dup := &domain.MessageLink{UserID: u.ID, Direction: domain.Incoming, OriginalID: 5, Snapshot: []byte("{}"), ForwardID: 2}
	if err := CreateLink(ctx, db, dup); err == nil {
		t.Fatal("expected unique violation for duplicate (user, direction, original)")
	}

	// The outgoing direction is still free.
	out := &domain.MessageLink{UserID: u.ID, Direction: domain.Outgoing, OriginalID: 5, Snapshot: []byte("{}"), ForwardID: 3}
	if err := CreateLink(ctx, db, out); err != nil {
		t.Fatalf("outgoing CreateLink: %v", err)
	}
}
