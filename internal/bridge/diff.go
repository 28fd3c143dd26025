package bridge

import (
	"context"
	"slices"

	"github.com/tbourn/go-support-bridge/internal/observability"
	"github.com/tbourn/go-support-bridge/internal/transport"
)

// applyEdits diffs the pre-edit snapshot against the edited content
// field-by-field and issues only the transport edits for fields that
// actually changed. Unchanged fields are never re-sent.
func (d *Dispatcher) applyEdits(ctx context.Context, at transport.Address, msg transport.MessageID, old, edited transport.Content) error {
	if captionChanged(old, edited) {
		if err := d.Relay.EditCaption(ctx, at, msg, edited); err != nil {
			return err
		}
		observability.EditsTotal.WithLabelValues("caption").Inc()
	}
	if old.Text != edited.Text && edited.Text != "" {
		if err := d.Relay.EditText(ctx, at, msg, edited); err != nil {
			return err
		}
		observability.EditsTotal.WithLabelValues("text").Inc()
	}
	if locationChanged(old, edited) && edited.Location != nil {
		if err := d.Relay.EditLocation(ctx, at, msg, edited.Location.Latitude, edited.Location.Longitude); err != nil {
			return err
		}
		observability.EditsTotal.WithLabelValues("location").Inc()
	}
	return nil
}

func captionChanged(old, edited transport.Content) bool {
	return old.Caption != edited.Caption ||
		!slices.Equal(old.CaptionEntities, edited.CaptionEntities)
}

func locationChanged(old, edited transport.Content) bool {
	if (old.Location == nil) != (edited.Location == nil) {
		return true
	}
	if old.Location == nil {
		return false
	}
	return *old.Location != *edited.Location
}
