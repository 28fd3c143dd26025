// Package bridge implements the relay dispatcher, the event-driven core of
// the support bridge. The dispatcher is stateless between events: every
// inbound event is classified by origin side and kind, resolved against
// storage, forwarded through the transport, correlated, and forgotten.
// All durable state lives behind the repo package.
//
// Error policy: any storage or transport failure is terminal for the current
// event only. The event is logged and dropped; the dispatcher itself never
// fails and other in-flight events are unaffected.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-support-bridge/internal/domain"
	"github.com/tbourn/go-support-bridge/internal/i18n"
	"github.com/tbourn/go-support-bridge/internal/observability"
	"github.com/tbourn/go-support-bridge/internal/repo"
	"github.com/tbourn/go-support-bridge/internal/services"
	"github.com/tbourn/go-support-bridge/internal/transport"
)

// Dispatcher routes inbound transport events through the relay core.
type Dispatcher struct {
	// Users resolves identities and staff threads to user rows.
	Users *services.UserService
	// Cards renders and refreshes the per-user info card.
	Cards *services.InfoCardService
	// Links records and resolves message correlations.
	Links *services.LinkService
	// Notes implements the staff note commands.
	Notes *services.NoteService
	// Relay is the outbound transport surface.
	Relay transport.Relay
	// Bundle localizes user-facing replies.
	Bundle *i18n.Bundle
	// Space is the shared staff space.
	Space transport.Address
	// VoiceEnabled forwards voice messages when true; when false they
	// are rejected with a localized notice like polls and games.
	VoiceEnabled bool
	// AckReaction is the emoji set on a staff message once its forward
	// succeeded. Empty disables the acknowledgment.
	AckReaction string
	// Log is the dispatcher's base logger.
	Log zerolog.Logger

	locks keyedMutex
}

// Handle processes one inbound event to completion. The returned error is
// informational: the event is already logged and dropped by the time Handle
// returns, and callers must not retry.
func (d *Dispatcher) Handle(ctx context.Context, ev transport.Event) error {
	lg := d.Log.With().
		Str("event_id", uuid.NewString()).
		Int64("origin", int64(ev.Origin)).
		Int64("message", int64(ev.Message)).
		Str("kind", ev.Content.Kind.String()).
		Bool("edited", ev.Edited).
		Logger()

	var err error
	switch {
	case ev.Private:
		observability.EventsTotal.WithLabelValues("user", ev.Content.Kind.String()).Inc()
		unlock := d.locks.lock(fmt.Sprintf("user/%d", ev.Origin))
		defer unlock()

		if cmd, ok := parseUserCommand(ev.Content); ok {
			if ev.Edited {
				return nil // edited commands are ignored
			}
			err = d.handleUserCommand(ctx, ev, cmd)
		} else if ev.Edited {
			err = d.handleUserEdit(ctx, lg, ev)
		} else {
			err = d.handleUserMessage(ctx, lg, ev)
		}

	case ev.Origin == d.Space:
		observability.EventsTotal.WithLabelValues("staff", ev.Content.Kind.String()).Inc()
		unlock := d.locks.lock(fmt.Sprintf("thread/%d", ev.Thread))
		defer unlock()

		if cmd, ok := parseStaffCommand(ev.Content); ok {
			if ev.Edited {
				return nil
			}
			err = d.handleStaffCommand(ctx, lg, ev, cmd)
		} else if ev.Edited {
			err = d.handleStaffEdit(ctx, lg, ev)
		} else {
			err = d.handleStaffMessage(ctx, lg, ev)
		}

	default:
		// Not a private conversation and not the staff space.
		lg.Debug().Msg("event from unrelated origin; ignoring")
		return nil
	}

	if err != nil {
		observability.DropsTotal.WithLabelValues("error").Inc()
		lg.Error().Err(err).Msg("event processing failed; event dropped")
	}
	return err
}

// rejection returns the notice key for content the bridge refuses by policy.
func (d *Dispatcher) rejection(c transport.Content) (i18n.Key, bool) {
	switch c.Kind {
	case transport.KindPoll:
		return i18n.PollsNotSupported, true
	case transport.KindGame:
		return i18n.GamesNotSupported, true
	case transport.KindVoice:
		if !d.VoiceEnabled {
			return i18n.VoiceNotSupported, true
		}
	}
	return i18n.Key{}, false
}

// handleUserMessage implements transition (1): a new message from the user
// side is forwarded into the user's dedicated staff thread.
func (d *Dispatcher) handleUserMessage(ctx context.Context, lg zerolog.Logger, ev transport.Event) error {
	u, err := d.Users.Resolve(ctx, int64(ev.Origin), ev.From)
	if err != nil {
		return err
	}
	if u.InfoMessageID == nil {
		if err := d.Cards.Refresh(ctx, u); err != nil {
			return err
		}
	}

	if key, rejected := d.rejection(ev.Content); rejected {
		observability.RejectsTotal.WithLabelValues(ev.Content.Kind.String()).Inc()
		_, err := d.Relay.Send(ctx, ev.Origin, 0, transport.Text(d.Bundle.Localize(ev.From.Locale, key, nil)))
		return err
	}
	if reason, drop := undeliverable(ev.Content); drop {
		observability.DropsTotal.WithLabelValues(reason).Inc()
		lg.Debug().Str("reason", reason).Msg("event dropped")
		return nil
	}

	fwd, err := d.Relay.Send(ctx, d.Space, transport.ThreadID(u.ThreadID), ev.Content)
	if err != nil {
		return err
	}
	if _, err := d.Links.Record(ctx, u, domain.Incoming, ev.Message, ev.Content, fwd); err != nil {
		return err
	}
	observability.ForwardsTotal.WithLabelValues(domain.Incoming.String()).Inc()

	_, err = d.Relay.Send(ctx, ev.Origin, 0, transport.Text(d.Bundle.Localize(ev.From.Locale, i18n.ReplySent, nil)))
	return err
}

// handleStaffMessage implements transition (2): a new message inside a
// dedicated thread is forwarded to the thread's owning user. Messages
// outside any recognized thread are dropped silently.
func (d *Dispatcher) handleStaffMessage(ctx context.Context, lg zerolog.Logger, ev transport.Event) error {
	u, ok, err := d.threadOwner(ctx, lg, ev)
	if err != nil || !ok {
		return err
	}

	if key, rejected := d.rejection(ev.Content); rejected {
		observability.RejectsTotal.WithLabelValues(ev.Content.Kind.String()).Inc()
		_, err := d.Relay.Send(ctx, d.Space, ev.Thread, transport.Text(d.Bundle.Localize("", key, nil)))
		return err
	}
	if reason, drop := undeliverable(ev.Content); drop {
		observability.DropsTotal.WithLabelValues(reason).Inc()
		lg.Debug().Str("reason", reason).Msg("event dropped")
		return nil
	}

	fwd, err := d.Relay.Send(ctx, transport.Address(u.ExternalID), 0, ev.Content)
	if err != nil {
		return err
	}
	if _, err := d.Links.Record(ctx, u, domain.Outgoing, ev.Message, ev.Content, fwd); err != nil {
		return err
	}
	observability.ForwardsTotal.WithLabelValues(domain.Outgoing.String()).Inc()

	if d.AckReaction != "" {
		return d.Relay.React(ctx, d.Space, ev.Message, d.AckReaction)
	}
	return nil
}

// handleUserEdit implements transition (3): an edit from the user side is
// diffed against the stored snapshot and propagated minimally. An edit to a
// message the bridge never saw is treated as new content.
func (d *Dispatcher) handleUserEdit(ctx context.Context, lg zerolog.Logger, ev transport.Event) error {
	u, err := d.Users.Lookup(ctx, int64(ev.Origin))
	if errors.Is(err, repo.ErrNotFound) {
		lg.Debug().Msg("edit from unknown identity; ignoring")
		return nil
	}
	if err != nil {
		return err
	}

	link, err := d.Links.Find(ctx, u, domain.Incoming, ev.Message)
	if errors.Is(err, repo.ErrNotFound) {
		return d.handleUserMessage(ctx, lg, ev)
	}
	if err != nil {
		return err
	}
	old, err := d.Links.Snapshot(link)
	if err != nil {
		return err
	}
	return d.applyEdits(ctx, d.Space, transport.MessageID(link.ForwardID), old, ev.Content)
}

// handleStaffEdit implements transition (4), symmetric to (3) for edits made
// inside a dedicated thread.
func (d *Dispatcher) handleStaffEdit(ctx context.Context, lg zerolog.Logger, ev transport.Event) error {
	u, ok, err := d.threadOwner(ctx, lg, ev)
	if err != nil || !ok {
		return err
	}

	link, err := d.Links.Find(ctx, u, domain.Outgoing, ev.Message)
	if errors.Is(err, repo.ErrNotFound) {
		return d.handleStaffMessage(ctx, lg, ev)
	}
	if err != nil {
		return err
	}
	old, err := d.Links.Snapshot(link)
	if err != nil {
		return err
	}
	return d.applyEdits(ctx, transport.Address(u.ExternalID), transport.MessageID(link.ForwardID), old, ev.Content)
}

// handleUserCommand serves the private-conversation command surface.
func (d *Dispatcher) handleUserCommand(ctx context.Context, ev transport.Event, cmd command) error {
	var text string
	switch cmd.name {
	case "help":
		text = userHelpText
	case "start":
		text = d.Bundle.Localize(ev.From.Locale, i18n.Welcome, nil)
	case "faq":
		text = d.Bundle.Localize(ev.From.Locale, i18n.Faq, nil)
	}
	_, err := d.Relay.Send(ctx, ev.Origin, 0, transport.Text(text))
	return err
}

// handleStaffCommand serves the staff command surface, scoped to dedicated
// threads. Commands outside a recognized thread are ignored.
func (d *Dispatcher) handleStaffCommand(ctx context.Context, lg zerolog.Logger, ev transport.Event, cmd command) error {
	u, ok, err := d.threadOwner(ctx, lg, ev)
	if err != nil || !ok {
		return err
	}

	switch cmd.name {
	case "setnote":
		if _, err := d.Notes.Save(ctx, u, cmd.key, cmd.value); err != nil {
			return err
		}
		if err := d.Cards.Refresh(ctx, u); err != nil {
			return err
		}
		_, err := d.Relay.Send(ctx, d.Space, ev.Thread, transport.HTML(d.Bundle.Localize("", i18n.NoteSaved, nil)))
		return err

	case "delnote":
		if err := d.Notes.Delete(ctx, u, cmd.key); err != nil {
			return err
		}
		if err := d.Cards.Refresh(ctx, u); err != nil {
			return err
		}
		_, err := d.Relay.Send(ctx, d.Space, ev.Thread, transport.HTML(d.Bundle.Localize("", i18n.NoteDeleted, nil)))
		return err

	case "notes":
		notes, err := d.Notes.List(ctx, u)
		if err != nil {
			return err
		}
		text := d.Bundle.Localize("", i18n.NotesHeader, nil) + "\n"
		for _, n := range notes {
			text += fmt.Sprintf("\n<b>%s:</b> <code>%s</code>", i18n.Sanitize(n.Key), i18n.Sanitize(n.Value))
		}
		_, err = d.Relay.Send(ctx, d.Space, ev.Thread, transport.HTML(text))
		return err
	}
	return nil
}

// threadOwner resolves the user owning the thread a staff event arrived in.
// ok is false when the event should be dropped silently: no thread at all,
// or a thread the bridge did not provision.
func (d *Dispatcher) threadOwner(ctx context.Context, lg zerolog.Logger, ev transport.Event) (u *domain.User, ok bool, err error) {
	if ev.Thread == 0 {
		lg.Debug().Msg("staff event outside any thread; ignoring")
		return nil, false, nil
	}
	u, err = d.Users.ResolveThread(ctx, ev.Thread)
	if errors.Is(err, services.ErrUnknownThread) {
		observability.DropsTotal.WithLabelValues("unknown_thread").Inc()
		lg.Debug().Int64("thread", int64(ev.Thread)).Msg("staff event in unrecognized thread; ignoring")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// undeliverable reports content that is silently dropped: kinds the
// transport gave us no way to reproduce, and photos without a single size
// variant. These drops happen before any storage write.
func undeliverable(c transport.Content) (string, bool) {
	if c.Kind == transport.KindUnknown {
		return "unknown_kind", true
	}
	if c.Kind == transport.KindPhoto {
		if _, ok := c.BestPhoto(); !ok {
			return "no_photo", true
		}
	}
	return "", false
}
