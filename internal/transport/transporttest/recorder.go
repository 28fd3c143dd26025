// Package transporttest provides an in-memory Relay double that records every
// outbound call and can be scripted to fail, so the relay core can be tested
// without a live transport.
package transporttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tbourn/go-support-bridge/internal/transport"
)

// Call is one recorded outbound operation. Op is the Relay method name;
// the remaining fields are populated per operation.
type Call struct {
	Op      string
	To      transport.Address
	Thread  transport.ThreadID
	Msg     transport.MessageID
	Content transport.Content
	Label   string
	Emoji   string
	Lat     float64
	Lon     float64
}

// Recorder implements transport.Relay. Message and thread ids are assigned
// from monotonically increasing counters; Fail maps an operation name to an
// error that every call of that operation returns.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	nextMsg transport.MessageID
	nextThr transport.ThreadID

	// Fail makes the named operation ("Send", "CreateThread", ...) fail.
	Fail map[string]error
}

// New returns an empty Recorder whose assigned ids start at 1000 (messages)
// and 100 (threads) so they are easy to tell apart from event ids in tests.
func New() *Recorder {
	return &Recorder{nextMsg: 1000, nextThr: 100, Fail: map[string]error{}}
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns the recorded calls for a single operation name.
func (r *Recorder) CallsTo(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail[c.Op]; err != nil {
		return err
	}
	r.calls = append(r.calls, c)
	return nil
}

// Send implements transport.Relay.
func (r *Recorder) Send(_ context.Context, to transport.Address, thread transport.ThreadID, content transport.Content) (transport.MessageID, error) {
	r.mu.Lock()
	if err := r.Fail["Send"]; err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.nextMsg++
	id := r.nextMsg
	r.calls = append(r.calls, Call{Op: "Send", To: to, Thread: thread, Msg: id, Content: content})
	r.mu.Unlock()
	return id, nil
}

// EditText implements transport.Relay.
func (r *Recorder) EditText(_ context.Context, at transport.Address, msg transport.MessageID, content transport.Content) error {
	return r.record(Call{Op: "EditText", To: at, Msg: msg, Content: content})
}

// EditCaption implements transport.Relay.
func (r *Recorder) EditCaption(_ context.Context, at transport.Address, msg transport.MessageID, content transport.Content) error {
	return r.record(Call{Op: "EditCaption", To: at, Msg: msg, Content: content})
}

// EditLocation implements transport.Relay.
func (r *Recorder) EditLocation(_ context.Context, at transport.Address, msg transport.MessageID, lat, lon float64) error {
	return r.record(Call{Op: "EditLocation", To: at, Msg: msg, Lat: lat, Lon: lon})
}

// CreateThread implements transport.Relay.
func (r *Recorder) CreateThread(_ context.Context, space transport.Address, label string) (transport.ThreadID, error) {
	r.mu.Lock()
	if err := r.Fail["CreateThread"]; err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.nextThr++
	id := r.nextThr
	r.calls = append(r.calls, Call{Op: "CreateThread", To: space, Thread: id, Label: label})
	r.mu.Unlock()
	return id, nil
}

// RenameThread implements transport.Relay.
func (r *Recorder) RenameThread(_ context.Context, space transport.Address, thread transport.ThreadID, label string) error {
	return r.record(Call{Op: "RenameThread", To: space, Thread: thread, Label: label})
}

// Pin implements transport.Relay.
func (r *Recorder) Pin(_ context.Context, at transport.Address, msg transport.MessageID) error {
	return r.record(Call{Op: "Pin", To: at, Msg: msg})
}

// React implements transport.Relay.
func (r *Recorder) React(_ context.Context, at transport.Address, msg transport.MessageID, emoji string) error {
	return r.record(Call{Op: "React", To: at, Msg: msg, Emoji: emoji})
}

// String summarizes the recorded operations, handy in test failure output.
func (r *Recorder) String() string {
	ops := ""
	for i, c := range r.Calls() {
		if i > 0 {
			ops += ", "
		}
		ops += c.Op
	}
	return fmt.Sprintf("[%s]", ops)
}

var _ transport.Relay = (*Recorder)(nil)
