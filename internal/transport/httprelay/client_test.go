package httprelay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbourn/go-support-bridge/internal/transport"
)

type captured struct {
	path    string
	payload map[string]any
}

// newGateway fakes the JSON gateway: it records every request and answers
// with the provided result object.
func newGateway(t *testing.T, result any) (*Client, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("gateway got undecodable body: %v", err)
		}
		calls = append(calls, captured{path: r.URL.Path, payload: p})
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "TOKEN", WithHTTPClient(srv.Client())), &calls
}

func TestSendText(t *testing.T) {
	c, calls := newGateway(t, map[string]any{"message_id": 77})

	id, err := c.Send(context.Background(), 42, 0, transport.Text("hello"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != 77 {
		t.Fatalf("message id = %d", id)
	}
	got := (*calls)[0]
	if got.path != "/botTOKEN/sendMessage" {
		t.Fatalf("path = %q", got.path)
	}
	if got.payload["chat_id"] != float64(42) || got.payload["text"] != "hello" {
		t.Fatalf("payload = %v", got.payload)
	}
	if _, present := got.payload["message_thread_id"]; present {
		t.Fatal("thread id sent for a threadless message")
	}
}

func TestSendHTMLIntoThread(t *testing.T) {
	c, calls := newGateway(t, map[string]any{"message_id": 1})

	if _, err := c.Send(context.Background(), -100, 7, transport.HTML("<b>x</b>")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	p := (*calls)[0].payload
	if p["message_thread_id"] != float64(7) || p["parse_mode"] != "html" {
		t.Fatalf("payload = %v", p)
	}
}

func TestSendPhoto_PicksLargestVariant(t *testing.T) {
	c, calls := newGateway(t, map[string]any{"message_id": 1})

	content := transport.Content{
		Kind:    transport.KindPhoto,
		Caption: "cap",
		Photos: []transport.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 960},
			{FileID: "mid", Width: 320, Height: 320},
		},
	}
	if _, err := c.Send(context.Background(), 42, 7, content); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := (*calls)[0]
	if got.path != "/botTOKEN/sendPhoto" {
		t.Fatalf("path = %q", got.path)
	}
	if got.payload["photo"] != "large" || got.payload["caption"] != "cap" {
		t.Fatalf("payload = %v", got.payload)
	}
}

func TestSendMediaKinds(t *testing.T) {
	cases := []struct {
		content transport.Content
		method  string
		field   string
	}{
		{transport.Content{Kind: transport.KindDocument, FileID: "f"}, "sendDocument", "document"},
		{transport.Content{Kind: transport.KindAudio, FileID: "f"}, "sendAudio", "audio"},
		{transport.Content{Kind: transport.KindVideo, FileID: "f"}, "sendVideo", "video"},
		{transport.Content{Kind: transport.KindVoice, FileID: "f"}, "sendVoice", "voice"},
		{transport.Content{Kind: transport.KindAnimation, FileID: "f"}, "sendAnimation", "animation"},
		{transport.Content{Kind: transport.KindSticker, FileID: "f"}, "sendSticker", "sticker"},
		{transport.Content{Kind: transport.KindVideoNote, VideoNote: &transport.VideoNote{FileID: "f"}}, "sendVideoNote", "video_note"},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			c, calls := newGateway(t, map[string]any{"message_id": 1})
			if _, err := c.Send(context.Background(), 42, 0, tc.content); err != nil {
				t.Fatalf("Send: %v", err)
			}
			got := (*calls)[0]
			if got.path != "/botTOKEN/"+tc.method {
				t.Fatalf("path = %q", got.path)
			}
			if got.payload[tc.field] != "f" {
				t.Fatalf("payload = %v", got.payload)
			}
		})
	}
}

func TestSendContactAndVenue(t *testing.T) {
	c, calls := newGateway(t, map[string]any{"message_id": 1})

	contact := transport.Content{Kind: transport.KindContact, Contact: &transport.Contact{
		PhoneNumber: "+123", FirstName: "Ada",
	}}
	if _, err := c.Send(context.Background(), 42, 0, contact); err != nil {
		t.Fatalf("contact: %v", err)
	}

	venue := transport.Content{Kind: transport.KindVenue, Venue: &transport.Venue{
		Location: transport.Location{Latitude: 1, Longitude: 2},
		Title:    "HQ", Address: "Main St 1",
	}}
	if _, err := c.Send(context.Background(), 42, 0, venue); err != nil {
		t.Fatalf("venue: %v", err)
	}

	if p := (*calls)[0].payload; p["phone_number"] != "+123" || p["first_name"] != "Ada" {
		t.Fatalf("contact payload = %v", p)
	}
	if p := (*calls)[1].payload; p["title"] != "HQ" || p["latitude"] != float64(1) {
		t.Fatalf("venue payload = %v", p)
	}
}

func TestSendUnsupportedKind(t *testing.T) {
	c, calls := newGateway(t, nil)
	if _, err := c.Send(context.Background(), 42, 0, transport.Content{Kind: transport.KindPoll}); err == nil {
		t.Fatal("expected error for unsendable kind")
	}
	if len(*calls) != 0 {
		t.Fatal("unsendable kind reached the gateway")
	}
}

func TestCreateThread(t *testing.T) {
	c, calls := newGateway(t, map[string]any{"message_thread_id": 512})

	id, err := c.CreateThread(context.Background(), -100, "#T00001 Ada")
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if id != 512 {
		t.Fatalf("thread id = %d", id)
	}
	got := (*calls)[0]
	if got.path != "/botTOKEN/createForumTopic" {
		t.Fatalf("path = %q", got.path)
	}
	if got.payload["name"] != "#T00001 Ada" || got.payload["icon_color"] != float64(threadIconColor) {
		t.Fatalf("payload = %v", got.payload)
	}
}

func TestEditsAndPinAndReact(t *testing.T) {
	c, calls := newGateway(t, map[string]any{})
	ctx := context.Background()

	if err := c.EditText(ctx, 42, 9, transport.Text("new")); err != nil {
		t.Fatalf("EditText: %v", err)
	}
	if err := c.EditCaption(ctx, 42, 9, transport.Content{Caption: "c"}); err != nil {
		t.Fatalf("EditCaption: %v", err)
	}
	if err := c.EditLocation(ctx, 42, 9, 1.5, 2.5); err != nil {
		t.Fatalf("EditLocation: %v", err)
	}
	if err := c.Pin(ctx, -100, 9); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := c.React(ctx, -100, 9, "⚡"); err != nil {
		t.Fatalf("React: %v", err)
	}

	paths := []string{
		"/botTOKEN/editMessageText",
		"/botTOKEN/editMessageCaption",
		"/botTOKEN/editMessageLiveLocation",
		"/botTOKEN/pinChatMessage",
		"/botTOKEN/setMessageReaction",
	}
	for i, want := range paths {
		if (*calls)[i].path != want {
			t.Fatalf("call %d path = %q, want %q", i, (*calls)[i].path, want)
		}
	}
	if p := (*calls)[3].payload; p["disable_notification"] != true {
		t.Fatalf("pin payload = %v", p)
	}
	reaction := (*calls)[4].payload["reaction"].([]any)[0].(map[string]any)
	if reaction["emoji"] != "⚡" || reaction["type"] != "emoji" {
		t.Fatalf("reaction payload = %v", reaction)
	}
}

func TestGatewayRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "error_code": 403, "description": "bot was blocked by the user",
		})
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "TOKEN", WithHTTPClient(srv.Client()))

	_, err := c.Send(context.Background(), 42, 0, transport.Text("x"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != 403 {
		t.Fatalf("code = %d", apiErr.Code)
	}
}

func TestRateLimitHonorsContext(t *testing.T) {
	c := NewClient("http://unreachable.invalid", "TOKEN", WithRateLimit(0.001, 1))
	// Exhaust the burst allowance.
	c.limiter.AllowN(time.Now(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Send(ctx, 42, 0, transport.Text("x")); err == nil {
		t.Fatal("expected context error while waiting for the limiter")
	}
}
