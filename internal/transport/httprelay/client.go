// Package httprelay binds transport.Relay to a Bot-API-compatible JSON
// gateway. Each Relay call maps to one POST of a JSON payload to
// <base>/bot<token>/<method>, with the gateway answering the usual
// {"ok":true,"result":...} envelope. Outbound calls share a client-side
// rate limiter so bursts of forwards do not trip the gateway's flood
// control.
package httprelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tbourn/go-support-bridge/internal/transport"
)

// threadIconColor is the accent color assigned to every provisioned thread.
const threadIconColor = 16766590

// APIError is a request the gateway accepted but refused.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s (code %d)", e.Description, e.Code)
}

// Client implements transport.Relay over HTTP.
type Client struct {
	base    string
	token   string
	httpc   *http.Client
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithRateLimit caps outbound calls at rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient builds a Client for the gateway at base authenticating with
// token. Defaults: 30s request timeout, 25 calls/s with a burst of 5.
func NewClient(base, token string, opts ...Option) *Client {
	c := &Client{
		base:    base,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type messageResult struct {
	MessageID int64 `json:"message_id"`
}

type threadResult struct {
	ThreadID int64 `json:"message_thread_id"`
}

// call posts one gateway method and decodes its result into out when out is
// non-nil.
func (c *Client) call(ctx context.Context, method string, payload map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !env.OK {
		return &APIError{Code: env.ErrorCode, Description: env.Description}
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// Send implements transport.Relay. The gateway method is selected by the
// content kind; kinds the gateway cannot reproduce are an error here because
// the dispatcher filters them before forwarding.
func (c *Client) Send(ctx context.Context, to transport.Address, thread transport.ThreadID, content transport.Content) (transport.MessageID, error) {
	p := map[string]any{"chat_id": int64(to)}
	if thread != 0 {
		p["message_thread_id"] = int64(thread)
	}

	var method string
	switch content.Kind {
	case transport.KindText:
		method = "sendMessage"
		p["text"] = content.Text
		if content.Mode != "" {
			p["parse_mode"] = content.Mode
		} else if len(content.Entities) > 0 {
			p["entities"] = content.Entities
		}

	case transport.KindPhoto:
		best, ok := content.BestPhoto()
		if !ok {
			return 0, fmt.Errorf("photo content without size variants")
		}
		method = "sendPhoto"
		p["photo"] = best.FileID
		addCaption(p, content)
		if content.Spoiler {
			p["has_spoiler"] = true
		}

	case transport.KindDocument:
		method = "sendDocument"
		p["document"] = content.FileID
		addCaption(p, content)

	case transport.KindAudio:
		method = "sendAudio"
		p["audio"] = content.FileID
		addCaption(p, content)

	case transport.KindVideo:
		method = "sendVideo"
		p["video"] = content.FileID
		addCaption(p, content)
		if content.Spoiler {
			p["has_spoiler"] = true
		}

	case transport.KindVideoNote:
		method = "sendVideoNote"
		id := content.FileID
		if content.VideoNote != nil {
			id = content.VideoNote.FileID
		}
		p["video_note"] = id

	case transport.KindVoice:
		method = "sendVoice"
		p["voice"] = content.FileID
		addCaption(p, content)

	case transport.KindAnimation:
		method = "sendAnimation"
		p["animation"] = content.FileID
		addCaption(p, content)
		if content.Spoiler {
			p["has_spoiler"] = true
		}

	case transport.KindSticker:
		method = "sendSticker"
		p["sticker"] = content.FileID

	case transport.KindContact:
		if content.Contact == nil {
			return 0, fmt.Errorf("contact content without contact")
		}
		method = "sendContact"
		p["phone_number"] = content.Contact.PhoneNumber
		p["first_name"] = content.Contact.FirstName
		if content.Contact.LastName != "" {
			p["last_name"] = content.Contact.LastName
		}
		if content.Contact.VCard != "" {
			p["vcard"] = content.Contact.VCard
		}

	case transport.KindLocation:
		if content.Location == nil {
			return 0, fmt.Errorf("location content without location")
		}
		method = "sendLocation"
		l := content.Location
		p["latitude"] = l.Latitude
		p["longitude"] = l.Longitude
		if l.HorizontalAccuracy != 0 {
			p["horizontal_accuracy"] = l.HorizontalAccuracy
		}
		if l.LivePeriod != 0 {
			p["live_period"] = l.LivePeriod
		}
		if l.Heading != 0 {
			p["heading"] = l.Heading
		}
		if l.ProximityAlertRadius != 0 {
			p["proximity_alert_radius"] = l.ProximityAlertRadius
		}

	case transport.KindVenue:
		if content.Venue == nil {
			return 0, fmt.Errorf("venue content without venue")
		}
		method = "sendVenue"
		v := content.Venue
		p["latitude"] = v.Location.Latitude
		p["longitude"] = v.Location.Longitude
		p["title"] = v.Title
		p["address"] = v.Address
		if v.FoursquareID != "" {
			p["foursquare_id"] = v.FoursquareID
		}
		if v.GooglePlaceID != "" {
			p["google_place_id"] = v.GooglePlaceID
		}

	default:
		return 0, fmt.Errorf("content kind %q is not sendable", content.Kind)
	}

	var res messageResult
	if err := c.call(ctx, method, p, &res); err != nil {
		return 0, err
	}
	return transport.MessageID(res.MessageID), nil
}

func addCaption(p map[string]any, content transport.Content) {
	if content.Caption == "" && len(content.CaptionEntities) == 0 {
		return
	}
	p["caption"] = content.Caption
	if content.Mode != "" {
		p["parse_mode"] = content.Mode
	} else if len(content.CaptionEntities) > 0 {
		p["caption_entities"] = content.CaptionEntities
	}
}

// EditText implements transport.Relay.
func (c *Client) EditText(ctx context.Context, at transport.Address, msg transport.MessageID, content transport.Content) error {
	p := map[string]any{
		"chat_id":    int64(at),
		"message_id": int64(msg),
		"text":       content.Text,
	}
	if content.Mode != "" {
		p["parse_mode"] = content.Mode
	} else if len(content.Entities) > 0 {
		p["entities"] = content.Entities
	}
	return c.call(ctx, "editMessageText", p, nil)
}

// EditCaption implements transport.Relay.
func (c *Client) EditCaption(ctx context.Context, at transport.Address, msg transport.MessageID, content transport.Content) error {
	p := map[string]any{
		"chat_id":    int64(at),
		"message_id": int64(msg),
		"caption":    content.Caption,
	}
	if len(content.CaptionEntities) > 0 {
		p["caption_entities"] = content.CaptionEntities
	}
	return c.call(ctx, "editMessageCaption", p, nil)
}

// EditLocation implements transport.Relay.
func (c *Client) EditLocation(ctx context.Context, at transport.Address, msg transport.MessageID, lat, lon float64) error {
	p := map[string]any{
		"chat_id":    int64(at),
		"message_id": int64(msg),
		"latitude":   lat,
		"longitude":  lon,
	}
	return c.call(ctx, "editMessageLiveLocation", p, nil)
}

// CreateThread implements transport.Relay.
func (c *Client) CreateThread(ctx context.Context, space transport.Address, label string) (transport.ThreadID, error) {
	p := map[string]any{
		"chat_id":    int64(space),
		"name":       label,
		"icon_color": threadIconColor,
	}
	var res threadResult
	if err := c.call(ctx, "createForumTopic", p, &res); err != nil {
		return 0, err
	}
	return transport.ThreadID(res.ThreadID), nil
}

// RenameThread implements transport.Relay.
func (c *Client) RenameThread(ctx context.Context, space transport.Address, thread transport.ThreadID, label string) error {
	p := map[string]any{
		"chat_id":           int64(space),
		"message_thread_id": int64(thread),
		"name":              label,
	}
	return c.call(ctx, "editForumTopic", p, nil)
}

// Pin implements transport.Relay. The pin is silent: members are not
// notified about the info card.
func (c *Client) Pin(ctx context.Context, at transport.Address, msg transport.MessageID) error {
	p := map[string]any{
		"chat_id":              int64(at),
		"message_id":           int64(msg),
		"disable_notification": true,
	}
	return c.call(ctx, "pinChatMessage", p, nil)
}

// React implements transport.Relay.
func (c *Client) React(ctx context.Context, at transport.Address, msg transport.MessageID, emoji string) error {
	p := map[string]any{
		"chat_id":    int64(at),
		"message_id": int64(msg),
		"reaction":   []map[string]any{{"type": "emoji", "emoji": emoji}},
	}
	return c.call(ctx, "setMessageReaction", p, nil)
}

var _ transport.Relay = (*Client)(nil)
