package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-support-bridge/internal/bridge"
	"github.com/tbourn/go-support-bridge/internal/domain"
	"github.com/tbourn/go-support-bridge/internal/i18n"
	"github.com/tbourn/go-support-bridge/internal/services"
	"github.com/tbourn/go-support-bridge/internal/transport"
	"github.com/tbourn/go-support-bridge/internal/transport/transporttest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandler(t *testing.T, secret string) (*EventsHandler, *transporttest.Recorder) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "hook.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.User{}, &domain.MessageLink{}, &domain.Note{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	relay := transporttest.New()
	space := transport.Address(-100)
	bundle := i18n.NewBundle()
	d := &bridge.Dispatcher{
		Users:        &services.UserService{DB: db, Relay: relay, Space: space},
		Cards:        &services.InfoCardService{DB: db, Relay: relay, Space: space, Bundle: bundle},
		Links:        &services.LinkService{DB: db},
		Notes:        &services.NoteService{DB: db},
		Relay:        relay,
		Bundle:       bundle,
		Space:        space,
		VoiceEnabled: true,
		Log:          zerolog.Nop(),
	}
	return &EventsHandler{Dispatcher: d, Secret: secret}, relay
}

func postEvent(t *testing.T, h *EventsHandler, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/hook/events", h.Post)

	req := httptest.NewRequest(http.MethodPost, "/hook/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPost_DeliversEventToDispatcher(t *testing.T) {
	h, relay := newHandler(t, "")

	ev := transport.Event{
		Origin:  42,
		Private: true,
		Message: 7,
		From:    transport.Profile{FirstName: "Ada"},
		Content: transport.Text("Hello"),
	}
	body, _ := json.Marshal(ev)

	w := postEvent(t, h, body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if len(relay.CallsTo("CreateThread")) != 1 {
		t.Fatalf("event did not reach the dispatcher, recorder: %s", relay)
	}
}

func TestPost_MalformedBody(t *testing.T) {
	h, relay := newHandler(t, "")

	w := postEvent(t, h, []byte("{not json"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if len(relay.Calls()) != 0 {
		t.Fatal("malformed body reached the dispatcher")
	}
}

func TestPost_SecretEnforced(t *testing.T) {
	h, relay := newHandler(t, "s3cret")
	body, _ := json.Marshal(transport.Event{Origin: 42, Private: true, Message: 1, Content: transport.Text("x")})

	if w := postEvent(t, h, body, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing secret: status = %d", w.Code)
	}
	if w := postEvent(t, h, body, map[string]string{"X-Hook-Secret": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d", w.Code)
	}
	if len(relay.Calls()) != 0 {
		t.Fatal("unauthorized delivery reached the dispatcher")
	}
	if w := postEvent(t, h, body, map[string]string{"X-Hook-Secret": "s3cret"}); w.Code != http.StatusOK {
		t.Fatalf("correct secret: status = %d", w.Code)
	}
}

func TestPost_ProcessingFailureStillAcknowledged(t *testing.T) {
	h, relay := newHandler(t, "")
	relay.Fail["CreateThread"] = errors.New("gateway down")

	body, _ := json.Marshal(transport.Event{Origin: 42, Private: true, Message: 1, Content: transport.Text("x")})
	w := postEvent(t, h, body, nil)

	// At-most-once: a redelivery would repeat side effects, so the hook
	// acknowledges even when processing failed.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

