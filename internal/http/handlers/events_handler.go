// Package handlers implements the webhook endpoints the gateway delivers
// inbound events to.
package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-bridge/internal/bridge"
	"github.com/tbourn/go-support-bridge/internal/http/middleware"
	"github.com/tbourn/go-support-bridge/internal/transport"
)

// hookSecretHeader carries the shared secret the gateway was registered
// with. Requests without the right value are rejected before any decoding.
const hookSecretHeader = "X-Hook-Secret"

// EventsHandler receives gateway webhook deliveries and feeds them to the
// dispatcher.
type EventsHandler struct {
	Dispatcher *bridge.Dispatcher
	// Secret guards the endpoint; empty disables the check.
	Secret string
}

// Post handles one webhook delivery. Delivery is at-most-once: the endpoint
// answers 200 even when event processing failed, because a gateway retry
// would re-run side effects that already happened (sends, thread creation).
// Failures are logged and counted instead.
func (h *EventsHandler) Post(c *gin.Context) {
	if h.Secret != "" {
		got := c.GetHeader(hookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "missing or invalid hook secret",
			})
			return
		}
	}

	var ev transport.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "malformed_event",
			"message": "request body is not a valid event",
		})
		return
	}

	if err := h.Dispatcher.Handle(c.Request.Context(), ev); err != nil {
		// Already logged and counted by the dispatcher; acknowledged so
		// the gateway does not redeliver.
		middleware.LoggerFrom(c).Debug().Msg("event acknowledged despite processing failure")
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}
