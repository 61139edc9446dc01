package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/infrastructure/realtime"
)

// NotificationHandler upgrades clients to the notification channel.
type NotificationHandler struct {
	hub      *realtime.Hub
	queue    realtime.Enqueuer
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewNotificationHandler accepts upgrades from allowedOrigins only. Requests
// without an Origin header (non-browser clients) are accepted.
func NewNotificationHandler(hub *realtime.Hub, queue realtime.Enqueuer, allowedOrigins []string, log zerolog.Logger) *NotificationHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &NotificationHandler{
		hub:   hub,
		queue: queue,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Connect serves the WebSocket for the lifetime of the connection.
//
// @Summary      Notification channel
// @Description  Send {"event":"send_notification","data":...}; other peers receive {"event":"receive_notification","data":...}.
// @Tags         notifications
// @Success      101
// @Failure      400  {object}  ErrorResponse
// @Router       /ws [get]
func (h *NotificationHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	realtime.NewClient(h.hub, conn, h.queue, h.log).Run(c.Request().Context())
	return nil
}
