package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/middleware"
	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/services"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Stream message events
const (
	StreamEventSnapshot     = "snapshot"
	StreamEventNotification = "notification"
	StreamEventError        = "error"
)

const (
	streamWriteWait    = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// StreamMessage is the envelope written to notification stream websockets
type StreamMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	service  *services.NotificationService
	log      *logrus.Entry
	upgrader websocket.Upgrader
}

// NewNotificationHandler creates a new NotificationHandler. Stream upgrades are accepted
// from allowedOrigins only; "*" or an empty list accepts any origin.
func NewNotificationHandler(service *services.NotificationService, log *logrus.Entry, allowedOrigins []string) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log.WithField("component", "notification_handler"),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get(echo.HeaderOrigin)
		// Non-browser clients send no Origin
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.GET("/notifications/settings", h.GetSettings)
	g.PATCH("/notifications/settings", h.UpdateSettings)
	g.GET("/notifications/stream", h.StreamNotifications)
}

// GetNotifications returns the newest notifications together with the unread count
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	profileID := middleware.CurrentProfileID(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	notifications, err := h.service.FetchNotifications(ctx, profileID, limit)
	if err != nil {
		return toHTTPError(err)
	}
	unread, err := h.service.UnreadCount(ctx, profileID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
			"unread_count":  unread,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.service.UnreadCount(c.Request().Context(), middleware.CurrentProfileID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unread_count": count}})
}

// MarkAsRead marks a notification as read. Unknown ids are accepted and change nothing.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notificationID := c.Param("id")
	if notificationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}
	return h.markRead(c, notificationID)
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	return h.markRead(c, "")
}

func (h *NotificationHandler) markRead(c echo.Context, notificationID string) error {
	count, err := h.service.MarkAsRead(c.Request().Context(), middleware.CurrentProfileID(c), notificationID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unread_count": count}})
}

// GetSettings returns the caller's notification settings, creating defaults on first access
func (h *NotificationHandler) GetSettings(c echo.Context) error {
	settings, err := h.service.FetchSettings(c.Request().Context(), middleware.CurrentProfileID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": settings})
}

// UpdateSettings applies a partial update to the caller's notification settings
func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	var req models.UpdateNotificationSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	settings, err := h.service.UpdateSettings(c.Request().Context(), middleware.CurrentProfileID(c), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": settings})
}

// StreamNotifications upgrades to a websocket that first carries a snapshot of the
// caller's notifications and then every notification created for them while connected.
// The subscription is opened before the snapshot is read, so nothing created in between
// is lost; such a notification may appear in both and clients dedupe by id.
func (h *NotificationHandler) StreamNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	profileID := middleware.CurrentProfileID(c)

	sub, err := h.service.Subscribe(ctx, profileID)
	if err != nil {
		return toHTTPError(err)
	}
	defer sub.Close()

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response
		h.log.WithError(err).Debug("websocket upgrade failed")
		return nil
	}
	defer ws.Close()

	log := h.log.WithFields(logrus.Fields{"profile_id": profileID, "subscription_id": sub.ID})
	log.Info("notification stream opened")
	defer log.Info("notification stream closed")

	snapshot, err := h.snapshot(c, profileID)
	if err != nil {
		log.WithError(err).Error("failed to load notification snapshot")
		_ = writeStreamMessage(ws, StreamMessage{Event: StreamEventError, Data: echo.Map{"message": "Failed to load notifications"}})
		return nil
	}
	if err := writeStreamMessage(ws, StreamMessage{Event: StreamEventSnapshot, Data: snapshot}); err != nil {
		return nil
	}

	// Reads only detect the peer going away; clients send nothing meaningful
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return nil
		case n, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := writeStreamMessage(ws, StreamMessage{Event: StreamEventNotification, Data: n}); err != nil {
				log.WithError(err).Debug("failed to write live notification")
				return nil
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return nil
			}
		}
	}
}

func (h *NotificationHandler) snapshot(c echo.Context, profileID uint) (echo.Map, error) {
	ctx := c.Request().Context()
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	notifications, err := h.service.FetchNotifications(ctx, profileID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := h.service.UnreadCount(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return echo.Map{"notifications": notifications, "unread_count": unread}, nil
}

func writeStreamMessage(ws *websocket.Conn, msg StreamMessage) error {
	if err := ws.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return ws.WriteJSON(msg)
}
