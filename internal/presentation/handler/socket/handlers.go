// Package socket serves the ride event WebSocket. Each connection gets a
// write pump and a read pump; inbound events are routed to the dispatch core.
package socket

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/validate"
	"github.com/hilthontt/ridehail/internal/infrastructure/ws"
	"golang.org/x/time/rate"
)

type Dispatcher interface {
	UpdateRideStatus(ctx context.Context, rideID, status string) (*domain.Ride, error)
	HandleJoin(connID, rideID string) error
	HandleLeave(connID, rideID string)
	HandleDisconnect(connID string)
}

type Registrar interface {
	Register(c ws.Conn) error
}

type Options struct {
	Dispatcher     Dispatcher
	Registry       Registrar
	AllowedOrigins []string
	SendBuffer     int
	Logger         logging.Logger

	// MessagesPerSecond caps inbound events per connection. Zero disables it.
	MessagesPerSecond float64
	MessageBurst      int
}

type Handler struct {
	dispatcher Dispatcher
	registry   Registrar
	upgrader   *websocket.Upgrader
	sendBuffer int
	logger     logging.Logger

	messageLimit rate.Limit
	messageBurst int
	limiters     sync.Map // connID -> *rate.Limiter
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	limit := rate.Inf
	if opts.MessagesPerSecond > 0 {
		limit = rate.Limit(opts.MessagesPerSecond)
	}
	burst := opts.MessageBurst
	if burst <= 0 {
		burst = 1
	}

	return &Handler{
		dispatcher:   opts.Dispatcher,
		registry:     opts.Registry,
		upgrader:     ws.NewUpgrader(opts.AllowedOrigins),
		sendBuffer:   opts.SendBuffer,
		logger:       opts.Logger,
		messageLimit: limit,
		messageBurst: burst,
	}
}

// ServeWS godoc
// @Summary      Ride event socket
// @Description  Upgrades to a WebSocket carrying {type, roomId, data} envelopes. Inbound: joinRide, leaveRide, updateRide. Outbound: newRide, rideUpdate, error.
// @Tags         socket
// @Success      101 {string} string "Switching Protocols"
// @Router       /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.WebSocket, logging.Connect, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, h.sendBuffer, h.logger)
	if err := h.registry.Register(client); err != nil {
		h.logger.Error(logging.WebSocket, logging.Connect, "failed to register connection", map[logging.ExtraKey]any{
			logging.ConnID:       client.ID(),
			logging.ErrorMessage: err.Error(),
		})
		_ = conn.Close()
		return
	}

	h.limiters.Store(client.ID(), rate.NewLimiter(h.messageLimit, h.messageBurst))

	h.logger.Info(logging.WebSocket, logging.Connect, "client connected", map[logging.ExtraKey]any{
		logging.ConnID: client.ID(),
	})

	// The request context ends when this handler returns.
	ctx := context.WithoutCancel(r.Context())

	go client.WriteMessage()
	go client.ReadMessage(ctx, h)
}

func (h *Handler) HandleMessage(ctx context.Context, c *ws.Client, msg ws.InboundMessage) {
	if !h.allow(c.ID()) {
		c.Send(ws.NewError(msg.RoomID, ws.CodeRateLimited, "too many messages"))
		return
	}

	switch msg.Type {
	case ws.JoinRide:
		rideID, ok := h.rideID(c, msg)
		if !ok {
			return
		}
		if err := h.dispatcher.HandleJoin(c.ID(), rideID); err != nil {
			h.logger.Warn(logging.WebSocket, logging.Join, "join failed", map[logging.ExtraKey]any{
				logging.ConnID:       c.ID(),
				logging.RideID:       rideID,
				logging.ErrorMessage: err.Error(),
			})
		}

	case ws.LeaveRide:
		rideID, ok := h.rideID(c, msg)
		if !ok {
			return
		}
		h.dispatcher.HandleLeave(c.ID(), rideID)

	case ws.UpdateRide:
		payload, err := msg.UpdatePayload()
		if err == nil {
			err = validate.RideID()(payload.RideID)
		}
		if err != nil {
			c.Send(ws.NewError(payload.RideID, ws.CodeBadRequest, err.Error()))
			return
		}

		if _, err := h.dispatcher.UpdateRideStatus(ctx, payload.RideID, payload.Status); err != nil {
			code := errorCode(err)
			h.logger.Warn(logging.WebSocket, logging.Update, "ride update rejected", map[logging.ExtraKey]any{
				logging.ConnID:       c.ID(),
				logging.RideID:       payload.RideID,
				logging.Status:       payload.Status,
				logging.ErrorMessage: err.Error(),
			})
			c.Send(ws.NewError(payload.RideID, code, errorMessage(code, err)))
		}

	default:
		h.logger.Debug(logging.WebSocket, logging.Select, "ignoring unknown event", map[logging.ExtraKey]any{
			logging.ConnID: c.ID(),
			logging.Event:  msg.Type,
		})
	}
}

func (h *Handler) HandleDisconnect(connID string) {
	h.limiters.Delete(connID)
	h.dispatcher.HandleDisconnect(connID)
	h.logger.Info(logging.WebSocket, logging.Disconnect, "client disconnected", map[logging.ExtraKey]any{
		logging.ConnID: connID,
	})
}

func (h *Handler) allow(connID string) bool {
	l, ok := h.limiters.Load(connID)
	if !ok {
		return true
	}
	return l.(*rate.Limiter).Allow()
}

func (h *Handler) rideID(c *ws.Client, msg ws.InboundMessage) (string, bool) {
	rideID, err := msg.RideID()
	if err == nil {
		err = validate.RideID()(rideID)
	}
	if err != nil {
		h.logger.Warn(logging.WebSocket, logging.Join, "malformed ride id", map[logging.ExtraKey]any{
			logging.ConnID:       c.ID(),
			logging.Event:        msg.Type,
			logging.ErrorMessage: err.Error(),
		})
		return "", false
	}
	return rideID, true
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrRideNotFound):
		return ws.CodeRideNotFound
	case errors.Is(err, domain.ErrInvalidStatus):
		return ws.CodeInvalidStatus
	case errors.Is(err, domain.ErrInvalidTransition):
		return ws.CodeInvalidTransition
	case errors.Is(err, domain.ErrStatusConflict):
		return ws.CodeStatusConflict
	default:
		return ws.CodeStoreError
	}
}

// Store failures are reported without the backend cause.
func errorMessage(code string, err error) string {
	if code == ws.CodeStoreError {
		return "ride store unavailable"
	}
	return err.Error()
}
