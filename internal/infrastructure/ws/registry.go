package ws

import (
	"errors"
	"sort"
	"sync"

	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/metrics"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrDuplicateClient = errors.New("client already registered")
	ErrEmptyRoomID     = errors.New("room id is required")
)

type set map[string]struct{}

// Registry tracks registered connections and their ride rooms. Both indices
// are guarded by one lock so a connection is never in a room it is not
// registered for.
type Registry struct {
	mu          sync.RWMutex
	conns       map[string]Conn
	rooms       map[string]set // rideID -> connIDs
	memberships map[string]set // connID -> rideIDs
	logger      logging.Logger
}

func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		conns:       make(map[string]Conn),
		rooms:       make(map[string]set),
		memberships: make(map[string]set),
		logger:      logger,
	}
}

func (r *Registry) Register(c Conn) error {
	r.mu.Lock()
	if _, exists := r.conns[c.ID()]; exists {
		r.mu.Unlock()
		return ErrDuplicateClient
	}
	r.conns[c.ID()] = c
	n := len(r.conns)
	r.mu.Unlock()

	metrics.SetActiveConnections(n)
	r.logger.Debug(logging.WebSocket, logging.Connect, "connection registered", map[logging.ExtraKey]any{
		logging.ConnID: c.ID(),
	})
	return nil
}

// Unregister removes the connection from every room and closes it. It reports
// whether the connection was registered.
func (r *Registry) Unregister(connID string) bool {
	r.mu.Lock()
	c, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return false
	}
	left := r.leaveAllLocked(connID)
	delete(r.conns, connID)
	conns, rooms := len(r.conns), len(r.rooms)
	r.mu.Unlock()

	c.Close()

	metrics.SetActiveConnections(conns)
	metrics.SetActiveRooms(rooms)
	r.logger.Debug(logging.WebSocket, logging.Disconnect, "connection unregistered", map[logging.ExtraKey]any{
		logging.ConnID: connID,
		"rooms":        left,
	})
	return true
}

// Join is idempotent and creates the room on first use.
func (r *Registry) Join(connID, rideID string) error {
	if rideID == "" {
		return ErrEmptyRoomID
	}

	r.mu.Lock()
	if _, ok := r.conns[connID]; !ok {
		r.mu.Unlock()
		return ErrClientNotFound
	}

	members, ok := r.rooms[rideID]
	if !ok {
		members = make(set)
		r.rooms[rideID] = members
	}
	members[connID] = struct{}{}

	joined, ok := r.memberships[connID]
	if !ok {
		joined = make(set)
		r.memberships[connID] = joined
	}
	joined[rideID] = struct{}{}
	rooms := len(r.rooms)
	r.mu.Unlock()

	metrics.SetActiveRooms(rooms)
	return nil
}

func (r *Registry) Leave(connID, rideID string) {
	r.mu.Lock()
	r.leaveLocked(connID, rideID)
	rooms := len(r.rooms)
	r.mu.Unlock()

	metrics.SetActiveRooms(rooms)
}

// LeaveAll returns the rooms the connection was removed from.
func (r *Registry) LeaveAll(connID string) []string {
	r.mu.Lock()
	left := r.leaveAllLocked(connID)
	rooms := len(r.rooms)
	r.mu.Unlock()

	metrics.SetActiveRooms(rooms)
	return left
}

func (r *Registry) leaveLocked(connID, rideID string) {
	if members, ok := r.rooms[rideID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, rideID)
		}
	}
	if joined, ok := r.memberships[connID]; ok {
		delete(joined, rideID)
		if len(joined) == 0 {
			delete(r.memberships, connID)
		}
	}
}

func (r *Registry) leaveAllLocked(connID string) []string {
	joined := r.memberships[connID]
	left := make([]string, 0, len(joined))
	for rideID := range joined {
		left = append(left, rideID)
		if members, ok := r.rooms[rideID]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(r.rooms, rideID)
			}
		}
	}
	delete(r.memberships, connID)
	sort.Strings(left)
	return left
}

// EmitToRoom sends to the room members present at call time and returns how
// many accepted the message.
func (r *Registry) EmitToRoom(rideID, event string, payload any) int {
	r.mu.RLock()
	members := r.rooms[rideID]
	targets := make([]Conn, 0, len(members))
	for connID := range members {
		if c, ok := r.conns[connID]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	return r.deliver(targets, &WSMessage{Type: event, RoomID: rideID, Data: payload})
}

// EmitToAll sends to every registered connection regardless of rooms.
func (r *Registry) EmitToAll(event string, payload any) int {
	r.mu.RLock()
	targets := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	return r.deliver(targets, &WSMessage{Type: event, Data: payload})
}

// SendTo delivers to a single connection, used for replies to the sender.
func (r *Registry) SendTo(connID string, msg *WSMessage) bool {
	r.mu.RLock()
	c, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	return r.deliver([]Conn{c}, msg) == 1
}

func (r *Registry) deliver(targets []Conn, msg *WSMessage) int {
	delivered := 0
	for _, c := range targets {
		if c.Send(msg) {
			delivered++
			continue
		}
		r.logger.Warn(logging.WebSocket, logging.Emit, "client buffer full, dropping message", map[logging.ExtraKey]any{
			logging.ConnID: c.ID(),
			logging.Event:  msg.Type,
			logging.RideID: msg.RoomID,
		})
	}

	metrics.RecordEmit(msg.Type, delivered, len(targets)-delivered)
	return delivered
}

func (r *Registry) Members(rideID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.rooms[rideID])
}

func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.memberships[connID])
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close drops every connection. Called once on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]Conn)
	r.rooms = make(map[string]set)
	r.memberships = make(map[string]set)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}

	metrics.SetActiveConnections(0)
	metrics.SetActiveRooms(0)
	r.logger.Info(logging.WebSocket, logging.Shutdown, "registry closed", map[logging.ExtraKey]any{
		"connections": len(conns),
	})
}

func sortedKeys(s set) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
