// Package websocket multiplexes live viewer connections into per-room
// broadcast groups. All mutations of a given room's membership and log are
// serialized by that room's hub lock, so every member observes count and
// message events in the order the broker processed them.
package websocket

import (
	"sync"
	"time"

	"dropchat/internal/metrics"
	"dropchat/internal/models"
	"dropchat/internal/store"
	"dropchat/pkg/logger"
)

// EntryChecker validates that a content room still has a live entry behind
// it. Implemented by the entry service with a non-consuming read.
type EntryChecker interface {
	Exists(code string) bool
}

// Hub is the broadcast group for a single room code. It holds no room data
// itself; the room store remains the source of truth for counts and logs.
type Hub struct {
	code      string
	expiresAt time.Time

	mu      sync.Mutex
	clients map[*Client]bool
}

func (h *Hub) snapshotCount() int {
	return len(h.clients)
}

// broadcast fans an envelope out to every member. Per-recipient failures
// are logged and swallowed; one slow or closing connection never blocks the
// others. Callers hold h.mu.
func (h *Hub) broadcast(env *models.OutboundEnvelope) {
	data, err := env.Encode()
	if err != nil {
		logger.Error("encoding %s envelope for room %s: %v", env.Type, h.code, err)
		return
	}
	for client := range h.clients {
		if !client.enqueue(data) {
			logger.Debug("dropping %s envelope for slow client in room %s", env.Type, h.code)
		}
	}
}

func (h *Hub) unicast(c *Client, env *models.OutboundEnvelope) {
	data, err := env.Encode()
	if err != nil {
		logger.Error("encoding %s envelope for room %s: %v", env.Type, h.code, err)
		return
	}
	if !c.enqueue(data) {
		logger.Debug("dropping %s envelope for slow client in room %s", env.Type, h.code)
	}
}

// Broker owns the live connection-to-room bindings. Connections register
// through Join, deregister themselves through Leave on transport close, and
// route chat text through Message.
type Broker struct {
	rooms   *store.RoomStore
	entries EntryChecker
	metrics *metrics.Metrics

	contentRoomTTL    time.Duration
	standaloneRoomTTL time.Duration

	mu   sync.Mutex
	hubs map[string]*Hub
}

func NewBroker(rooms *store.RoomStore, entries EntryChecker, m *metrics.Metrics, contentRoomTTL, standaloneRoomTTL time.Duration) *Broker {
	return &Broker{
		rooms:             rooms,
		entries:           entries,
		metrics:           m,
		contentRoomTTL:    contentRoomTTL,
		standaloneRoomTTL: standaloneRoomTTL,
		hubs:              make(map[string]*Hub),
	}
}

// Join moves the connection from Connecting to Joined. Content rooms are
// created on first join, with their TTL counted from that moment, and
// require the backing entry to still exist. Standalone rooms must already
// have been created. On success the new member alone receives the full
// history and every member, the new one included, receives the updated
// count.
func (b *Broker) Join(c *Client, roomCode string, private bool) error {
	roomCode = store.NormalizeCode(roomCode)

	if !private && !b.entries.Exists(roomCode) {
		return store.ErrNotFound
	}
	if private {
		if _, err := b.rooms.Get(roomCode); err != nil {
			return store.ErrNotFound
		}
	}

	b.mu.Lock()
	hub, ok := b.hubs[roomCode]
	if !ok {
		ttl := b.contentRoomTTL
		if private {
			ttl = b.standaloneRoomTTL
		}
		room := b.rooms.GetOrCreate(roomCode, ttl)
		hub = &Hub{
			code:      roomCode,
			expiresAt: room.ExpiresAt,
			clients:   make(map[*Client]bool),
		}
		b.hubs[roomCode] = hub
		b.metrics.LiveRooms.Inc()
	}

	hub.mu.Lock()
	b.mu.Unlock()
	defer hub.mu.Unlock()

	hub.clients[c] = true
	c.setHub(hub, private)

	if err := b.rooms.Touch(hub.code, hub.snapshotCount()); err != nil {
		logger.Error("updating member count for room %s: %v", hub.code, err)
	}
	hub.unicast(c, models.NewChatHistoryEnvelope(b.rooms.History(hub.code)))
	hub.broadcast(models.NewUserCountEnvelope(hub.snapshotCount(), hub.expiresAt))
	logger.Info("client %s joined room %s", c.authorToken, hub.code)
	return nil
}

// Message appends the text to the room's log and broadcasts it. Messages
// are totally ordered per room by arrival at the hub lock, not by client
// clocks. An expired room is reported to the sender only.
func (b *Broker) Message(c *Client, text string) error {
	hub := c.currentHub()
	if hub == nil {
		return store.ErrRoomNotFound
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	msg, err := b.rooms.AppendMessage(hub.code, c.authorToken, text)
	if err != nil {
		return err
	}
	b.metrics.MessagesTotal.Inc()
	hub.broadcast(models.NewMessageEnvelope(*msg))
	return nil
}

// Leave moves the connection to Closed. Safe to call for connections that
// never joined. When the last member leaves, the room and its message log
// are deleted immediately.
func (b *Broker) Leave(c *Client) {
	hub := c.currentHub()
	if hub == nil {
		c.closeSend()
		return
	}

	b.mu.Lock()
	hub.mu.Lock()

	if !hub.clients[c] {
		hub.mu.Unlock()
		b.mu.Unlock()
		return
	}
	delete(hub.clients, c)
	c.closeSend()

	if hub.snapshotCount() == 0 {
		// Store delete happens before releasing the broker lock so a
		// concurrent Join cannot recreate the hub against a room this
		// branch is about to remove.
		delete(b.hubs, hub.code)
		b.rooms.Delete(hub.code)
		hub.mu.Unlock()
		b.mu.Unlock()
		b.metrics.LiveRooms.Dec()
		logger.Info("room %s emptied and deleted", hub.code)
		return
	}
	b.mu.Unlock()

	if err := b.rooms.Touch(hub.code, hub.snapshotCount()); err != nil {
		logger.Error("updating member count for room %s: %v", hub.code, err)
	}
	hub.broadcast(models.NewUserCountEnvelope(hub.snapshotCount(), hub.expiresAt))
	hub.mu.Unlock()
	logger.Info("client %s left room %s", c.authorToken, hub.code)
}
