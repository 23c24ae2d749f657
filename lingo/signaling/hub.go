// Package signaling is the socket server: per-socket and per-user rooms,
// conversation rooms for chat, capped call rooms, and the WebRTC relay.
package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"lingo/lingo/sources/presence"
	"lingo/lingo/utils/logging"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var errDecode = errors.New("malformed payload")

type Hub struct {
	mu          sync.RWMutex
	clients     map[string]*Client
	rooms       map[string]map[string]*Client
	clientRooms map[string]map[string]struct{}
	callRooms   map[string]struct{}
	chatRooms   map[string]struct{}

	maxPeers int
	presence presence.Tracker
}

func NewHub(maxPeers int, tracker presence.Tracker) *Hub {
	if maxPeers < 2 {
		maxPeers = 2
	}
	if tracker == nil {
		tracker = presence.NewMemory()
	}
	return &Hub{
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
		clientRooms: make(map[string]map[string]struct{}),
		callRooms:   make(map[string]struct{}),
		chatRooms:   make(map[string]struct{}),
		maxPeers:    maxPeers,
		presence:    tracker,
	}
}

func userRoom(userID int) string {
	return strconv.Itoa(userID)
}

// Serve runs one connection until it closes.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID int) {
	conn.SetReadLimit(maxFrameBytes)
	c := newClient(conn, userID)
	h.register(ctx, c)
	go c.writeLoop(ctx)
	defer func() {
		h.unregister(ctx, c)
		<-c.writerDone
	}()

	decodeErrors := 0
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var f Frame
		if typ != websocket.MessageText || json.Unmarshal(data, &f) != nil || f.Event == "" {
			err = errDecode
		} else {
			err = h.dispatch(c, f)
		}

		if errors.Is(err, errDecode) {
			decodeErrors++
			h.sendError(c, f.Event, "malformed frame")
			if decodeErrors >= maxDecodeErrors {
				logging.AppLogger.Info("closing socket after repeated malformed frames",
					zap.String("socket_id", c.ID),
					zap.Int("user_id", c.UserID),
				)
				c.close(websocket.StatusPolicyViolation, "too many malformed frames")
				return
			}
			continue
		}
		decodeErrors = 0
		if err != nil {
			h.sendError(c, f.Event, err.Error())
		}
	}
}

func (h *Hub) register(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.joinLocked(c.ID, c)
	h.joinLocked(userRoom(c.UserID), c)
	h.mu.Unlock()

	if _, err := h.presence.Connect(ctx, c.UserID); err != nil {
		logging.ErrorLogger.Error("presence connect failed", zap.Int("user_id", c.UserID), zap.Error(err))
	}
	logging.AppLogger.Info("socket connected", zap.String("socket_id", c.ID), zap.Int("user_id", c.UserID))
}

func (h *Hub) unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	var peerRooms []string
	for room := range h.clientRooms[c.ID] {
		if _, isCall := h.callRooms[room]; isCall && len(h.rooms[room]) > 1 {
			peerRooms = append(peerRooms, room)
		}
		h.leaveLocked(room, c.ID)
	}
	delete(h.clientRooms, c.ID)
	delete(h.clients, c.ID)
	h.mu.Unlock()

	c.close(websocket.StatusNormalClosure, "")

	for _, room := range peerRooms {
		h.emit(room, EventUserLeft, userLeftPayload{ID: c.ID}, "")
	}

	// the request context may already be cancelled here
	if _, err := h.presence.Disconnect(context.WithoutCancel(ctx), c.UserID); err != nil {
		logging.ErrorLogger.Error("presence disconnect failed", zap.Int("user_id", c.UserID), zap.Error(err))
	}
	logging.AppLogger.Info("socket disconnected", zap.String("socket_id", c.ID), zap.Int("user_id", c.UserID))
}

func (h *Hub) joinLocked(room string, c *Client) {
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c

	memberships := h.clientRooms[c.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.clientRooms[c.ID] = memberships
	}
	memberships[room] = struct{}{}
}

func (h *Hub) leaveLocked(room, clientID string) {
	if members := h.rooms[room]; members != nil {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
			delete(h.callRooms, room)
			delete(h.chatRooms, room)
		}
	}
	if memberships := h.clientRooms[clientID]; memberships != nil {
		delete(memberships, room)
	}
}

// reservedLocked reports rooms that belong to a single socket or user.
func (h *Hub) reservedLocked(room string) bool {
	if _, ok := h.clients[room]; ok {
		return true
	}
	_, err := strconv.Atoi(room)
	return err == nil
}

// emit delivers to every member of room except excludeID and returns the count.
func (h *Hub) emit(room, event string, data any, excludeID string) int {
	payload, err := encodeFrame(event, data)
	if err != nil {
		logging.ErrorLogger.Error("encode frame failed", zap.String("event", event), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for id, c := range h.rooms[room] {
		if id == excludeID {
			continue
		}
		if c.enqueue(payload) {
			delivered++
		}
	}
	if delivered == 0 {
		logging.AppLogger.Info("no recipients", zap.String("event", event), zap.String("room", room))
	}
	return delivered
}

func (h *Hub) sendTo(c *Client, event string, data any) {
	payload, err := encodeFrame(event, data)
	if err != nil {
		logging.ErrorLogger.Error("encode frame failed", zap.String("event", event), zap.Error(err))
		return
	}
	c.enqueue(payload)
}

func (h *Hub) sendError(c *Client, event, message string) {
	h.sendTo(c, EventError, errorPayload{Event: event, Message: message})
}

// Close disconnects every socket. Serve goroutines unwind on their own.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.close(websocket.StatusGoingAway, "server shutdown")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
