package signaling

import (
	"encoding/json"
	"errors"
	"strings"

	"lingo/lingo/sources/psql/models"
)

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errDecode
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errDecode
	}
	return nil
}

func (h *Hub) dispatch(c *Client, f Frame) error {
	if out, ok := relays[f.Event]; ok {
		return h.relay(c, out, f.Data)
	}

	switch f.Event {
	case EventJoin:
		var p joinPayload
		if err := decode(f.Data, &p); err != nil {
			return err
		}
		if string(p.UserID) != userRoom(c.UserID) {
			return errors.New("can only join your own user room")
		}
		h.mu.Lock()
		h.joinLocked(userRoom(c.UserID), c)
		h.mu.Unlock()
		return nil

	case EventChatJoin:
		var p conversationPayload
		if err := decode(f.Data, &p); err != nil {
			return err
		}
		return h.chatJoin(c, strings.TrimSpace(p.ConversationID))

	case EventChatLeave:
		var p conversationPayload
		if err := decode(f.Data, &p); err != nil {
			return err
		}
		if p.ConversationID == "" {
			return errors.New("conversationId is required")
		}
		h.leave(c, p.ConversationID)
		return nil

	case EventChatSend:
		var p chatSendPayload
		if err := decode(f.Data, &p); err != nil {
			return err
		}
		if p.ConversationID == "" {
			return errors.New("conversationId is required")
		}
		h.mu.RLock()
		_, member := h.clientRooms[c.ID][p.ConversationID]
		h.mu.RUnlock()
		if !member {
			return errors.New("join the conversation first")
		}
		h.emit(p.ConversationID, EventChatReceive, chatReceivePayload(p), "")
		return nil

	case EventCallUser:
		var p callUserPayload
		if err := decode(f.Data, &p); err != nil {
			return err
		}
		if p.To == "" {
			return errors.New("to is required")
		}
		h.emit(string(p.To), EventIncomingCall, incomingCallPayload{
			From:       c.ID,
			RoomID:     p.RoomID,
			CallerName: p.CallerName,
		}, c.ID)
		return nil

	case EventRoomJoin:
		var p roomJoinPayload
		if err := decode(f.Data, &p); err != nil {
			return err
		}
		return h.roomJoin(c, p)

	default:
		return errors.New("unknown event")
	}
}

func (h *Hub) chatJoin(c *Client, conversationID string) error {
	if conversationID == "" {
		return errors.New("conversationId is required")
	}
	if _, _, err := models.ParseConversationID(conversationID); err == nil && !models.IsParticipant(conversationID, c.UserID) {
		return errors.New("not a participant of this conversation")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reservedLocked(conversationID) {
		return errors.New("room is not joinable")
	}
	if _, isCall := h.callRooms[conversationID]; isCall {
		return errors.New("room is a call room")
	}
	h.joinLocked(conversationID, c)
	h.chatRooms[conversationID] = struct{}{}
	return nil
}

// leave drops c from a chat or call room. Remaining call peers get user:left.
func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	_, member := h.clientRooms[c.ID][room]
	if !member || h.reservedLocked(room) {
		h.mu.Unlock()
		return
	}
	_, isCall := h.callRooms[room]
	h.leaveLocked(room, c.ID)
	notify := isCall && len(h.rooms[room]) > 0
	h.mu.Unlock()

	if notify {
		h.emit(room, EventUserLeft, userLeftPayload{ID: c.ID}, "")
	}
}

func (h *Hub) roomJoin(c *Client, p roomJoinPayload) error {
	room := strings.TrimSpace(p.Room)
	if room == "" {
		return errors.New("room is required")
	}

	// conversation rooms are only entered through chat:join
	if _, _, err := models.ParseConversationID(room); err == nil {
		return errors.New("room is not joinable")
	}

	h.mu.Lock()
	_, isChat := h.chatRooms[room]
	if isChat || h.reservedLocked(room) {
		h.mu.Unlock()
		return errors.New("room is not joinable")
	}
	members := h.rooms[room]
	if _, already := members[c.ID]; already {
		h.mu.Unlock()
		return nil
	}
	if len(members) >= h.maxPeers {
		h.mu.Unlock()
		h.sendTo(c, EventRoomFull, roomFullPayload{Room: room})
		return nil
	}
	existing := make([]string, 0, len(members))
	for id := range members {
		existing = append(existing, id)
	}
	h.joinLocked(room, c)
	h.callRooms[room] = struct{}{}
	h.mu.Unlock()

	h.emit(room, EventUserJoined, userJoinedPayload{Email: p.Email, ID: c.ID}, c.ID)
	for _, id := range existing {
		h.sendTo(c, EventUserJoined, userJoinedPayload{Email: "Someone", ID: id})
	}
	return nil
}

// relay forwards an opaque signaling blob to the room named by `to`,
// stamping the sender's socket id as `from`. The sending socket never gets
// its own frame back; its other sockets do when `to` is its user room.
func (h *Hub) relay(c *Client, out string, data json.RawMessage) error {
	var p relayPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.To == "" {
		return errors.New("to is required")
	}
	to := string(p.To)
	p.To = ""
	p.From = c.ID
	h.emit(to, out, p, c.ID)
	return nil
}
