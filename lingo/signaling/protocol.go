package signaling

import (
	"encoding/json"
	"fmt"
)

// Inbound events.
const (
	EventJoin           = "join"
	EventChatJoin       = "chat:join"
	EventChatLeave      = "chat:leave"
	EventChatSend       = "chat:send"
	EventCallUser       = "call-user"
	EventRoomJoin       = "room:join"
	EventUserCall       = "user:call"
	EventCallAccepted   = "call:accepted"
	EventICECandidate   = "ice-candidate"
	EventPeerNegoNeeded = "peer:nego:needed"
	EventPeerNegoDone   = "peer:nego:done"
	EventCallEnded      = "call:ended"
)

// Outbound events.
const (
	EventChatReceive  = "chat:receive"
	EventIncomingCall = "incoming-call"
	EventUserJoined   = "user:joined"
	EventIncomingRTC  = "incoming:call"
	EventPeerNegoFin  = "peer:nego:final"
	EventRoomFull     = "room:full"
	EventUserLeft     = "user:left"
	EventError        = "error"
)

// Frame is the single wire envelope in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Target names a room. Clients send user ids as numbers and socket or room
// ids as strings, so both are accepted.
type Target string

func (t *Target) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Target(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("target must be a string or a number")
	}
	*t = Target(n.String())
	return nil
}

type joinPayload struct {
	UserID Target `json:"userId"`
}

type conversationPayload struct {
	ConversationID string `json:"conversationId"`
}

type chatSendPayload struct {
	ConversationID string          `json:"conversationId"`
	Message        json.RawMessage `json:"message"`
}

type chatReceivePayload struct {
	ConversationID string          `json:"conversationId"`
	Message        json.RawMessage `json:"message"`
}

type callUserPayload struct {
	To         Target `json:"to"`
	RoomID     string `json:"roomId"`
	CallerName string `json:"callerName"`
}

type incomingCallPayload struct {
	From       string `json:"from"`
	RoomID     string `json:"roomId"`
	CallerName string `json:"callerName"`
}

type roomJoinPayload struct {
	Email string `json:"email"`
	Room  string `json:"room"`
}

type userJoinedPayload struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

// relayPayload carries WebRTC blobs the server never inspects.
type relayPayload struct {
	To        Target          `json:"to,omitempty"`
	From      string          `json:"from,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Ans       json.RawMessage `json:"ans,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type roomFullPayload struct {
	Room string `json:"room"`
}

type userLeftPayload struct {
	ID string `json:"id"`
}

type errorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// relays maps each point-to-point signaling event to the event the target receives.
var relays = map[string]string{
	EventUserCall:       EventIncomingRTC,
	EventCallAccepted:   EventCallAccepted,
	EventICECandidate:   EventICECandidate,
	EventPeerNegoNeeded: EventPeerNegoNeeded,
	EventPeerNegoDone:   EventPeerNegoFin,
	EventCallEnded:      EventCallEnded,
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
