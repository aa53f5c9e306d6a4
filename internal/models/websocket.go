package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound and outbound envelope tags. The set is closed: any other tag is
// rejected at decode time.
type EnvelopeType string

const (
	// inbound
	EnvelopeJoin           EnvelopeType = "join"
	EnvelopeMessage        EnvelopeType = "message"
	EnvelopePrivateJoin    EnvelopeType = "private_join"
	EnvelopePrivateMessage EnvelopeType = "private_message"

	// outbound
	EnvelopeChatHistory EnvelopeType = "chat_history"
	EnvelopeNewMessage  EnvelopeType = "new_message"
	EnvelopeUserCount   EnvelopeType = "user_count"
	EnvelopeError       EnvelopeType = "error"
)

// InboundEnvelope is what a connected client may send. Join variants carry a
// room code, message variants carry text.
type InboundEnvelope struct {
	Type EnvelopeType `json:"type"`
	Code string       `json:"code,omitempty"`
	Text string       `json:"text,omitempty"`
}

func DecodeInbound(data []byte) (*InboundEnvelope, error) {
	var env InboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	switch env.Type {
	case EnvelopeJoin, EnvelopePrivateJoin:
		if env.Code == "" {
			return nil, fmt.Errorf("%s envelope requires a code", env.Type)
		}
	case EnvelopeMessage, EnvelopePrivateMessage:
		if env.Text == "" {
			return nil, fmt.Errorf("%s envelope requires text", env.Type)
		}
	default:
		return nil, fmt.Errorf("unknown envelope type %q", env.Type)
	}
	return &env, nil
}

// OutboundEnvelope is fanned out to room members. Exactly one of the payload
// fields is set, selected by Type.
type OutboundEnvelope struct {
	Type      EnvelopeType `json:"type"`
	Messages  []Message    `json:"messages,omitempty"`
	Message   *Message     `json:"message,omitempty"`
	UserCount int          `json:"user_count,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Error     string       `json:"error,omitempty"`
}

func NewChatHistoryEnvelope(messages []Message) *OutboundEnvelope {
	return &OutboundEnvelope{Type: EnvelopeChatHistory, Messages: messages}
}

func NewMessageEnvelope(msg Message) *OutboundEnvelope {
	return &OutboundEnvelope{Type: EnvelopeNewMessage, Message: &msg}
}

func NewUserCountEnvelope(count int, expiresAt time.Time) *OutboundEnvelope {
	return &OutboundEnvelope{Type: EnvelopeUserCount, UserCount: count, ExpiresAt: &expiresAt}
}

func NewErrorEnvelope(message string) *OutboundEnvelope {
	return &OutboundEnvelope{Type: EnvelopeError, Error: message}
}

func (e *OutboundEnvelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
