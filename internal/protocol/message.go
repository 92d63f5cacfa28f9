// Package protocol defines the messages exchanged between players and the relay.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ActionRoomCode         = "room:code"
	ActionRoomState        = "room:state"
	ActionStartGameRequest = "game:start-request"
	ActionStartGame        = "game:start"
	ActionClientUpdate     = "game:update"
	ActionBroadcastUpdate  = "game:broadcast"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownAction    = errors.New("unknown action")
)

// Message is the envelope for every frame on the wire.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomState struct {
	Index int      `json:"index"`
	Names []string `json:"names"`
}

// StartGameRequest carries rules as an opaque document; the relay never parses them.
type StartGameRequest struct {
	Seed  uint32          `json:"seed"`
	Rules json.RawMessage `json:"rules"`
}

type StartGame struct {
	Seed    uint32          `json:"seed"`
	Rules   json.RawMessage `json:"rules"`
	Players int             `json:"players"`
}

// NewMessage wraps payload in an envelope.
func NewMessage(action string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	return Message{Action: action, Payload: data}, nil
}

// Decode parses an envelope and checks that the action is known.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	switch msg.Action {
	case ActionRoomCode, ActionRoomState, ActionStartGameRequest, ActionStartGame,
		ActionClientUpdate, ActionBroadcastUpdate:
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}

	return msg, nil
}

// DecodePayload unmarshals the payload into v.
func DecodePayload[T any](msg Message) (T, error) {
	var v T
	if len(msg.Payload) == 0 {
		return v, fmt.Errorf("%w: %s without payload", ErrMalformedMessage, msg.Action)
	}

	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, msg.Action, err)
	}

	return v, nil
}

// DecodeStartGameRequest checks the structural sanity the relay relies on.
func DecodeStartGameRequest(msg Message) (StartGameRequest, error) {
	req, err := DecodePayload[StartGameRequest](msg)
	if err != nil {
		return req, err
	}

	if len(req.Rules) == 0 || !json.Valid(req.Rules) {
		return req, fmt.Errorf("%w: start request without rules", ErrMalformedMessage)
	}

	return req, nil
}
