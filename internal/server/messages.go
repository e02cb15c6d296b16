package server

import "encoding/json"

// ClientMessage is the inbound websocket envelope; payloads stay raw until
// the dispatch switch knows their shape.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage is the outbound websocket envelope.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
