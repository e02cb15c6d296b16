package server

import "rajarani-server/internal/game"

// ============================================================================
// REST: room creation and joining
// ============================================================================

type CreateRoomRequest struct {
	RoomName    string `json:"roomName"`
	PlayerName  string `json:"playerName"`
	TotalRounds int    `json:"totalRounds"`
}

type CreateRoomResponse struct {
	Success  bool             `json:"success"`
	RoomCode string           `json:"roomCode"`
	PlayerID string           `json:"playerId"`
	Room     game.RoomSummary `json:"room"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomResponse struct {
	Success  bool             `json:"success"`
	PlayerID string           `json:"playerId"`
	Room     game.RoomSummary `json:"room"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ============================================================================
// Websocket: client -> server event payloads
// ============================================================================

// JoinRoomEvent is the bind handshake: the one payload whose ids are trusted,
// since it is what establishes the binding.
type JoinRoomEvent struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type ChatMessageEvent struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
}

type PoliceRevealEvent struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type MakeGuessEvent struct {
	RoomCode       string `json:"roomCode"`
	PlayerID       string `json:"playerId"`
	GuessedThiefID string `json:"guessedThiefId"`
}

// ErrorMessage is the error event payload sent to a single connection.
type ErrorMessage struct {
	Message string `json:"message"`
}
