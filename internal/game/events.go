package game

// Event names on the realtime channel, matching what clients subscribe to.
const (
	EventRoomState          = "room-state"
	EventChatHistory        = "chat-history"
	EventChatMessage        = "chat-message"
	EventPlayerJoined       = "player-joined"
	EventPlayerReconnected  = "player-reconnected"
	EventPlayerDisconnected = "player-disconnected"
	EventPlayerRemoved      = "player-removed"
	EventGameStarted        = "game-started"
	EventRoleAssigned       = "role-assigned"
	EventPoliceRevealPhase  = "police-reveal-phase"
	EventPoliceRevealed     = "police-revealed"
	EventAllRoles           = "all-roles"
	EventRoundResult        = "round-result"
	EventGameFinished       = "game-finished"
)

// Notifier is the server-side gateway the state machine emits through. Send
// delivers one event to a single live connection; room-wide fan-out loops
// over the room's bound connections.
type Notifier interface {
	Send(connID, event string, payload any)
}

// PlayerSummary is the public, role-free player shape.
type PlayerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Score  int    `json:"score"`
}

// RoomSummary is the room shape returned by the REST create/join calls.
type RoomSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalRounds int             `json:"totalRounds"`
	Players     []PlayerSummary `json:"players"`
}

// PlayerView is a roster entry inside a personalized snapshot. Role is null
// for everyone but the snapshot's owner.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"isHost"`
	Score        int    `json:"score"`
	Role         *Role  `json:"role"`
	Disconnected bool   `json:"disconnected"`
}

// RoomDetail is the room portion of a snapshot.
type RoomDetail struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	TotalRounds  int          `json:"totalRounds"`
	CurrentRound int          `json:"currentRound"`
	GameState    Phase        `json:"gameState"`
	Players      []PlayerView `json:"players"`
}

// RoomState is the full snapshot sent to a newly bound connection.
type RoomState struct {
	Room     RoomDetail `json:"room"`
	PlayerID string     `json:"playerId"`
	PoliceID string     `json:"policeId,omitempty"`
}

// RosterUpdate carries the public roster after a membership change.
type RosterUpdate struct {
	Players []PlayerSummary `json:"players"`
}

// PlayerRef names one player.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerEvent identifies the player a presence notice is about.
type PlayerEvent struct {
	PlayerID string `json:"playerId"`
}

// GameStarted announces a round start with the public roster.
type GameStarted struct {
	CurrentRound int             `json:"currentRound"`
	TotalRounds  int             `json:"totalRounds"`
	Players      []PlayerSummary `json:"players"`
}

// RoleAssigned is the per-player secret deal: the recipient's own role plus a
// roster masked to show only that role.
type RoleAssigned struct {
	Role    Role         `json:"role"`
	Players []MaskedRole `json:"players"`
}

// MaskedRole is a roster entry whose role is null unless it belongs to the
// message's recipient.
type MaskedRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role *Role  `json:"role"`
}

// PoliceRevealed announces the now-public Police identity (id and name only).
type PoliceRevealed struct {
	PoliceID   string `json:"policeId"`
	PoliceName string `json:"policeName"`
}

// RevealedRole is one entry of the Police-eyes-only full reveal.
type RevealedRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// AllRoles is sent once, to the Police player only, on reveal.
type AllRoles struct {
	Players []RevealedRole `json:"players"`
}

// RoundResult is the room-wide resolution of a guess.
type RoundResult struct {
	IsCorrect     bool           `json:"isCorrect"`
	Thief         PlayerRef      `json:"thief"`
	GuessedPlayer PlayerRef      `json:"guessedPlayer"`
	Players       []ScoredPlayer `json:"players"`
	CurrentRound  int            `json:"currentRound"`
	TotalRounds   int            `json:"totalRounds"`
}

// ScoredPlayer pairs a player with their role and updated score.
type ScoredPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Score int    `json:"score"`
}

// RankedPlayer is one leaderboard row.
type RankedPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

// GameFinished carries the final leaderboard.
type GameFinished struct {
	Leaderboard []RankedPlayer `json:"leaderboard"`
}
