package game

import (
	"strings"
	"sync"
	"time"
)

// Phase is the room's current state-machine state.
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseRoleAssignment Phase = "role-assignment"
	PhasePoliceReveal   Phase = "police-reveal"
	PhaseGuessing       Phase = "guessing"
	PhaseResults        Phase = "results"
	PhaseFinished       Phase = "finished"
)

// Role is one of the four fixed round roles. The zero value means unassigned.
type Role string

const (
	RoleNone   Role = ""
	RoleRaja   Role = "Raja"
	RoleRani   Role = "Rani"
	RolePolice Role = "Police"
	RoleThief  Role = "Thief"
)

// roundRoles is the fixed set dealt every round, one per seat.
var roundRoles = [MaxPlayers]Role{RoleRaja, RoleRani, RolePolice, RoleThief}

const MaxPlayers = 4

// Room is one isolated game session. All fields are guarded by mu; every
// handler (inbound event or timer callback) holds mu for its full duration,
// so no two mutations of the same room ever interleave.
type Room struct {
	Code         string
	Name         string
	TotalRounds  int
	CurrentRound int
	Phase        Phase
	Players      []*Player // join order; Players[0] is the host
	PoliceID     string
	PendingGuess *GuessOutcome
	Messages     []ChatMessage

	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.Mutex
}

// Player is a seat in a room. The ID is allocated by the REST create/join
// call and stays stable across reconnects; ConnID tracks the live websocket
// connection, empty when none is bound.
type Player struct {
	ID           string
	Name         string
	IsHost       bool
	Score        int
	Role         Role
	ConnID       string
	Disconnected bool
	LastSeenAt   time.Time
	JoinedAt     time.Time
}

// GuessOutcome records the resolved guess for the current round, cleared at
// round start.
type GuessOutcome struct {
	GuessedThiefID string
	IsCorrect      bool
}

// ChatMessage is immutable once appended to a room's log.
type ChatMessage struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// findPlayer returns the player with the given id, or nil. Lock held by caller.
func (room *Room) findPlayer(playerID string) *Player {
	for _, p := range room.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// findByRole returns the player holding role this round, or nil. Lock held by caller.
func (room *Room) findByRole(role Role) *Player {
	for _, p := range room.Players {
		if p.Role == role {
			return p
		}
	}
	return nil
}

// nameTaken reports whether name collides case-insensitively with a current
// player's name. Lock held by caller.
func (room *Room) nameTaken(name string) bool {
	for _, p := range room.Players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// removePlayer drops the player from the seat list, preserving join order.
// Lock held by caller.
func (room *Room) removePlayer(playerID string) {
	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			return
		}
	}
}

// hasLiveConnection reports whether any seat has a bound connection.
// Lock held by caller.
func (room *Room) hasLiveConnection() bool {
	for _, p := range room.Players {
		if p.ConnID != "" {
			return true
		}
	}
	return false
}

// publicRoster is the role-free player list broadcast to the whole room.
// Lock held by caller.
func (room *Room) publicRoster() []PlayerSummary {
	roster := make([]PlayerSummary, 0, len(room.Players))
	for _, p := range room.Players {
		roster = append(roster, PlayerSummary{
			ID:     p.ID,
			Name:   p.Name,
			IsHost: p.IsHost,
			Score:  p.Score,
		})
	}
	return roster
}

// summary is the REST-facing room shape. Lock held by caller.
func (room *Room) summary() RoomSummary {
	return RoomSummary{
		ID:          room.Code,
		Name:        room.Name,
		TotalRounds: room.TotalRounds,
		Players:     room.publicRoster(),
	}
}

// snapshotFor builds the full room state for one binding connection. Only the
// requesting player's own role is revealed; everyone else's stays null.
// Lock held by caller.
func (room *Room) snapshotFor(playerID string) RoomState {
	players := make([]PlayerView, 0, len(room.Players))
	for _, p := range room.Players {
		view := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			IsHost:       p.IsHost,
			Score:        p.Score,
			Disconnected: p.Disconnected,
		}
		if p.ID == playerID && p.Role != RoleNone {
			role := p.Role
			view.Role = &role
		}
		players = append(players, view)
	}

	return RoomState{
		Room: RoomDetail{
			ID:           room.Code,
			Name:         room.Name,
			TotalRounds:  room.TotalRounds,
			CurrentRound: room.CurrentRound,
			GameState:    room.Phase,
			Players:      players,
		},
		PlayerID: playerID,
		PoliceID: room.PoliceID,
	}
}
