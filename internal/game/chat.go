package game

import (
	"strings"

	"github.com/google/uuid"
)

// PostChat appends a message to the room's log and fans it out. The author's
// name is snapshotted into the message so later roster changes don't rewrite
// history. Unknown rooms or players are silent no-ops.
func (r *Registry) PostChat(code, playerID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	room, ok := r.lookup(NormalizeRoomCode(code))
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player := room.findPlayer(playerID)
	if player == nil {
		return
	}

	msg := ChatMessage{
		ID:         uuid.New().String(),
		PlayerID:   playerID,
		PlayerName: player.Name,
		Message:    text,
		Timestamp:  r.now(),
	}
	room.Messages = append(room.Messages, msg)
	room.UpdatedAt = msg.Timestamp

	r.broadcast(room, EventChatMessage, msg)
}

// chatHistory copies the log for replay to a binding connection.
// Room lock held by caller.
func (room *Room) chatHistory() []ChatMessage {
	history := make([]ChatMessage, len(room.Messages))
	copy(history, room.Messages)
	return history
}
