package game

import (
	log "github.com/sirupsen/logrus"
)

// Bind attaches a live connection to a seated player. Room and player ids
// come from the prior REST create/join call; this handshake is how that
// stateless allocation is attached to a realtime channel. On success the
// whole room hears the reconnect notice and the binding connection receives
// a full personalized snapshot plus the chat history.
func (r *Registry) Bind(connID, code, playerID string) error {
	room, ok := r.lookup(NormalizeRoomCode(code))
	if !ok {
		return newError(CodeRoomNotFound, "Room not found")
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player := room.findPlayer(playerID)
	if player == nil {
		return newError(CodePlayerNotFound, "Player not found in this room")
	}

	player.ConnID = connID
	player.Disconnected = false
	room.UpdatedAt = r.now()

	log.WithFields(log.Fields{"room": room.Code, "player": playerID}).Info("player bound")

	r.broadcast(room, EventPlayerReconnected, PlayerEvent{PlayerID: playerID})

	r.notifier.Send(connID, EventRoomState, room.snapshotFor(playerID))
	r.notifier.Send(connID, EventChatHistory, room.chatHistory())

	return nil
}

// MarkDisconnected flags a dropped player as provisionally offline and arms
// the grace-period eviction timer. The player keeps their seat, role and
// score; the game continues. The timer is never cancelled — a rebind resets
// LastSeenAt and the firing check below comes up empty instead.
func (r *Registry) MarkDisconnected(code, playerID string) {
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

	player.ConnID = ""
	player.Disconnected = true
	player.LastSeenAt = r.now()
	room.UpdatedAt = player.LastSeenAt

	log.WithFields(log.Fields{"room": room.Code, "player": playerID}).Info("player disconnected")

	r.broadcast(room, EventPlayerDisconnected, PlayerEvent{PlayerID: playerID})

	r.schedule(GracePeriod, room.Code, func(room *Room) {
		r.evictIfExpired(room, playerID)
	})
}

// evictIfExpired permanently removes a player whose grace period ran out.
// The elapsed-time recheck guards against a timer firing after a later
// rebind-and-redisconnect cycle reset LastSeenAt. Eviction breaks the
// 4-player invariant, so the game is force-ended. Room lock held by caller.
func (r *Registry) evictIfExpired(room *Room, playerID string) {
	player := room.findPlayer(playerID)
	if player == nil || !player.Disconnected {
		return
	}
	if r.now().Sub(player.LastSeenAt) < GracePeriod {
		return
	}

	room.removePlayer(playerID)
	room.UpdatedAt = r.now()

	log.WithFields(log.Fields{"room": room.Code, "player": playerID}).Info("player evicted")

	r.broadcast(room, EventPlayerRemoved, PlayerEvent{PlayerID: playerID})
	r.endGame(room)
}
