package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBindSendsSnapshotAndHistory(t *testing.T) {
	reg, notifier, _, _ := newTestRegistry(3)

	code, hostID, _, err := reg.CreateRoom("Room", "Alice", 2)
	assert.NoError(t, err)
	bobID, _, err := reg.JoinRoom(code, "Bob")
	assert.NoError(t, err)

	assert.NoError(t, reg.Bind("conn-a", code, hostID))
	reg.PostChat(code, hostID, "hello")

	notifier.reset()
	assert.NoError(t, reg.Bind("conn-b", code, bobID))

	// The room hears the (re)connect notice.
	reconnected, ok := notifier.lastByEvent(EventPlayerReconnected)
	assert.True(t, ok)
	assert.Equal(t, bobID, reconnected.Payload.(PlayerEvent).PlayerID)

	// The binding connection gets a personalized snapshot.
	states := notifier.byEvent(EventRoomState)
	assert.Len(t, states, 1)
	assert.Equal(t, "conn-b", states[0].ConnID)
	state := states[0].Payload.(RoomState)
	assert.Equal(t, bobID, state.PlayerID)
	assert.Equal(t, PhaseWaiting, state.Room.GameState)
	assert.Len(t, state.Room.Players, 2)

	// ... and the chat log, separately.
	history := notifier.byEvent(EventChatHistory)
	assert.Len(t, history, 1)
	assert.Equal(t, "conn-b", history[0].ConnID)
	messages := history[0].Payload.([]ChatMessage)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Message)
}

func TestBindSnapshotRevealsOnlyOwnRole(t *testing.T) {
	reg, notifier, clock, sched := newTestRegistry(3)

	code, playerIDs := fillRoom(t, reg, 2)
	tick(clock, sched, startDelay)

	notifier.reset()
	assert.NoError(t, reg.Bind("conn-again", code, playerIDs[2]))

	states := notifier.byEvent(EventRoomState)
	assert.Len(t, states, 1)
	state := states[0].Payload.(RoomState)

	for _, view := range state.Room.Players {
		if view.ID == playerIDs[2] {
			assert.NotNil(t, view.Role)
		} else {
			assert.Nil(t, view.Role, "role of %s leaked to another player", view.Name)
		}
	}
}

func TestBindUnknownRoomOrPlayer(t *testing.T) {
	reg, _, _, _ := newTestRegistry(3)

	code, _, _, err := reg.CreateRoom("Room", "Alice", 1)
	assert.NoError(t, err)

	err = reg.Bind("conn-x", "NOSUCH", "whoever")
	assert.Equal(t, CodeRoomNotFound, ErrorCode(err))

	err = reg.Bind("conn-x", code, "whoever")
	assert.Equal(t, CodePlayerNotFound, ErrorCode(err))
}

func TestDisconnectMarksProvisionallyOffline(t *testing.T) {
	reg, notifier, clock, sched := newTestRegistry(3)

	code, playerIDs := fillRoom(t, reg, 2)
	startRound(clock, sched)

	room := getRoom(t, reg, code)
	target := room.findPlayer(playerIDs[1])
	roleBefore := target.Role

	notifier.reset()
	reg.MarkDisconnected(code, playerIDs[1])

	assert.True(t, target.Disconnected)
	assert.Empty(t, target.ConnID)
	assert.Len(t, room.Players, 4, "player keeps their seat during the grace period")
	assert.Equal(t, roleBefore, target.Role)
	assert.Equal(t, PhasePoliceReveal, room.Phase, "game continues")

	dropped, ok := notifier.lastByEvent(EventPlayerDisconnected)
	assert.True(t, ok)
	assert.Equal(t, playerIDs[1], dropped.Payload.(PlayerEvent).PlayerID)
}

func TestRebindWithinGraceKeepsScoreAndRole(t *testing.T) {
	reg, notifier, clock, sched := newTestRegistry(3)

	code, _ := fillRoom(t, reg, 2)
	startRound(clock, sched)

	police := playerWithRole(t, reg, code, RolePolice)
	thief := playerWithRole(t, reg, code, RoleThief)
	reg.PoliceReveal(code, police.ID)
	reg.MakeGuess(code, police.ID, thief.ID)
	assert.Equal(t, 100, police.Score)

	reg.MarkDisconnected(code, police.ID)
	tick(clock, sched, 10*time.Second)

	assert.NoError(t, reg.Bind("conn-new", code, police.ID))
	assert.False(t, police.Disconnected)

	// The eviction timer still fires, finds the player back, and leaves
	// everything alone.
	notifier.reset()
	tick(clock, sched, GracePeriod)

	room := getRoom(t, reg, code)
	assert.Len(t, room.Players, 4)
	assert.Equal(t, 100, police.Score)
	assert.Equal(t, RolePolice, police.Role)
	assert.Empty(t, notifier.byEvent(EventPlayerRemoved))
	assert.NotEqual(t, PhaseFinished, room.Phase)
}

func TestEvictionAfterGraceForcesGameEnd(t *testing.T) {
	reg, notifier, clock, sched := newTestRegistry(3)

	code, _ := fillRoom(t, reg, 2)
	startRound(clock, sched)

	thief := playerWithRole(t, reg, code, RoleThief)
	reg.MarkDisconnected(code, thief.ID)

	notifier.reset()
	tick(clock, sched, GracePeriod+time.Second)

	room := getRoom(t, reg, code)
	assert.Len(t, room.Players, 3)
	assert.Nil(t, room.findPlayer(thief.ID))

	removed, ok := notifier.lastByEvent(EventPlayerRemoved)
	assert.True(t, ok)
	assert.Equal(t, thief.ID, removed.Payload.(PlayerEvent).PlayerID)

	// Three players can't continue: the game is force-ended.
	assert.Equal(t, PhaseFinished, room.Phase)
	finished, ok := notifier.lastByEvent(EventGameFinished)
	assert.True(t, ok)
	assert.Len(t, finished.Payload.(GameFinished).Leaderboard, 3)
}

func TestStaleEvictionTimerAfterRedisconnect(t *testing.T) {
	reg, _, clock, sched := newTestRegistry(3)

	code, playerIDs := fillRoom(t, reg, 2)
	startRound(clock, sched)
	target := playerIDs[3]

	// Drop, rebind, drop again: the first timer fires after the second
	// drop reset LastSeenAt, so its elapsed-time check fails.
	reg.MarkDisconnected(code, target)
	tick(clock, sched, 10*time.Second)
	assert.NoError(t, reg.Bind("conn-back", code, target))
	tick(clock, sched, 5*time.Second)
	reg.MarkDisconnected(code, target)

	tick(clock, sched, GracePeriod-5*time.Second)

	room := getRoom(t, reg, code)
	assert.Len(t, room.Players, 4, "stale timer must not evict")
	assert.NotEqual(t, PhaseFinished, room.Phase)

	// The second timer, at its own due time, does evict.
	tick(clock, sched, 5*time.Second)
	assert.Len(t, room.Players, 3)
	assert.Equal(t, PhaseFinished, room.Phase)
}

func TestEvictionTimerOnDeletedRoomIsNoOp(t *testing.T) {
	reg, notifier, clock, sched := newTestRegistry(3)

	code, playerIDs := fillRoom(t, reg, 2)
	reg.MarkDisconnected(code, playerIDs[0])
	reg.RemoveRoom(code)

	notifier.reset()
	tick(clock, sched, GracePeriod+time.Second)
	assert.Empty(t, notifier.sent)
}
