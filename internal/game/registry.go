package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Timing constants for scheduled transitions.
const (
	startDelay     = 2 * time.Second  // 4th join -> round 1
	revealDelay    = 3 * time.Second  // role-assignment -> police-reveal
	nextRoundDelay = 5 * time.Second  // results -> next round / finished
	roomRetention  = 60 * time.Second // finished -> deleted

	// GracePeriod is how long a dropped player may rebind before eviction.
	GracePeriod = 30 * time.Second
)

const (
	maxRoomNameLength   = 50
	maxPlayerNameLength = 20
)

// Registry owns the live room table. All room mutation goes through methods
// on the registry, each of which holds the target room's mutex for its full
// duration; deferred transitions re-look rooms up by code at fire time and
// re-validate state before acting.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	notifier Notifier

	rngMu sync.Mutex
	rng   *rand.Rand

	after func(time.Duration, func())
	now   func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithRand substitutes the random source used for room codes and role deals.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) { r.rng = rng }
}

// WithScheduler substitutes the deferred-task scheduler, for tests that fire
// transitions by hand.
func WithScheduler(after func(time.Duration, func())) Option {
	return func(r *Registry) { r.after = after }
}

// WithClock substitutes the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(notifier Notifier, opts ...Option) *Registry {
	r := &Registry{
		rooms:    make(map[string]*Room),
		notifier: notifier,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom allocates a room in the waiting phase with its host seated.
func (r *Registry) CreateRoom(roomName, hostName string, totalRounds int) (string, string, RoomSummary, error) {
	roomName = strings.TrimSpace(roomName)
	hostName = strings.TrimSpace(hostName)

	if roomName == "" {
		return "", "", RoomSummary{}, newError(CodeInvalidInput, "Room name is required")
	}
	if len(roomName) > maxRoomNameLength {
		return "", "", RoomSummary{}, newError(CodeInvalidInput, "Room name too long (max 50 characters)")
	}
	if err := validatePlayerName(hostName); err != nil {
		return "", "", RoomSummary{}, err
	}
	if totalRounds < 1 || totalRounds > 10 {
		return "", "", RoomSummary{}, newError(CodeInvalidInput, "Total rounds must be between 1 and 10")
	}

	now := r.now()
	host := &Player{
		ID:       uuid.New().String(),
		Name:     hostName,
		IsHost:   true,
		JoinedAt: now,
	}

	r.mu.Lock()
	r.rngMu.Lock()
	code := GenerateRoomCode(r.rng, func(c string) bool {
		_, taken := r.rooms[c]
		return taken
	})
	r.rngMu.Unlock()

	room := &Room{
		Code:        code,
		Name:        roomName,
		TotalRounds: totalRounds,
		Phase:       PhaseWaiting,
		Players:     []*Player{host},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.rooms[code] = room
	r.mu.Unlock()

	log.WithFields(log.Fields{"room": code, "host": hostName}).Info("room created")

	return code, host.ID, room.summary(), nil
}

// JoinRoom seats a new player in a waiting room. On the 4th join, round 1 is
// scheduled after a short delay so clients can render the full roster first.
func (r *Registry) JoinRoom(code, playerName string) (string, RoomSummary, error) {
	playerName = strings.TrimSpace(playerName)
	if err := validatePlayerName(playerName); err != nil {
		return "", RoomSummary{}, err
	}

	code = NormalizeRoomCode(code)
	room, ok := r.lookup(code)
	if !ok {
		return "", RoomSummary{}, newError(CodeRoomNotFound, "Room not found")
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseWaiting {
		return "", RoomSummary{}, newError(CodeGameInProgress, "Game already in progress")
	}
	if len(room.Players) >= MaxPlayers {
		return "", RoomSummary{}, newError(CodeRoomFull, "Room is full")
	}
	if room.nameTaken(playerName) {
		return "", RoomSummary{}, newError(CodeNameTaken, "Player name already taken")
	}

	now := r.now()
	player := &Player{
		ID:       uuid.New().String(),
		Name:     playerName,
		JoinedAt: now,
	}
	room.Players = append(room.Players, player)
	room.UpdatedAt = now

	summary := room.summary()
	r.broadcast(room, EventPlayerJoined, RosterUpdate{Players: room.publicRoster()})

	if len(room.Players) == MaxPlayers {
		log.WithField("room", code).Info("room full, scheduling round 1")
		r.schedule(startDelay, code, func(room *Room) {
			if room.Phase != PhaseWaiting || len(room.Players) != MaxPlayers {
				return
			}
			r.startNextRound(room)
		})
	}

	return player.ID, summary, nil
}

// RemoveRoom deletes a room from the registry. Idempotent.
func (r *Registry) RemoveRoom(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; ok {
		delete(r.rooms, code)
		log.WithField("room", code).Info("room removed")
	}
}

// RoomCount reports the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// SweepIdle removes waiting rooms that never filled, have no live connection,
// and have been idle longer than maxIdle. The original implementation leaked
// these; finished rooms are handled by the retention timer instead.
func (r *Registry) SweepIdle(maxIdle time.Duration) int {
	r.mu.RLock()
	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	r.mu.RUnlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for _, code := range codes {
		room, ok := r.lookup(code)
		if !ok {
			continue
		}
		room.mu.Lock()
		stale := room.Phase == PhaseWaiting && !room.hasLiveConnection() && room.UpdatedAt.Before(cutoff)
		room.mu.Unlock()

		if stale {
			r.RemoveRoom(code)
			removed++
		}
	}

	if removed > 0 {
		log.WithField("count", removed).Info("swept idle rooms")
	}
	return removed
}

func (r *Registry) lookup(code string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// schedule defers fn, carrying only the immutable room code. At fire time the
// room is looked up again and fn runs under its lock; if the room is gone the
// firing is a no-op. Timers are never cancelled, so every fn must re-validate
// phase or actor state itself.
func (r *Registry) schedule(d time.Duration, code string, fn func(*Room)) {
	r.after(d, func() {
		room, ok := r.lookup(code)
		if !ok {
			return
		}
		room.mu.Lock()
		defer room.mu.Unlock()
		fn(room)
	})
}

// broadcast fans an event out to every bound connection in the room.
// Room lock held by caller.
func (r *Registry) broadcast(room *Room, event string, payload any) {
	for _, p := range room.Players {
		if p.ConnID == "" {
			continue
		}
		r.notifier.Send(p.ConnID, event, payload)
	}
}

// shuffleRoles deals a uniformly random permutation of the four fixed roles.
func (r *Registry) shuffleRoles() [MaxPlayers]Role {
	roles := roundRoles
	r.rngMu.Lock()
	r.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	r.rngMu.Unlock()
	return roles
}

func validatePlayerName(name string) error {
	if name == "" {
		return newError(CodeInvalidInput, "Player name is required")
	}
	if len(name) > maxPlayerNameLength {
		return newError(CodeInvalidInput, "Player name too long (max 20 characters)")
	}
	return nil
}
