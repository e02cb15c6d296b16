package game

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// fakeNotifier records every emitted event for inspection.
type sentMessage struct {
	ConnID  string
	Event   string
	Payload any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) Send(connID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ConnID: connID, Event: event, Payload: payload})
}

func (f *fakeNotifier) byEvent(event string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeNotifier) lastByEvent(event string) (sentMessage, bool) {
	msgs := f.byEvent(event)
	if len(msgs) == 0 {
		return sentMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *fakeNotifier) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// fakeClock is a settable wall clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// manualScheduler models time.AfterFunc against the fake clock: tasks carry a
// due time and runDue fires exactly those whose due time has passed, the way
// real timers would.
type schedTask struct {
	due time.Time
	fn  func()
}

type manualScheduler struct {
	clock *fakeClock
	mu    sync.Mutex
	tasks []schedTask
}

func (m *manualScheduler) after(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, schedTask{due: m.clock.now().Add(d), fn: fn})
}

func (m *manualScheduler) runDue() int {
	ran := 0
	for {
		m.mu.Lock()
		now := m.clock.now()
		var due []func()
		remaining := m.tasks[:0]
		for _, task := range m.tasks {
			if !task.due.After(now) {
				due = append(due, task.fn)
			} else {
				remaining = append(remaining, task)
			}
		}
		m.tasks = remaining
		m.mu.Unlock()

		if len(due) == 0 {
			return ran
		}
		for _, fn := range due {
			fn()
		}
		ran += len(due)
	}
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func newTestRegistry(seed int64) (*Registry, *fakeNotifier, *fakeClock, *manualScheduler) {
	notifier := &fakeNotifier{}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	sched := &manualScheduler{clock: clock}

	reg := NewRegistry(notifier,
		WithRand(rand.New(rand.NewSource(seed))),
		WithClock(clock.now),
		WithScheduler(sched.after),
	)
	return reg, notifier, clock, sched
}

// tick advances the clock and fires whatever came due.
func tick(clock *fakeClock, sched *manualScheduler, d time.Duration) {
	clock.advance(d)
	sched.runDue()
}

// fillRoom creates a room, seats four players and binds each to a connection
// "conn-0" .. "conn-3". The round-start task is scheduled but not yet fired.
func fillRoom(t *testing.T, reg *Registry, totalRounds int) (string, []string) {
	t.Helper()

	code, hostID, _, err := reg.CreateRoom("Test Room", "Alice", totalRounds)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	playerIDs := []string{hostID}
	for _, name := range []string{"Bob", "Carol", "Dave"} {
		id, _, err := reg.JoinRoom(code, name)
		if err != nil {
			t.Fatalf("JoinRoom(%s): %v", name, err)
		}
		playerIDs = append(playerIDs, id)
	}

	for i, id := range playerIDs {
		if err := reg.Bind(fmt.Sprintf("conn-%d", i), code, id); err != nil {
			t.Fatalf("Bind: %v", err)
		}
	}

	return code, playerIDs
}

// startRound fires the pending round-start task and the reveal delay,
// leaving the room in police-reveal.
func startRound(clock *fakeClock, sched *manualScheduler) {
	tick(clock, sched, startDelay)
	tick(clock, sched, revealDelay)
}

func getRoom(t *testing.T, reg *Registry, code string) *Room {
	t.Helper()
	room, ok := reg.lookup(code)
	if !ok {
		t.Fatalf("room %s not found", code)
	}
	return room
}

func playerWithRole(t *testing.T, reg *Registry, code string, role Role) *Player {
	t.Helper()
	room := getRoom(t, reg, code)
	room.mu.Lock()
	defer room.mu.Unlock()
	p := room.findByRole(role)
	if p == nil {
		t.Fatalf("no player with role %s", role)
	}
	return p
}

func connFor(t *testing.T, reg *Registry, code, playerID string) string {
	t.Helper()
	room := getRoom(t, reg, code)
	room.mu.Lock()
	defer room.mu.Unlock()
	p := room.findPlayer(playerID)
	if p == nil {
		t.Fatalf("player %s not found", playerID)
	}
	return p.ConnID
}
