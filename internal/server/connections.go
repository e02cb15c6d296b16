package server

import (
	"sync"

	"github.com/coder/websocket"
)

// PlayerBinding is the non-owning (room code, player id) pair a connection
// announced via join-room. Gameplay identity is always resolved from here,
// never trusted from later payloads.
type PlayerBinding struct {
	RoomCode string
	PlayerID string
}

// ConnectionManager holds the live sockets and the session binding table,
// both keyed by connection id. Entries never outlive their connection.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	bindings    map[string]PlayerBinding
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		bindings:    make(map[string]PlayerBinding),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, id)
	delete(cm.bindings, id)
}

// Bind records which seat a connection speaks for.
func (cm *ConnectionManager) Bind(id, roomCode, playerID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.bindings[id] = PlayerBinding{RoomCode: roomCode, PlayerID: playerID}
}

// Unbind drops a connection's binding, returning what it was bound to.
// ok is false if the connection never bound.
func (cm *ConnectionManager) Unbind(id string) (PlayerBinding, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	binding, ok := cm.bindings[id]
	delete(cm.bindings, id)
	return binding, ok
}

// BindingFor looks up the seat a connection is bound to.
func (cm *ConnectionManager) BindingFor(id string) (PlayerBinding, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	binding, ok := cm.bindings[id]
	return binding, ok
}

// GetConnection returns the socket for a connection id, or nil.
func (cm *ConnectionManager) GetConnection(id string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[id]
}

// ConnectionIDs snapshots the ids of all live connections.
func (cm *ConnectionManager) ConnectionIDs() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	ids := make([]string, 0, len(cm.connections))
	for id := range cm.connections {
		ids = append(ids, id)
	}
	return ids
}
