package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	log "github.com/sirupsen/logrus"
)

// Gateway translates state-machine output into websocket frames. It is the
// game package's Notifier: the state machine addresses connections by id and
// the gateway resolves them against the connection table.
type Gateway struct {
	connections *ConnectionManager
}

func NewGateway(cm *ConnectionManager) *Gateway {
	return &Gateway{connections: cm}
}

// Send delivers one event to a single connection. Connections that vanished
// between emission and delivery are skipped silently; write failures are
// logged and otherwise dropped, the read loop will notice the dead socket.
func (g *Gateway) Send(connID, event string, payload any) {
	conn := g.connections.GetConnection(connID)
	if conn == nil {
		return
	}

	msg := ServerMessage{Type: event, Payload: payload}
	if err := writeMessage(conn, context.Background(), msg); err != nil {
		log.WithFields(log.Fields{"conn": connID, "event": event}).Warnf("send failed: %v", err)
	}
}

func writeMessage(conn *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
