package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"

	"rajarani-server/internal/game"
)

const (
	defaultPort    = 3001
	sweepInterval  = time.Minute
	sweepMaxIdle   = 10 * time.Minute
	chatRateLimit  = 10
	chatRateWindow = time.Second
)

type Server struct {
	port        int
	registry    *game.Registry
	connections *ConnectionManager
	gateway     *Gateway
	limiter     *RateLimiter

	stopSweeper chan struct{}
}

// NewServer wires the connection table, gateway and room registry together
// and returns both the wiring and a configured http.Server.
func NewServer() (*Server, *http.Server) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port < 1 || port > 65535 {
		port = defaultPort
	}

	connections := NewConnectionManager()
	gateway := NewGateway(connections)

	s := &Server{
		port:        port,
		registry:    game.NewRegistry(gateway),
		connections: connections,
		gateway:     gateway,
		limiter:     NewRateLimiter(chatRateLimit, chatRateWindow),
		stopSweeper: make(chan struct{}),
	}

	go s.sweepTask()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// sweepTask periodically removes waiting rooms that were created but
// abandoned before filling. Finished rooms are deleted by their own
// retention timers.
func (s *Server) sweepTask() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.registry.SweepIdle(sweepMaxIdle)
		case <-s.stopSweeper:
			return
		}
	}
}

// Shutdown stops background work and closes every live connection.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopSweeper)

	for _, id := range s.connections.ConnectionIDs() {
		if conn := s.connections.GetConnection(id); conn != nil {
			conn.Close(websocket.StatusGoingAway, "Server shutting down")
		}
		s.connections.RemoveConnection(id)
	}

	log.Info("server shutdown complete")
	return nil
}
