package server

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"rajarani-server/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	router := httprouter.New()

	router.POST("/api/rooms", s.createRoomHandler)
	router.POST("/api/rooms/:code/join", s.joinRoomHandler)
	router.HandlerFunc(http.MethodGet, "/api/health", s.healthHandler)
	router.HandlerFunc(http.MethodGet, "/ws", s.websocketHandler)

	return corsMiddleware(router)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.registry.RoomCount(),
	})
}

func (s *Server) createRoomHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code, hostID, summary, err := s.registry.CreateRoom(req.RoomName, req.PlayerName, req.TotalRounds)
	if err != nil {
		writeError(w, statusForCode(game.ErrorCode(err)), game.ErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, CreateRoomResponse{
		Success:  true,
		RoomCode: code,
		PlayerID: hostID,
		Room:     summary,
	})
}

func (s *Server) joinRoomHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := game.NormalizeRoomCode(ps.ByName("code"))
	if err := game.ValidateRoomCode(code); err != nil {
		writeError(w, http.StatusBadRequest, game.ErrorMessage(err))
		return
	}

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	playerID, summary, err := s.registry.JoinRoom(code, req.PlayerName)
	if err != nil {
		writeError(w, statusForCode(game.ErrorCode(err)), game.ErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		Success:  true,
		PlayerID: playerID,
		Room:     summary,
	})
}

// statusForCode maps the registry error taxonomy onto HTTP status classes:
// not-found lookups are 404, everything else at this boundary is a 400.
func statusForCode(code string) int {
	switch code {
	case game.CodeRoomNotFound, game.CodePlayerNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warnf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// websocketHandler runs one connection's read loop. The connection is
// anonymous until its join-room handshake binds it to a seat; on exit the
// binding (if any) feeds the disconnect path, which starts the grace-period
// clock for that player.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connID := uuid.New().String()
	log.WithField("conn", connID).Info("connection opened")
	s.connections.AddConnection(connID, socket)

	defer func() {
		binding, wasBound := s.connections.Unbind(connID)
		s.connections.RemoveConnection(connID)
		s.limiter.Forget(connID)
		log.WithField("conn", connID).Info("connection closed")

		if wasBound {
			s.registry.MarkDisconnected(binding.RoomCode, binding.PlayerID)
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		if !s.limiter.Allow(connID) {
			s.sendError(connID, "Too many messages, slow down")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(connID, "Invalid JSON")
			continue
		}

		switch msg.Type {
		case "join-room":
			s.handleJoinRoom(connID, msg.Payload)
		case "chat-message":
			s.handleChatMessage(connID, msg.Payload)
		case "police-reveal":
			s.handlePoliceReveal(connID)
		case "make-guess":
			s.handleMakeGuess(connID, msg.Payload)
		default:
			s.sendError(connID, "Unknown message type: "+msg.Type)
		}
	}
}

// handleJoinRoom is the bind handshake. This is the one event whose payload
// ids are honored; every later event resolves identity from the binding table.
func (s *Server) handleJoinRoom(connID string, payload json.RawMessage) {
	var req JoinRoomEvent
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "Invalid join-room payload")
		return
	}

	code := game.NormalizeRoomCode(req.RoomCode)
	if err := s.registry.Bind(connID, code, req.PlayerID); err != nil {
		s.sendError(connID, game.ErrorMessage(err))
		return
	}

	s.connections.Bind(connID, code, req.PlayerID)
}

func (s *Server) handleChatMessage(connID string, payload json.RawMessage) {
	var req ChatMessageEvent
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "Invalid chat-message payload")
		return
	}

	binding, ok := s.connections.BindingFor(connID)
	if !ok {
		return
	}
	s.registry.PostChat(binding.RoomCode, binding.PlayerID, req.Message)
}

func (s *Server) handlePoliceReveal(connID string) {
	binding, ok := s.connections.BindingFor(connID)
	if !ok {
		return
	}
	s.registry.PoliceReveal(binding.RoomCode, binding.PlayerID)
}

func (s *Server) handleMakeGuess(connID string, payload json.RawMessage) {
	var req MakeGuessEvent
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "Invalid make-guess payload")
		return
	}

	binding, ok := s.connections.BindingFor(connID)
	if !ok {
		return
	}
	s.registry.MakeGuess(binding.RoomCode, binding.PlayerID, req.GuessedThiefID)
}

func (s *Server) sendError(connID, message string) {
	s.gateway.Send(connID, "error", ErrorMessage{Message: message})
}
