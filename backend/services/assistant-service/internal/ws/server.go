package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/models"
	"chargeassist/backend/services/assistant-service/internal/service"
)

// SessionChecker verifies a session exists before the upgrade.
type SessionChecker interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
}

// TokenValidator verifies a signed session handle and returns the session
// id it names.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Server upgrades HTTP connections to WebSockets for chat.
type Server struct {
	manager      *Manager
	processor    MessageProcessor
	checker      SessionChecker
	validator    TokenValidator
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server. validator may be nil; the session id then
// comes from the session_id query parameter.
func NewServer(manager *Manager, processor MessageProcessor, checker SessionChecker, validator TokenValidator, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		manager:      manager,
		processor:    processor,
		checker:      checker,
		validator:    validator,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is HTTP handler for the /ws/chat endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := s.resolveSession(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if _, err := s.checker.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		s.logger.Error("session lookup failed before upgrade", zap.Error(err))
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(sessionID, conn, s.processor, s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		cancel()
	})
	s.manager.Add(connection)

	go connection.Start(ctx)
	s.logger.Info("chat client connected", zap.String("session_id", sessionID))
}

func (s *Server) resolveSession(r *http.Request) (string, error) {
	if s.validator != nil {
		token := r.URL.Query().Get("token")
		if token == "" {
			return "", errors.New("token is required")
		}
		sessionID, err := s.validator.ValidateToken(token)
		if err != nil {
			return "", errors.New("invalid token")
		}
		return sessionID, nil
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		return "", errors.New("session_id is required")
	}
	return sessionID, nil
}
