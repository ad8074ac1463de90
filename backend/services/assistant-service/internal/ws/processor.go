package ws

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/models"
	"chargeassist/backend/services/assistant-service/internal/service"
)

// Frame types exchanged over the chat socket.
const (
	frameTypeChat  = "chat"
	frameTypeReply = "reply"
	frameTypeError = "error"
)

// chatFrame is the inbound websocket frame.
type chatFrame struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		RadiusKm  float64 `json:"radius_km"`
	} `json:"location"`
}

// replyFrame is the outbound websocket frame.
type replyFrame struct {
	Type              string                 `json:"type"`
	Reply             *models.Turn           `json:"reply,omitempty"`
	Degraded          bool                   `json:"degraded,omitempty"`
	DirectoryDegraded bool                   `json:"directory_degraded,omitempty"`
	Recommendations   []models.ScoredStation `json:"recommendations,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

// ChatProcessor turns inbound frames into chat turns on the session bound
// at upgrade time.
type ChatProcessor struct {
	svc    *service.AssistantService
	logger *zap.Logger
}

// NewChatProcessor builds processor.
func NewChatProcessor(svc *service.AssistantService, logger *zap.Logger) *ChatProcessor {
	return &ChatProcessor{svc: svc, logger: logger}
}

// Process handles one inbound frame and returns the frame to send back.
func (p *ChatProcessor) Process(ctx context.Context, sessionID string, raw []byte) ([]byte, error) {
	var frame chatFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return errorFrame("invalid json")
	}
	if frame.Type != frameTypeChat {
		return errorFrame("unsupported frame type")
	}

	input := service.ChatInput{SessionID: sessionID, Message: frame.Message}
	if frame.Location != nil {
		input.Location = &service.Location{
			Latitude:  frame.Location.Latitude,
			Longitude: frame.Location.Longitude,
			RadiusKm:  frame.Location.RadiusKm,
		}
	}

	result, err := p.svc.Chat(ctx, input)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return errorFrame("session not found")
	case errors.Is(err, service.ErrEmptyMessage):
		return errorFrame("message is required")
	case err != nil:
		p.logger.Error("websocket chat turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return errorFrame("failed to process message")
	}

	return json.Marshal(replyFrame{
		Type:              frameTypeReply,
		Reply:             &result.Reply,
		Degraded:          result.Degraded,
		DirectoryDegraded: result.DirectoryDegraded,
		Recommendations:   result.Session.Recommendations,
	})
}

func errorFrame(message string) ([]byte, error) {
	return json.Marshal(replyFrame{Type: frameTypeError, Error: message})
}
