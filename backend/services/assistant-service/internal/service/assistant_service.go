package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/clients"
	"chargeassist/backend/services/assistant-service/internal/models"
	"chargeassist/backend/services/assistant-service/internal/recommend"
	redisstore "chargeassist/backend/services/assistant-service/internal/redis"
	"chargeassist/backend/services/assistant-service/internal/repository"
)

// Service-level errors surfaced to the transport layer.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrSearchLogDisabled = errors.New("search history is disabled")
)

// FallbackReply is appended as the assistant turn when the generation
// backend fails, so the transcript stays coherent across the outage.
const FallbackReply = "Sorry, I ran into a problem while generating a response. Please try again."

const systemPrompt = `You are an EV Charging Assistant. Help users find charging stations and answer EV-related questions.

Be friendly, concise, and helpful. If station data is provided, reference it naturally.`

// StationDirectory finds charging stations near a point.
type StationDirectory interface {
	Search(ctx context.Context, query clients.DirectoryQuery) ([]models.Station, error)
}

// ReplyGenerator produces assistant text from a role-tagged conversation.
type ReplyGenerator interface {
	Complete(ctx context.Context, messages []clients.ChatMessage) (string, error)
}

// SessionStore persists session transcripts.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// SearchLogger records completed station searches.
type SearchLogger interface {
	Insert(ctx context.Context, record *repository.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]repository.SearchRecord, error)
}

// Options tunes transcript growth, context assembly and search defaults.
type Options struct {
	HistoryLimit    int
	MaxStoredTurns  int
	ContextStations int
	DefaultRadiusKm float64
	MaxResults      int
	Weights         recommend.Weights
}

// Location is a geographic point with an optional search radius.
type Location struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// SearchInput describes one station search. SessionID is optional; when set
// the ranked result also becomes that session's station context.
type SearchInput struct {
	SessionID string
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// ChatInput carries one user message addressed to a session. Location is
// optional; when present the turn refreshes station recommendations before
// the reply is generated.
type ChatInput struct {
	SessionID string
	Message   string
	Location  *Location
}

// ChatResult is the assistant reply plus degraded-mode flags.
type ChatResult struct {
	Session           *models.Session
	Reply             models.Turn
	Degraded          bool
	DirectoryDegraded bool
}

// AssistantService owns sessions, station search and reply generation.
type AssistantService struct {
	directory StationDirectory
	generator ReplyGenerator
	store     SessionStore
	searchLog SearchLogger
	opts      Options
	logger    *zap.Logger
}

// NewAssistantService builds service. searchLog may be nil when search
// history persistence is disabled.
func NewAssistantService(
	directory StationDirectory,
	generator ReplyGenerator,
	store SessionStore,
	searchLog SearchLogger,
	opts Options,
	logger *zap.Logger,
) *AssistantService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	if opts.MaxStoredTurns <= 0 {
		opts.MaxStoredTurns = 100
	}
	if opts.ContextStations <= 0 {
		opts.ContextStations = 3
	}
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = 10
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.Weights == (recommend.Weights{}) {
		opts.Weights = recommend.DefaultWeights()
	}
	return &AssistantService{
		directory: directory,
		generator: generator,
		store:     store,
		searchLog: searchLog,
		opts:      opts,
		logger:    logger,
	}
}

// StartSession creates and persists an empty conversation.
func (s *AssistantService) StartSession(ctx context.Context) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New().String(),
		Turns:     []models.Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("session started", zap.String("session_id", session.ID))
	return session, nil
}

// GetSession loads a session by id.
func (s *AssistantService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, redisstore.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// EndSession removes a session and its transcript.
func (s *AssistantService) EndSession(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// SearchStations queries the directory and returns stations ranked best
// first. Directory failures propagate as clients.ErrDirectoryUnavailable
// so the caller can surface them.
func (s *AssistantService) SearchStations(ctx context.Context, input SearchInput) ([]models.ScoredStation, error) {
	var session *models.Session
	if input.SessionID != "" {
		loaded, err := s.GetSession(ctx, input.SessionID)
		if err != nil {
			return nil, err
		}
		session = loaded
	}

	ranked, err := s.searchAndRank(ctx, input.SessionID, Location{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		RadiusKm:  input.RadiusKm,
	})
	if err != nil {
		return nil, err
	}

	if session != nil {
		session.Recommendations = ranked
		session.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return ranked, nil
}

// Chat appends the user turn, generates a reply grounded in the session's
// station recommendations, appends the assistant turn and persists the
// session. A directory failure during an in-turn search degrades to the
// previous recommendations; a generation failure degrades to FallbackReply.
// The transcript is preserved in both cases.
func (s *AssistantService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.GetSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{}

	if input.Location != nil {
		ranked, searchErr := s.searchAndRank(ctx, session.ID, *input.Location)
		if searchErr != nil {
			s.logger.Warn("station search failed during chat turn",
				zap.String("session_id", session.ID), zap.Error(searchErr))
			result.DirectoryDegraded = true
		} else {
			session.Recommendations = ranked
		}
	}

	appendTurn(session, models.Turn{
		Role:      models.RoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}, s.opts.MaxStoredTurns)

	reply, genErr := s.generator.Complete(ctx, s.buildMessages(session))
	if genErr != nil {
		s.logger.Warn("reply generation failed",
			zap.String("session_id", session.ID), zap.Error(genErr))
		reply = FallbackReply
		result.Degraded = true
	}

	replyTurn := models.Turn{
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	appendTurn(session, replyTurn, s.opts.MaxStoredTurns)
	session.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	result.Session = session
	result.Reply = replyTurn
	return result, nil
}

// RecentSearches returns the latest logged searches, newest first.
func (s *AssistantService) RecentSearches(ctx context.Context, limit int) ([]repository.SearchRecord, error) {
	if s.searchLog == nil {
		return nil, ErrSearchLogDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.searchLog.Recent(ctx, limit)
}

func (s *AssistantService) searchAndRank(ctx context.Context, sessionID string, loc Location) ([]models.ScoredStation, error) {
	radius := loc.RadiusKm
	if radius <= 0 {
		radius = s.opts.DefaultRadiusKm
	}
	stations, err := s.directory.Search(ctx, clients.DirectoryQuery{
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		RadiusKm:   radius,
		MaxResults: s.opts.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	ranked := recommend.Rank(stations, s.opts.Weights)
	s.logSearch(ctx, sessionID, loc.Latitude, loc.Longitude, radius, ranked)
	return ranked, nil
}

// logSearch records the search when history is enabled. Failures are logged
// and swallowed; history never fails a search.
func (s *AssistantService) logSearch(ctx context.Context, sessionID string, lat, lon, radius float64, ranked []models.ScoredStation) {
	if s.searchLog == nil {
		return
	}
	record := &repository.SearchRecord{
		SessionID: sessionID,
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
		Results:   len(ranked),
	}
	if len(ranked) > 0 {
		record.TopScore = ranked[0].Score
	}
	if err := s.searchLog.Insert(ctx, record); err != nil {
		s.logger.Warn("failed to log station search", zap.Error(err))
	}
}

// buildMessages assembles the completion request: the system prompt carrying
// current station context, then the newest transcript turns up to the
// history limit.
func (s *AssistantService) buildMessages(session *models.Session) []clients.ChatMessage {
	messages := make([]clients.ChatMessage, 0, s.opts.HistoryLimit+1)
	messages = append(messages, clients.ChatMessage{
		Role:    string(models.RoleSystem),
		Content: s.promptWithContext(session),
	})

	turns := session.Turns
	if len(turns) > s.opts.HistoryLimit {
		turns = turns[len(turns)-s.opts.HistoryLimit:]
	}
	for _, turn := range turns {
		messages = append(messages, clients.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}

func (s *AssistantService) promptWithContext(session *models.Session) string {
	stationCtx := s.stationContext(session.Recommendations)
	if stationCtx == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\nContext: " + stationCtx
}

// stationContext renders the top recommendations as numbered lines with
// distance in kilometers.
func (s *AssistantService) stationContext(ranked []models.ScoredStation) string {
	if len(ranked) == 0 {
		return ""
	}
	top := ranked
	if len(top) > s.opts.ContextStations {
		top = top[:s.opts.ContextStations]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d recommended stations:\n", len(top))
	for i, rs := range top {
		fmt.Fprintf(&b, "%d. %s - %.1fkm away\n", i+1, rs.Station.Name, rs.Station.DistanceKm)
	}
	return b.String()
}

// appendTurn adds a turn and trims the transcript to the newest limit
// entries.
func appendTurn(session *models.Session, turn models.Turn, limit int) {
	session.Turns = append(session.Turns, turn)
	if limit > 0 && len(session.Turns) > limit {
		session.Turns = session.Turns[len(session.Turns)-limit:]
	}
}
