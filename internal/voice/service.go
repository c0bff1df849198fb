// Package voice orchestrates the coaching pipeline: audio in, transcription,
// Oura context, Claude reply, persisted exchange.
package voice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/ai"
	"github.com/joewaine/best-self-ai/internal/dashboard"
	"github.com/joewaine/best-self-ai/internal/storage"
)

const placeholderTitle = "New conversation"

var (
	ErrConversationNotFound = errors.New("voice: conversation not found")
	ErrForbidden            = errors.New("voice: conversation belongs to another user")
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type Coach interface {
	Coach(ctx context.Context, in ai.CoachInput) (string, error)
	GenerateTitle(ctx context.Context, userMessage, assistantReply string) (string, error)
}

// ContextProvider supplies the Oura summary embedded in the coach prompt.
type ContextProvider interface {
	YesterdaySummary(ctx context.Context, token string) (*dashboard.Summary, error)
}

type Service struct {
	convos      storage.ConversationRepository
	settings    storage.SettingsRepository
	transcriber Transcriber
	coach       Coach
	summaries   ContextProvider
	logger      internal.Logger
	now         func() time.Time
}

func NewService(convos storage.ConversationRepository, settings storage.SettingsRepository, transcriber Transcriber, coach Coach, summaries ContextProvider, logger internal.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		convos:      convos,
		settings:    settings,
		transcriber: transcriber,
		coach:       coach,
		summaries:   summaries,
		logger:      logger,
		now:         now,
	}
}

type Result struct {
	Transcript        string `json:"transcript"`
	Reply             string `json:"reply"`
	ConversationID    string `json:"conversationId"`
	ConversationTitle string `json:"conversationTitle"`
	IsNewConversation bool   `json:"isNewConversation"`
}

type QuickResult struct {
	Transcript string `json:"transcript"`
	Reply      string `json:"reply"`
}

// TranscribeAndReply runs the full pipeline and appends the exchange to the
// conversation, creating one when no ID is given. Message persistence and
// title generation are sequential best-effort writes; there is no rollback.
func (s *Service) TranscribeAndReply(ctx context.Context, user *internal.User, audio []byte, filename, conversationID string) (*Result, error) {
	var (
		history []internal.Message
		title   string
		isNew   bool
	)

	if conversationID != "" {
		convo, err := s.convos.GetConversation(ctx, conversationID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
		if convo.UserID != user.ID {
			return nil, ErrForbidden
		}
		history = convo.Messages
		title = convo.Title
	} else {
		convo := &internal.Conversation{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Title:     placeholderTitle,
			CreatedAt: s.now(),
		}
		if err := s.convos.CreateConversation(ctx, convo); err != nil {
			return nil, err
		}
		conversationID = convo.ID
		title = convo.Title
		isNew = true
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, err
	}

	reply, err := s.coach.Coach(ctx, ai.CoachInput{
		Transcript:  transcript,
		OuraContext: s.ouraContext(ctx, user.ID),
		History:     history,
		Username:    user.Name,
	})
	if err != nil {
		return nil, err
	}

	if err := s.appendMessage(ctx, conversationID, internal.RoleUser, transcript); err != nil {
		return nil, err
	}
	if err := s.appendMessage(ctx, conversationID, internal.RoleAssistant, reply); err != nil {
		return nil, err
	}

	if isNew {
		generated, err := s.coach.GenerateTitle(ctx, transcript, reply)
		if err != nil {
			s.logger.Errorf("failed to generate title: %v", err)
			generated = placeholderTitle
		}
		if err := s.convos.UpdateConversationTitle(ctx, conversationID, generated); err != nil {
			s.logger.Errorf("failed to save title: %v", err)
		} else {
			title = generated
		}
	}

	return &Result{
		Transcript:        transcript,
		Reply:             reply,
		ConversationID:    conversationID,
		ConversationTitle: title,
		IsNewConversation: isNew,
	}, nil
}

// Quick is the stateless variant: no conversation, nothing persisted.
func (s *Service) Quick(ctx context.Context, user *internal.User, audio []byte, filename string) (*QuickResult, error) {
	transcript, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, err
	}
	reply, err := s.coach.Coach(ctx, ai.CoachInput{
		Transcript:  transcript,
		OuraContext: s.ouraContext(ctx, user.ID),
		Username:    user.Name,
	})
	if err != nil {
		return nil, err
	}
	return &QuickResult{Transcript: transcript, Reply: reply}, nil
}

// ouraContext is best-effort: no token or a vendor failure means the coach
// simply gets no wearable data.
func (s *Service) ouraContext(ctx context.Context, userID string) interface{} {
	token, err := s.settings.GetOuraToken(ctx, userID)
	if err != nil || token == "" {
		return nil
	}
	summary, err := s.summaries.YesterdaySummary(ctx, token)
	if err != nil {
		s.logger.Warnf("oura summary unavailable for coach context: %v", err)
		return nil
	}
	return summary
}

func (s *Service) appendMessage(ctx context.Context, conversationID string, role internal.Role, content string) error {
	return s.convos.AddMessage(ctx, conversationID, &internal.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	})
}
