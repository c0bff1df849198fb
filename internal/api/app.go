package api

import (
	"context"

	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/ai"
	"github.com/joewaine/best-self-ai/internal/auth"
	"github.com/joewaine/best-self-ai/internal/dashboard"
	"github.com/joewaine/best-self-ai/internal/oura"
	"github.com/joewaine/best-self-ai/internal/speech"
	"github.com/joewaine/best-self-ai/internal/storage"
	"github.com/joewaine/best-self-ai/internal/voice"
)

type DashboardService interface {
	Today(ctx context.Context, userID string) (*dashboard.TodaySnapshot, error)
	Week(ctx context.Context, userID string) (*dashboard.WeekSnapshot, error)
	Sync(userID string)
	YesterdaySummary(ctx context.Context, token string) (*dashboard.Summary, error)
}

type VoiceService interface {
	TranscribeAndReply(ctx context.Context, user *internal.User, audio []byte, filename, conversationID string) (*voice.Result, error)
	Quick(ctx context.Context, user *internal.User, audio []byte, filename string) (*voice.QuickResult, error)
}

type ProfileFetcher interface {
	FetchPersonalInfo(ctx context.Context, token string) (*oura.PersonalInfo, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceName string) ([]byte, error)
	Voices() []speech.VoicePreset
}

// Coach is used by handlers that talk to Claude outside the voice pipeline.
type Coach interface {
	Coach(ctx context.Context, in ai.CoachInput) (string, error)
}

type App interface {
	Logger() internal.Logger
	Auth() auth.Provider
	Dashboard() DashboardService
	Voice() VoiceService
	Conversations() storage.ConversationRepository
	Settings() storage.SettingsRepository
	Profile() ProfileFetcher
	TTS() Synthesizer
}
