package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/ai"
	"github.com/joewaine/best-self-ai/internal/api"
	"github.com/joewaine/best-self-ai/internal/auth"
	"github.com/joewaine/best-self-ai/internal/cache"
	"github.com/joewaine/best-self-ai/internal/config"
	"github.com/joewaine/best-self-ai/internal/dashboard"
	"github.com/joewaine/best-self-ai/internal/metrics"
	"github.com/joewaine/best-self-ai/internal/oura"
	"github.com/joewaine/best-self-ai/internal/speech"
	"github.com/joewaine/best-self-ai/internal/storage"
	"github.com/joewaine/best-self-ai/internal/voice"
)

// app wires the concrete services behind the api.App interface.
type app struct {
	logger   internal.Logger
	authProv auth.Provider
	dash     *dashboard.Service
	voiceSvc *voice.Service
	store    storage.Store
	ouraCli  *oura.Client
	tts      *speech.ElevenLabs
}

func (a *app) Logger() internal.Logger                       { return a.logger }
func (a *app) Auth() auth.Provider                           { return a.authProv }
func (a *app) Dashboard() api.DashboardService               { return a.dash }
func (a *app) Voice() api.VoiceService                       { return a.voiceSvc }
func (a *app) Conversations() storage.ConversationRepository { return a.store }
func (a *app) Settings() storage.SettingsRepository          { return a.store }
func (a *app) Profile() api.ProfileFetcher                   { return a.ouraCli }
func (a *app) TTS() api.Synthesizer                          { return a.tts }

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	recorder := metrics.NewPrometheusRecorder()
	dashCache := cache.New(time.Now)
	ouraClient := oura.NewClient(logger)
	dash := dashboard.NewService(ouraClient, store, dashCache, recorder, logger, time.Now)
	coach := ai.NewClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, logger)
	transcriber := speech.NewTranscriber(cfg.OpenAIAPIKey)
	tts := speech.NewElevenLabs(cfg.ElevenLabsAPIKey, logger)
	voiceSvc := voice.NewService(store, store, transcriber, coach, dash, logger, time.Now)
	authProv := auth.NewSessionAuth(store, store, logger, time.Now)

	a := &app{
		logger:   logger,
		authProv: authProv,
		dash:     dash,
		voiceSvc: voiceSvc,
		store:    store,
		ouraCli:  ouraClient,
		tts:      tts,
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.RequestIDMiddleware())
	r.Use(metrics.Middleware(recorder))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:5174", cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/api/auth/register", api.Register(a))
	r.POST("/api/auth/login", api.Login(a))
	r.POST("/api/auth/logout", api.Logout(a))

	// Protected routes
	authed := r.Group("/", auth.Middleware(authProv))
	authed.GET("/api/auth/me", api.Me(a))
	authed.GET("/api/dashboard/today", api.GetDashboardToday(a))
	authed.GET("/api/dashboard/week", api.GetDashboardWeek(a))
	authed.POST("/api/dashboard/sync", api.PostDashboardSync(a))
	authed.GET("/api/oura/yesterday", api.GetOuraYesterday(a))
	authed.GET("/api/conversations", api.ListConversations(a))
	authed.POST("/api/conversations", api.CreateConversation(a))
	authed.GET("/api/conversations/:id", api.GetConversation(a))
	authed.DELETE("/api/conversations/:id", api.DeleteConversation(a))
	authed.PATCH("/api/conversations/:id", api.UpdateConversationTitle(a))
	authed.POST("/api/settings/oura-token", api.SetOuraToken(a))
	authed.GET("/api/settings/oura-token", api.GetOuraTokenStatus(a))
	authed.GET("/api/settings/profile", api.GetProfile(a))
	authed.POST("/api/voice/transcribe-and-reply", api.PostTranscribeAndReply(a))
	authed.POST("/api/voice/quick", api.PostVoiceQuick(a))
	authed.POST("/api/tts", api.PostTTS(a))
	authed.GET("/api/tts/voices", api.GetVoices(a))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Infof("Server running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}
