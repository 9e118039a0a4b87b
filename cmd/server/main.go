// Package main runs the audio transcription hub HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/audiohub/backend/config"
	"github.com/audiohub/backend/internal/credentials"
	"github.com/audiohub/backend/internal/middleware"
	"github.com/audiohub/backend/internal/playback"
	"github.com/audiohub/backend/internal/recordings"
	"github.com/audiohub/backend/internal/transcription"
	"github.com/audiohub/backend/pkg/google"
	"github.com/audiohub/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Transcription.WebhookURL == "" {
		logger.Warn("TRANSCRIPTION_WEBHOOK_URL not set; transcription submissions will be rejected")
	}
	if cfg.Google.SpreadsheetID == "" {
		logger.Warn("GOOGLE_SHEETS_ID not set; the recording library will be unavailable")
	}

	resolver := google.NewResolver(
		cfg.Google.ServiceAccountFile,
		time.Duration(cfg.Google.CacheTTLSec)*time.Second,
		logger,
	)

	recordingRepo := recordings.NewRepository(resolver, cfg.Google.SpreadsheetID, cfg.Google.SheetName, logger)
	recordingHandler := recordings.NewHandler(
		recordingRepo,
		resolver,
		cfg.Library.Categories,
		cfg.Features.Search,
		cfg.Features.CategoryFilter,
		logger,
	)

	sessions := transcription.NewManager(cfg.Library.DefaultCategory)
	pipeline := transcription.NewClient(
		cfg.Transcription.WebhookURL,
		cfg.Transcription.Language,
		time.Duration(cfg.Transcription.RequestTimeoutSec)*time.Second,
		logger,
	)
	transcriptionHandler := transcription.NewHandler(
		sessions,
		pipeline,
		cfg.Library.SupportedFormats,
		cfg.Library.SizeWarningMB,
		logger,
	)

	credentialHandler := credentials.NewHandler(resolver, logger)
	playbackHandler := playback.NewHandler(resolver, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Google connection
	router.GET("/credentials/status", credentialHandler.Status)
	router.POST("/credentials", credentialHandler.Upload)
	router.POST("/credentials/refresh", credentialHandler.Refresh)
	router.DELETE("/credentials", credentialHandler.Disconnect)

	// Recording library
	router.GET("/recordings", recordingHandler.List)
	router.POST("/recordings", recordingHandler.Append)
	router.GET("/recordings/export", recordingHandler.ExportCSV)
	router.PUT("/recordings/:row", recordingHandler.Update)
	router.DELETE("/recordings/:row", recordingHandler.Delete)
	router.GET("/recordings/:row/audio", recordingHandler.Audio)
	if cfg.Features.Dashboard {
		router.GET("/recordings/stats", recordingHandler.Stats)
		router.GET("/recordings/analytics", recordingHandler.Analytics)
	}

	// Audio playback by Drive link
	router.GET("/audio", playbackHandler.GetAudio)

	// Session draft and transcription pipeline
	router.GET("/session", transcriptionHandler.GetSession)
	router.PATCH("/session", transcriptionHandler.UpdateSession)
	router.POST("/session/reset", transcriptionHandler.ResetSession)
	router.POST("/session/audio", transcriptionHandler.UploadAudio)
	router.POST("/session/transcribe", transcriptionHandler.Transcribe)

	// WebSocket live capture (binary microphone chunks)
	router.GET("/ws/record", transcriptionHandler.Record)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
