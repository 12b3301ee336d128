package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"voice-assistant/internal/auth"
	"voice-assistant/internal/config"
	"voice-assistant/internal/convai"
	"voice-assistant/internal/display"
	"voice-assistant/internal/history"
	"voice-assistant/internal/session"
	"voice-assistant/internal/storage"
	"voice-assistant/internal/telegram"
	"voice-assistant/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	convLog, err := storage.NewFileLog(cfg.LogFilePath)
	if err != nil {
		log.Fatalf("failed to init conversation log: %v", err)
	}
	rec := history.NewRecorder(convLog)

	var audio convai.AudioInterface = convai.NullAudio{}
	if cfg.AudioInputPath != "" || cfg.AudioOutputPath != "" {
		audio = convai.NewWAVAudio(cfg.AudioInputPath, cfg.AudioOutputPath)
	}

	conversation := convai.NewConversation(
		convai.NewClient(cfg.APIKey, cfg.BaseURL),
		cfg.AgentID,
		convai.WithRequiresAuth(cfg.RequiresAuth),
		convai.WithAudioInterface(audio),
		convai.WithCallbacks(convai.Callbacks{
			AgentResponse:           rec.OnAgentResponse,
			AgentResponseCorrection: rec.OnAgentResponseCorrection,
			UserTranscript:          rec.OnUserTranscript,
		}),
	)

	runner := session.NewRunner(ctx, conversation, rec)

	panel := web.NewPanel()
	loop := display.NewLoop(convLog.Path(), cfg.PollInterval, panel)

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.New(cfg.TelegramBotToken, auth.New(cfg.AllowedUsers), runner)
		if err != nil {
			log.Printf("failed to create telegram bot: %v", err)
		} else {
			loop.Attach(bot)
			go bot.Start(ctx)
		}
	}

	srv := web.NewServer(cfg.HTTPPort, runner, panel, cfg.PollInterval)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	if err := loop.Run(ctx); err != nil {
		log.Fatalf("❌ display loop failed: %v", err)
	}

	log.Println("shutting down")
	if err := srv.Stop(); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	runner.Wait()
	log.Println("voice assistant stopped")
}
