package main

import (
	"GeminiClient/internal/ai"
	"GeminiClient/internal/app/dispatcher"
	"GeminiClient/internal/config"
	"GeminiClient/internal/service/tts"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {

	cfg := config.NewConfig()

	// логи пишем в stderr, чтобы в stdout оставались только ответы
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Debugw("Failed to sync logger", "error", err)
		}
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"Provider", cfg.Provider,
	)

	// Ctrl+C прерывает текущий ход и завершает цикл
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Errorw("Assistant stopped", "error", err)
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	client, err := ai.NewClient(ctx, cfg, sugar)
	if err != nil {
		return err
	}
	if c, ok := client.(io.Closer); ok {
		defer c.Close()
	}

	d, err := dispatcher.New(cfg, client, os.Stdout, sugar)
	if err != nil {
		return err
	}
	if cfg.SpeakReplies {
		d.SetSpeaker(tts.NewGoogleSpeaker(cfg.GoogleTTS, sugar))
	}
	return d.Run(ctx, os.Stdin)
}
