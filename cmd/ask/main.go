package main

import (
	"GeminiClient/internal/ai"
	"GeminiClient/internal/app/dispatcher"
	"GeminiClient/internal/config"
	"GeminiClient/internal/service/tts"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// ask задаёт один вопрос из аргументов командной строки, например:
//
//	ask -provider=gemini "What is in cat.jpg?"
func main() {

	cfg := config.NewConfig()
	question := strings.Join(flag.Args(), " ")

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if cfg.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() {
		_ = logger.Sync()
	}()

	if strings.TrimSpace(question) == "" {
		fmt.Fprintln(os.Stderr, "usage: ask [flags] <question>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ask(ctx, cfg, question, sugar); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func ask(ctx context.Context, cfg *config.Config, question string, sugar *zap.SugaredLogger) error {
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

	route, err := d.Handle(ctx, question)
	if err != nil {
		return err
	}
	if route == dispatcher.RouteExit {
		return errors.New("nothing to ask")
	}
	sugar.Debugw("Question answered", "route", route.String())
	return nil
}
