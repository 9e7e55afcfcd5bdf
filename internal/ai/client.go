package ai

import (
	"GeminiClient/internal/config"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Client интерфейс для взаимодействия с генеративной моделью. Все реализации должны быть взаимозаменяемыми.
type Client interface {
	// Stream отправляет запрос и возвращает поток фрагментов ответа.
	Stream(ctx context.Context, req Request) (Stream, error)
}

var (
	// ErrBlocked сервис заблокировал запрос или ответ по настройкам безопасности.
	ErrBlocked = errors.New("blocked by safety settings")
	// ErrUnsupportedMedia транспорт не умеет передавать вложение такого типа.
	ErrUnsupportedMedia = errors.New("unsupported attachment media type")
)

// NewClient создаёт клиента выбранного в конфигурации провайдера.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.Gemini, logger)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI, logger), nil
	case config.ProviderStub:
		return NewStubClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
