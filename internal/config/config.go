package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Провайдеры генеративной модели
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStub   = "stub"
)

var defaultExtensions = []string{"jpg", "png", "mkv", "mov", "mp4", "webm"}

type Config struct {
	DebugMode            bool          `env:"DEBUG_MODE"`                             //Режим дебага
	Provider             string        `env:"AI_PROVIDER"`                            // gemini|openai|stub
	WorkspaceDir         string        `env:"WORKSPACE_DIR"`                          // Папка, из которой читаются вложения
	AttachmentExtensions []string      `env:"ATTACHMENT_EXTENSIONS" envSeparator:";"` // Расширения файлов, которые считаются вложениями
	MaxAttachmentBytes   int64         `env:"MAX_ATTACHMENT_BYTES"`                   // Максимальный размер вложения (0 без ограничения)
	MaxHistoryTurns      int           `env:"MAX_HISTORY_TURNS"`                      // Сколько обменов реплик хранить в истории (0 без ограничения)
	TurnTimeout          time.Duration `env:"TURN_TIMEOUT"`                           // Таймаут одного хода (запрос + чтение потока)
	SpeakReplies         bool          `env:"SPEAK_REPLIES"`                          // Озвучивать ответы через TTS
	StreamReplies        bool          `env:"STREAM_REPLIES"`                         // Печатать ответ по мере генерации; false: одним куском

	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	GoogleTTS GoogleTTSConfig
}

// GeminiConfig конфигурация клиента Gemini.
type GeminiConfig struct {
	APIKey      string `env:"GEMINI_API_KEY"` // Если пуст, берётся GOOGLE_API_KEY, затем ADC
	TextModel   string `env:"GEMINI_TEXT_MODEL"`
	VisionModel string `env:"GEMINI_VISION_MODEL"`
}

// OpenAIConfig конфигурация клиента OpenAI (альтернативный провайдер).
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL"`
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Language        string  `env:"GOOGLE_TTS_LANGUAGE"`
	Voice           string  `env:"GOOGLE_TTS_VOICE"`
	SpeakingRate    float64 `env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch           float64 `env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb    float64 `env:"GOOGLE_TTS_VOLUME_DB"`
	// Тип входа: text|ssml. Пусто: auto (по наличию тега <speak> в тексте).
	InputType string `env:"GOOGLE_TTS_INPUT_TYPE"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:            false,
		Provider:             ProviderGemini,
		WorkspaceDir:         "workspace",
		AttachmentExtensions: append([]string(nil), defaultExtensions...),
		MaxAttachmentBytes:   20 << 20, // лимит inline-данных Gemini
		MaxHistoryTurns:      0,
		TurnTimeout:          2 * time.Minute,
		SpeakReplies:         false,
		StreamReplies:        true,
		Gemini: GeminiConfig{
			TextModel:   "gemini-1.5-flash",
			VisionModel: "gemini-1.5-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		GoogleTTS: GoogleTTSConfig{
			CredentialsPath: "service-account.json",
			Language:        "en-US",
			Voice:           "en-US-Standard-C",
			SpeakingRate:    1.0,
			InputType:       "", // auto
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и os.Args.
func NewConfig() *Config {
	cfg, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load собирает конфигурацию: дефолты → .env → ENV → флаги из args, затем валидирует.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	// Как и SDK Gemini, принимаем ключ и из GOOGLE_API_KEY
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}

	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага (подробные логи)")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "провайдер модели: gemini|openai|stub")
	fs.StringVar(&cfg.WorkspaceDir, "workspace-dir", cfg.WorkspaceDir, "папка, из которой читаются вложения")
	extFlag := strings.Join(cfg.AttachmentExtensions, ";")
	fs.StringVar(&extFlag, "attachment-extensions", extFlag, "расширения вложений, разделённые ';'")
	fs.Int64Var(&cfg.MaxAttachmentBytes, "max-attachment-bytes", cfg.MaxAttachmentBytes, "максимальный размер вложения в байтах (0 без ограничения)")
	fs.IntVar(&cfg.MaxHistoryTurns, "max-history-turns", cfg.MaxHistoryTurns, "сколько обменов реплик хранить в истории (0 без ограничения)")
	fs.DurationVar(&cfg.TurnTimeout, "turn-timeout", cfg.TurnTimeout, "таймаут одного хода, напр. 90s")
	fs.BoolVar(&cfg.SpeakReplies, "speak-replies", cfg.SpeakReplies, "озвучивать ответы через Google TTS")
	fs.BoolVar(&cfg.StreamReplies, "stream-replies", cfg.StreamReplies, "потоковый ответ; -stream-replies=false ждёт ответ целиком")
	// Gemini
	fs.StringVar(&cfg.Gemini.APIKey, "gemini-api-key", cfg.Gemini.APIKey, "API ключ Gemini (перекрывает ENV); если пусто, используется ADC")
	fs.StringVar(&cfg.Gemini.TextModel, "gemini-text-model", cfg.Gemini.TextModel, "модель Gemini для текстовых вопросов")
	fs.StringVar(&cfg.Gemini.VisionModel, "gemini-vision-model", cfg.Gemini.VisionModel, "модель Gemini для вопросов с вложением")
	// OpenAI
	fs.StringVar(&cfg.OpenAI.BaseURL, "openai-base-url", cfg.OpenAI.BaseURL, "base URL OpenAI-совместимого API (опционально)")
	fs.StringVar(&cfg.OpenAI.Model, "openai-model", cfg.OpenAI.Model, "модель OpenAI")
	// Google TTS
	fs.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json (также читается из ENV GOOGLE_APPLICATION_CREDENTIALS)")
	fs.StringVar(&cfg.GoogleTTS.Language, "google-tts-language", cfg.GoogleTTS.Language, "язык синтеза, напр. en-US")
	fs.StringVar(&cfg.GoogleTTS.Voice, "google-tts-voice", cfg.GoogleTTS.Voice, "имя голоса, напр. en-US-Standard-C")
	fs.Float64Var(&cfg.GoogleTTS.SpeakingRate, "google-tts-speaking-rate", cfg.GoogleTTS.SpeakingRate, "скорость речи (1.0 по умолчанию)")
	fs.StringVar(&cfg.GoogleTTS.InputType, "google-tts-input-type", cfg.GoogleTTS.InputType, "тип входа: text|ssml; пусто = авто по наличию <speak>")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.AttachmentExtensions = parseListFlag(extFlag, defaultExtensions)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения и готовит окружение для Google SDK.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderStub:
	default:
		return fmt.Errorf("unknown provider %q; use gemini|openai|stub", c.Provider)
	}
	if strings.TrimSpace(c.WorkspaceDir) == "" {
		return errors.New("workspace dir must not be empty")
	}
	if c.MaxHistoryTurns < 0 {
		return fmt.Errorf("max history turns must be >= 0, got %d", c.MaxHistoryTurns)
	}
	if c.MaxAttachmentBytes < 0 {
		return fmt.Errorf("max attachment bytes must be >= 0, got %d", c.MaxAttachmentBytes)
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("turn timeout must be positive, got %s", c.TurnTimeout)
	}

	// Для озвучки нужен cred-файл. Если ENV пуст, но в конфиге указан путь, устанавливаем ENV.
	if c.SpeakReplies {
		cred := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if cred == "" {
			if cp := strings.TrimSpace(c.GoogleTTS.CredentialsPath); cp != "" {
				_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
				cred = cp
			}
		}
		if cred == "" {
			return errors.New("google tts: GOOGLE_APPLICATION_CREDENTIALS is not set; use ENV or -google-tts-credentials")
		}
		if _, err := os.Stat(cred); err != nil {
			return fmt.Errorf("google tts: credentials file not found: %s", cred)
		}
	}
	return nil
}

// parseListFlag разбирает значение флага со списком, разделённым ';'
func parseListFlag(v string, def []string) []string {
	// Пустая строка → дефолт
	if v == "" {
		return append([]string(nil), def...)
	}
	parts := strings.Split(v, ";")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimPrefix(strings.TrimSpace(p), ".")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return append([]string(nil), def...)
	}
	return cleaned
}
