package google

import (
	"GeminiClient/internal/config"
	"GeminiClient/internal/service/tts/player"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
)

// Client реализует синтез речи через Google Cloud Text-to-Speech и воспроизводит результат.
type Client struct {
	cfg    config.GoogleTTSConfig
	player player.Player
	logger *zap.SugaredLogger
}

func New(cfg config.GoogleTTSConfig, p player.Player, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, player: p, logger: logger}
}

// Synthesize выполняет запрос к Google TTS и воспроизводит MP3.
func (c *Client) Synthesize(ctx context.Context, text string) error {
	// Клиент SDK берёт ключ из GOOGLE_APPLICATION_CREDENTIALS
	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("google tts init: %w", err)
	}
	defer ttsClient.Close()

	started := time.Now()
	resp, err := ttsClient.SynthesizeSpeech(ctx, buildRequest(text, c.cfg))
	if err != nil {
		return fmt.Errorf("google tts synthesize: %w", err)
	}
	c.logger.Infow("Google TTS synthesize completed", "took", time.Since(started).String())

	r := io.NopCloser(bytes.NewReader(resp.GetAudioContent()))
	return c.player.Play(ctx, "mp3", r)
}

// buildRequest тип входа: ssml явно или по наличию <speak>, иначе text.
func buildRequest(text string, gc config.GoogleTTSConfig) *ttspb.SynthesizeSpeechRequest {
	var input *ttspb.SynthesisInput
	it := strings.ToLower(strings.TrimSpace(gc.InputType))
	if it == "ssml" || (it == "" && strings.Contains(text, "<speak>")) {
		input = &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Ssml{Ssml: text}}
	} else {
		input = &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}}
	}

	voice := &ttspb.VoiceSelectionParams{
		LanguageCode: gc.Language,
		Name:         gc.Voice, // поддержка Standard/Wavenet голосов
	}

	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  gc.SpeakingRate,
		Pitch:         gc.Pitch,
	}
	return &ttspb.SynthesizeSpeechRequest{Input: input, Voice: voice, AudioConfig: audio}
}
