package tts

import (
	"GeminiClient/internal/config"
	"GeminiClient/internal/service/tts/google"
	"GeminiClient/internal/service/tts/player"
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Synthesizer абстракция TTS. Метод воспроизводит речь и не возвращает контент.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

// Speaker озвучивает ответы модели, предварительно убирая markdown-разметку.
type Speaker struct {
	synth  Synthesizer
	logger *zap.SugaredLogger
}

func NewSpeaker(s Synthesizer, logger *zap.SugaredLogger) *Speaker {
	return &Speaker{synth: s, logger: logger}
}

// NewGoogleSpeaker Speaker поверх Google Cloud Text-to-Speech с воспроизведением через динамики.
func NewGoogleSpeaker(cfg config.GoogleTTSConfig, logger *zap.SugaredLogger) *Speaker {
	return NewSpeaker(google.New(cfg, player.NewWithVolume(cfg.VolumeGainDb), logger), logger)
}

func (s *Speaker) Speak(ctx context.Context, reply string) error {
	text := PlainText(reply)
	if text == "" {
		return nil
	}
	s.logger.Debugw("Speaking reply", "chars", len(text))
	return s.synth.Synthesize(ctx, text)
}

var (
	reFence   = regexp.MustCompile("(?m)^[ \t]*```.*$")
	reLink    = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	reHeading = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	reBullet  = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)
	reEmph    = regexp.MustCompile("[*_`~]+")
	reSpaces  = regexp.MustCompile(`[ \t]+`)
	reBlank   = regexp.MustCompile(`\n{2,}`)
)

// PlainText убирает из ответа markdown, чтобы синтезатор не зачитывал служебные символы.
func PlainText(md string) string {
	s := reFence.ReplaceAllString(md, "")
	s = reLink.ReplaceAllString(s, "$1")
	s = reHeading.ReplaceAllString(s, "")
	s = reBullet.ReplaceAllString(s, "")
	s = reEmph.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reBlank.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
