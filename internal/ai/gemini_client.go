package ai

import (
	"GeminiClient/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Области доступа для Application Default Credentials, если API ключ не задан.
var geminiScopes = []string{
	"https://www.googleapis.com/auth/generative-language",
	"https://www.googleapis.com/auth/cloud-platform",
}

// GeminiClient отправляет текстовые и мультимодальные запросы в Gemini.
type GeminiClient struct {
	client      *genai.Client
	textModel   string
	visionModel string
	logger      *zap.SugaredLogger
}

// NewGeminiClient создаёт клиента. Без API ключа авторизуется через ADC.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.SugaredLogger) (*GeminiClient, error) {
	var opts []option.ClientOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	} else {
		ts, err := google.DefaultTokenSource(ctx, geminiScopes...)
		if err != nil {
			return nil, fmt.Errorf("gemini: missing GEMINI_API_KEY/GOOGLE_API_KEY and no default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiClient{
		client:      client,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		logger:      logger,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Stream(ctx context.Context, req Request) (Stream, error) {
	name := c.textModel
	if req.Mode == ModeVision {
		name = c.visionModel
	}
	model := c.client.GenerativeModel(name)
	applyGeneration(&model.GenerationConfig, req.Generation)
	model.SafetySettings = geminiSafety(req.Safety)

	parts, err := geminiParts(req.Parts)
	if err != nil {
		return nil, err
	}

	c.logger.Debugw("Gemini request", "mode", req.Mode.String(), "model", name, "parts", len(parts), "history", len(req.History), "stream", req.Stream)

	// История передаётся через ChatSession, одиночные запросы идут напрямую
	var cs *genai.ChatSession
	if len(req.History) > 0 {
		cs = model.StartChat()
		cs.History = geminiHistory(req.History)
	}

	if !req.Stream {
		var resp *genai.GenerateContentResponse
		if cs != nil {
			resp, err = cs.SendMessage(ctx, parts...)
		} else {
			resp, err = model.GenerateContent(ctx, parts...)
		}
		if err != nil {
			return nil, geminiError(err)
		}
		return singleResponse(resp), nil
	}

	if cs != nil {
		return &geminiStream{it: cs.SendMessageStream(ctx, parts...)}, nil
	}
	return &geminiStream{it: model.GenerateContentStream(ctx, parts...)}, nil
}

func applyGeneration(dst *genai.GenerationConfig, g GenerationConfig) {
	dst.SetMaxOutputTokens(g.MaxOutputTokens)
	dst.SetTemperature(g.Temperature)
	dst.SetTopP(g.TopP)
	dst.SetTopK(g.TopK)
}

func geminiSafety(p SafetyPolicy) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(p))
	for _, s := range p {
		out = append(out, &genai.SafetySetting{
			Category:  geminiCategory(s.Category),
			Threshold: geminiThreshold(s.Threshold),
		})
	}
	return out
}

func geminiCategory(c HarmCategory) genai.HarmCategory {
	switch c {
	case HarmHateSpeech:
		return genai.HarmCategoryHateSpeech
	case HarmHarassment:
		return genai.HarmCategoryHarassment
	case HarmSexuallyExplicit:
		return genai.HarmCategorySexuallyExplicit
	case HarmDangerousContent:
		return genai.HarmCategoryDangerousContent
	default:
		return genai.HarmCategoryUnspecified
	}
}

func geminiThreshold(t BlockThreshold) genai.HarmBlockThreshold {
	if t == BlockMediumAndAbove {
		return genai.HarmBlockMediumAndAbove
	}
	return genai.HarmBlockUnspecified
}

func geminiParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Attachment != nil {
			if len(p.Attachment.Data) == 0 {
				return nil, fmt.Errorf("gemini: %w: %s is empty", ErrUnsupportedMedia, p.Attachment.Path)
			}
			out = append(out, genai.Blob{MIMEType: p.Attachment.MIMEType, Data: p.Attachment.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out, nil
}

func geminiHistory(turns []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, &genai.Content{Role: string(t.Role), Parts: []genai.Part{genai.Text(t.Text)}})
	}
	return out
}

func chunkFromGemini(resp *genai.GenerateContentResponse) *Chunk {
	ch := &Chunk{}
	if resp == nil {
		return ch
	}
	for _, cand := range resp.Candidates {
		var c Candidate
		if cand != nil && cand.Content != nil {
			for _, p := range cand.Content.Parts {
				// Нетекстовые части сохраняем пустыми, чтобы не сдвигать порядок
				t, _ := p.(genai.Text)
				c.Parts = append(c.Parts, Part{Text: string(t)})
			}
		}
		ch.Candidates = append(ch.Candidates, c)
	}
	return ch
}

// singleResponse оборачивает нестриминговый ответ в поток из одного фрагмента.
func singleResponse(resp *genai.GenerateContentResponse) Stream {
	return NewSliceStream(*chunkFromGemini(resp))
}

func geminiError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("gemini: %w: %w", ErrBlocked, err)
	}
	return fmt.Errorf("gemini: %w", err)
}

type responseIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

// geminiStream адаптирует итератор SDK к Stream.
type geminiStream struct {
	it responseIterator
}

func (s *geminiStream) Next() (*Chunk, error) {
	resp, err := s.it.Next()
	if errors.Is(err, iterator.Done) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, geminiError(err)
	}
	return chunkFromGemini(resp), nil
}

// Close ничего не делает: поток SDK завершается вместе с контекстом запроса.
func (s *geminiStream) Close() error { return nil }
