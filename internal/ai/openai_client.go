package ai

import (
	"GeminiClient/internal/config"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// OpenAIClient отправляет текст и картинки в OpenAI через Chat Completions.
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewOpenAIClient(cfg config.OpenAIConfig, logger *zap.SugaredLogger) *OpenAIClient {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	params, err := c.params(req)
	if err != nil {
		return nil, err
	}
	// TopK и настройки безопасности у OpenAI не поддерживаются
	c.logger.Debugw("OpenAI request", "mode", req.Mode.String(), "model", c.model, "messages", len(params.Messages), "stream", req.Stream, "ignored_top_k", req.Generation.TopK)

	if !req.Stream {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		return NewSliceStream(chunkFromCompletion(resp)), nil
	}
	return &openAIStream{src: c.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

func (c *OpenAIClient) params(req Request) (openai.ChatCompletionNewParams, error) {
	msgs, err := openAIMessages(req)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.model),
		Messages:            msgs,
		MaxCompletionTokens: openai.Int(int64(req.Generation.MaxOutputTokens)),
		Temperature:         openai.Float(float64(req.Generation.Temperature)),
		TopP:                openai.Float(float64(req.Generation.TopP)),
	}, nil
}

// openAIMessages переводит историю и части запроса в сообщения Chat Completions.
func openAIMessages(req Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+1)
	for _, t := range req.History {
		if t.Role == RoleModel {
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(t.Text))
		}
	}

	hasAttachment := false
	for _, p := range req.Parts {
		if p.Attachment != nil {
			hasAttachment = true
			break
		}
	}
	if !hasAttachment {
		var b strings.Builder
		for _, p := range req.Parts {
			b.WriteString(p.Text)
		}
		return append(msgs, openai.UserMessage(b.String())), nil
	}

	content := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Attachment == nil {
			content = append(content, openai.TextContentPart(p.Text))
			continue
		}
		if !strings.HasPrefix(p.Attachment.MIMEType, "image/") {
			return nil, fmt.Errorf("openai: %w: %s (%s)", ErrUnsupportedMedia, p.Attachment.Name, p.Attachment.MIMEType)
		}
		content = append(content, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: p.Attachment.DataURL(),
		}))
	}
	return append(msgs, openai.UserMessage(content)), nil
}

// chunkFromCompletion переводит нестриминговый ответ в один фрагмент, по кандидату на choice.
func chunkFromCompletion(resp *openai.ChatCompletion) Chunk {
	var ch Chunk
	if resp == nil {
		return ch
	}
	for _, choice := range resp.Choices {
		ch.Candidates = append(ch.Candidates, Candidate{Parts: []Part{{Text: choice.Message.Content}}})
	}
	return ch
}

type chunkSource interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// openAIStream адаптирует SSE поток SDK к Stream.
type openAIStream struct {
	src chunkSource
}

func (s *openAIStream) Next() (*Chunk, error) {
	if !s.src.Next() {
		if err := s.src.Err(); err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		return nil, io.EOF
	}
	cur := s.src.Current()
	ch := &Chunk{}
	for _, choice := range cur.Choices {
		ch.Candidates = append(ch.Candidates, Candidate{Parts: []Part{{Text: choice.Delta.Content}}})
	}
	return ch, nil
}

func (s *openAIStream) Close() error {
	return s.src.Close()
}
