package stream

import (
	"GeminiClient/internal/ai"
	"context"
	"errors"
	"io"
	"iter"

	"go.uber.org/zap"
)

// Consumer превращает поток ответа в последовательность текстовых фрагментов.
type Consumer struct {
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Consumer {
	return &Consumer{logger: logger}
}

// Fragments лениво читает поток и отдаёт текст первой части первого кандидата каждого фрагмента.
// Пустые фрагменты пропускаются с диагностикой. Ошибка потока или отмена контекста
// отдаются один раз и завершают последовательность. Поток закрывается по окончании.
// Последовательность одноразовая.
func (c *Consumer) Fragments(ctx context.Context, st ai.Stream) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer func() {
			if err := st.Close(); err != nil {
				c.logger.Warnw("Failed to close response stream", "error", err)
			}
		}()
		for {
			if ctx.Err() != nil {
				yield("", context.Cause(ctx))
				return
			}
			ch, err := st.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if len(ch.Candidates) == 0 {
				c.logger.Info("No candidates found in the response.")
				continue
			}
			parts := ch.Candidates[0].Parts
			if len(parts) == 0 {
				c.logger.Info("No parts found in the candidate's content.")
				continue
			}
			if parts[0].Text == "" {
				continue
			}
			if !yield(parts[0].Text, nil) {
				return
			}
		}
	}
}
