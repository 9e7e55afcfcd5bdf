package session

import (
	"GeminiClient/internal/ai"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session текстовый диалог с историей реплик.
// Реплика пользователя и ответ модели добавляются в историю вместе,
// только когда поток ответа дочитан до конца.
type Session struct {
	id       string
	client   ai.Client
	maxTurns int
	stream   bool
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	history []ai.Turn
}

// New maxTurns <= 0, история не ограничена. Иначе хранится не больше maxTurns обменов (пар user/model).
func New(client ai.Client, maxTurns int, logger *zap.SugaredLogger) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		client:   client,
		maxTurns: maxTurns,
		stream:   true,
		logger:   logger.With("session", id),
	}
}

// WithStreaming false просит у модели ответ целиком, одним фрагментом.
func (s *Session) WithStreaming(on bool) *Session {
	s.stream = on
	return s
}

func (s *Session) ID() string { return s.id }

// History возвращает копию истории.
func (s *Session) History() []ai.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ai.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Send отправляет реплику вместе со всей предыдущей историей.
// Возвращённый поток при достижении конца фиксирует обмен в истории.
func (s *Session) Send(ctx context.Context, utterance string) (ai.Stream, error) {
	req := ai.BuildText(s.History(), utterance)
	req.Stream = s.stream
	s.logger.Debugw("Text turn", "history", len(req.History), "stream", req.Stream)

	st, err := s.client.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &recordingStream{Stream: st, session: s, utterance: utterance}, nil
}

func (s *Session) commit(utterance, reply string) {
	if reply == "" {
		s.logger.Warnw("Empty reply, exchange not added to history")
		return
	}
	s.mu.Lock()
	s.history = append(s.history,
		ai.Turn{Role: ai.RoleUser, Text: utterance},
		ai.Turn{Role: ai.RoleModel, Text: reply},
	)
	if s.maxTurns > 0 && len(s.history) > 2*s.maxTurns {
		// вытесняем самые старые обмены целыми парами
		drop := len(s.history) - 2*s.maxTurns
		s.history = append(s.history[:0], s.history[drop:]...)
	}
	n := len(s.history)
	s.mu.Unlock()
	s.logger.Debugw("Exchange recorded", "turns", n)
}

// recordingStream собирает текст ответа и фиксирует обмен на io.EOF.
type recordingStream struct {
	ai.Stream
	session   *Session
	utterance string
	reply     strings.Builder
	done      bool
}

func (r *recordingStream) Next() (*ai.Chunk, error) {
	ch, err := r.Stream.Next()
	if errors.Is(err, io.EOF) {
		if !r.done {
			r.done = true
			r.session.commit(r.utterance, r.reply.String())
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	r.reply.WriteString(ch.Text())
	return ch, nil
}
