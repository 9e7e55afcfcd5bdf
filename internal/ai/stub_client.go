package ai

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// StubClient заглушка, которая не делает реальных запросов.
// Запоминает все запросы и отвечает заданными фрагментами.
type StubClient struct {
	mu       sync.Mutex
	reply    []Chunk
	err      error
	requests []Request
}

func NewStubClient() *StubClient {
	return &StubClient{reply: []Chunk{TextChunk("запрос получен")}}
}

// WithReply задаёт фрагменты, которыми заглушка отвечает на каждый запрос.
func (c *StubClient) WithReply(chunks ...Chunk) *StubClient {
	c.mu.Lock()
	c.reply = chunks
	c.mu.Unlock()
	return c
}

// WithError заставляет Stream возвращать err.
func (c *StubClient) WithError(err error) *StubClient {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	return c
}

func (c *StubClient) Stream(_ context.Context, req Request) (Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if !req.Stream {
		// как и настоящие транспорты, без стриминга отдаём ответ одним фрагментом
		var b strings.Builder
		for i := range c.reply {
			b.WriteString(c.reply[i].Text())
		}
		return NewSliceStream(TextChunk(b.String())), nil
	}
	return NewSliceStream(slices.Clone(c.reply)...), nil
}

// Requests возвращает копию принятых запросов.
func (c *StubClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.requests)
}
