package ai

import "io"

// Stream поток ответа модели.
// Next возвращает io.EOF при штатном завершении потока.
type Stream interface {
	Next() (*Chunk, error)
	Close() error
}

// Chunk один фрагмент потокового ответа. Может быть пустым.
type Chunk struct {
	Candidates []Candidate
}

// Candidate один из вариантов ответа.
type Candidate struct {
	Parts []Part
}

// Text текст первой части первого кандидата, то есть то, что показывается пользователю.
func (c *Chunk) Text() string {
	if c == nil || len(c.Candidates) == 0 || len(c.Candidates[0].Parts) == 0 {
		return ""
	}
	return c.Candidates[0].Parts[0].Text
}

// TextChunk фрагмент с одним кандидатом и одной текстовой частью.
func TextChunk(text string) Chunk {
	return Chunk{Candidates: []Candidate{{Parts: []Part{{Text: text}}}}}
}

// SliceStream отдаёт заранее известные фрагменты, затем io.EOF.
type SliceStream struct {
	chunks []Chunk
	pos    int
	closed bool
}

func NewSliceStream(chunks ...Chunk) *SliceStream {
	return &SliceStream{chunks: chunks}
}

func (s *SliceStream) Next() (*Chunk, error) {
	if s.closed || s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	ch := &s.chunks[s.pos]
	s.pos++
	return ch, nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed сообщает, был ли вызван Close.
func (s *SliceStream) Closed() bool { return s.closed }
