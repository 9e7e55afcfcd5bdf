package ai

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
)

func TestOpenAIMessagesText(t *testing.T) {
	req := BuildText([]Turn{{Role: RoleUser, Text: "q1"}, {Role: RoleModel, Text: "a1"}}, "q2")
	msgs, err := openAIMessages(req)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages len = %d, want 3", len(msgs))
	}
	if msgs[0].OfUser == nil || msgs[0].OfUser.Content.OfString.Value != "q1" {
		t.Fatalf("first message = %+v", msgs[0])
	}
	if msgs[1].OfAssistant == nil || msgs[1].OfAssistant.Content.OfString.Value != "a1" {
		t.Fatalf("second message = %+v", msgs[1])
	}
	if msgs[2].OfUser == nil || msgs[2].OfUser.Content.OfString.Value != "q2" {
		t.Fatalf("last message = %+v", msgs[2])
	}
}

func TestOpenAIMessagesVision(t *testing.T) {
	req := BuildVision("what is this", Attachment{Name: "a.png", MIMEType: "image/png", Data: []byte("abc")})
	msgs, err := openAIMessages(req)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].OfUser == nil {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	parts := msgs[0].OfUser.Content.OfArrayOfContentParts
	if len(parts) != 2 {
		t.Fatalf("parts len = %d, want 2", len(parts))
	}
	if parts[0].OfImageURL == nil || !strings.HasPrefix(parts[0].OfImageURL.ImageURL.URL, "data:image/png;base64,") {
		t.Fatalf("first part must be the image: %+v", parts[0])
	}
	if parts[1].OfText == nil || parts[1].OfText.Text != "what is this" {
		t.Fatalf("second part must be the text: %+v", parts[1])
	}
}

func TestOpenAIMessagesRejectsVideo(t *testing.T) {
	req := BuildVision("what happens", Attachment{Name: "clip.mp4", MIMEType: "video/mp4", Data: []byte{1}})
	_, err := openAIMessages(req)
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

type fakeChunkSource struct {
	chunks []openai.ChatCompletionChunk
	cur    openai.ChatCompletionChunk
	err    error
	closed bool
}

func (f *fakeChunkSource) Next() bool {
	if len(f.chunks) == 0 {
		return false
	}
	f.cur, f.chunks = f.chunks[0], f.chunks[1:]
	return true
}

func (f *fakeChunkSource) Current() openai.ChatCompletionChunk { return f.cur }
func (f *fakeChunkSource) Err() error                          { return f.err }
func (f *fakeChunkSource) Close() error                        { f.closed = true; return nil }

func deltaChunk(text string) openai.ChatCompletionChunk {
	return openai.ChatCompletionChunk{Choices: []openai.ChatCompletionChunkChoice{
		{Delta: openai.ChatCompletionChunkChoiceDelta{Content: text}},
	}}
}

func TestOpenAIStream(t *testing.T) {
	src := &fakeChunkSource{chunks: []openai.ChatCompletionChunk{deltaChunk("a"), {}, deltaChunk("b")}}
	s := &openAIStream{src: src}

	var got []string
	for {
		ch, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		got = append(got, ch.Text())
	}
	if strings.Join(got, "|") != "a||b" {
		t.Fatalf("unexpected fragments: %q", got)
	}
	if err := s.Close(); err != nil || !src.closed {
		t.Fatalf("close: %v, closed=%v", err, src.closed)
	}
}

func TestOpenAIStreamError(t *testing.T) {
	boom := errors.New("stream broken")
	s := &openAIStream{src: &fakeChunkSource{err: boom}}
	if _, err := s.Next(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped stream error, got %v", err)
	}
}

func TestChunkFromCompletion(t *testing.T) {
	resp := &openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "whole reply"}},
		{Message: openai.ChatCompletionMessage{Content: "alternative"}},
	}}
	st := NewSliceStream(chunkFromCompletion(resp))

	ch, err := st.Next()
	if err != nil || ch.Text() != "whole reply" || len(ch.Candidates) != 2 {
		t.Fatalf("first chunk = %+v, %v", ch, err)
	}
	if _, err := st.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected a single chunk, got %v", err)
	}
	if len(chunkFromCompletion(nil).Candidates) != 0 {
		t.Fatal("nil response must give an empty chunk")
	}
}
