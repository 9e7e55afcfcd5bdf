package player

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error { c.closed = true; return nil }

func TestPlayUnsupportedFormat(t *testing.T) {
	r := &closeTracker{Reader: bytes.NewReader([]byte("OggS"))}
	err := New().Play(context.Background(), "ogg", r)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !r.closed {
		t.Fatal("reader must be closed on unsupported format")
	}
}

func TestDecoderFormats(t *testing.T) {
	for _, f := range []string{"mp3", "MP3", "wav", "WAV"} {
		if _, err := decoder(f); err != nil {
			t.Errorf("decoder(%q): %v", f, err)
		}
	}
}
