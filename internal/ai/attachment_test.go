package ai

import (
	"bytes"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 7)
	}
	att := Attachment{Data: data}

	got, err := DecodeBase64(att.Base64())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round trip changed the payload")
	}
}

func TestBase64Empty(t *testing.T) {
	got, err := DecodeBase64(Attachment{}.Base64())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(got))
	}
}

func TestDataURL(t *testing.T) {
	att := Attachment{MIMEType: "image/png", Data: []byte("abc")}
	if got, want := att.DataURL(), "data:image/png;base64,YWJj"; got != want {
		t.Fatalf("DataURL = %q, want %q", got, want)
	}

	att.MIMEType = ""
	if got, want := att.DataURL(), "data:application/octet-stream;base64,YWJj"; got != want {
		t.Fatalf("DataURL = %q, want %q", got, want)
	}
}
