package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider != ProviderGemini {
		t.Fatalf("unexpected provider: %q", cfg.Provider)
	}
	if cfg.WorkspaceDir != "workspace" {
		t.Fatalf("unexpected workspace dir: %q", cfg.WorkspaceDir)
	}
	if !slices.Equal(cfg.AttachmentExtensions, []string{"jpg", "png", "mkv", "mov", "mp4", "webm"}) {
		t.Fatalf("unexpected extensions: %v", cfg.AttachmentExtensions)
	}
	if cfg.MaxHistoryTurns != 0 {
		t.Fatalf("history must be unbounded by default, got %d", cfg.MaxHistoryTurns)
	}
	if cfg.TurnTimeout != 2*time.Minute {
		t.Fatalf("unexpected turn timeout: %s", cfg.TurnTimeout)
	}
	if !cfg.StreamReplies {
		t.Fatal("replies must stream by default")
	}
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("MAX_HISTORY_TURNS", "4")
	t.Setenv("TURN_TIMEOUT", "30s")
	t.Setenv("ATTACHMENT_EXTENSIONS", "jpg;gif")

	cfg, err := Load(newFlagSet(), []string{"-provider", "STUB", "-max-history-turns", "2", "question"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider != ProviderStub {
		t.Fatalf("flag must override env and be normalized, got %q", cfg.Provider)
	}
	if cfg.MaxHistoryTurns != 2 {
		t.Fatalf("unexpected history turns: %d", cfg.MaxHistoryTurns)
	}
	if cfg.TurnTimeout != 30*time.Second {
		t.Fatalf("unexpected turn timeout: %s", cfg.TurnTimeout)
	}
	if !slices.Equal(cfg.AttachmentExtensions, []string{"jpg", "gif"}) {
		t.Fatalf("unexpected extensions: %v", cfg.AttachmentExtensions)
	}
}

func TestLoadGeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Gemini.APIKey != "google-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", cfg.Gemini.APIKey)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "llama" }},
		{"empty workspace", func(c *Config) { c.WorkspaceDir = " " }},
		{"negative history", func(c *Config) { c.MaxHistoryTurns = -1 }},
		{"negative attachment size", func(c *Config) { c.MaxAttachmentBytes = -1 }},
		{"zero timeout", func(c *Config) { c.TurnTimeout = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateSpeakRepliesNeedsCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	cfg := Defaults()
	cfg.SpeakReplies = true
	cfg.GoogleTTS.CredentialsPath = filepath.Join(t.TempDir(), "missing.json")
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing credentials file")
	}

	cred := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(cred, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.GoogleTTS.CredentialsPath = cred
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if got := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); got != cred {
		t.Fatalf("expected credentials env to be set, got %q", got)
	}
}

func TestParseListFlag(t *testing.T) {
	def := []string{"jpg"}
	if got := parseListFlag("", def); !slices.Equal(got, def) {
		t.Fatalf("empty value must give default, got %v", got)
	}
	if got := parseListFlag(" ; ", def); !slices.Equal(got, def) {
		t.Fatalf("blank items must give default, got %v", got)
	}
	if got := parseListFlag(".png; mp4 ;", def); !slices.Equal(got, []string{"png", "mp4"}) {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestLoadStreamRepliesSwitch(t *testing.T) {
	t.Setenv("STREAM_REPLIES", "false")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StreamReplies {
		t.Fatal("STREAM_REPLIES=false must disable streaming")
	}

	cfg, err = Load(newFlagSet(), []string{"-stream-replies=true"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.StreamReplies {
		t.Fatal("flag must override env")
	}
}
