package pipeline

import (
	"io"
	"strings"
	"testing"

	"dyarize/internal/config"
)

func TestNewKnownBackends(t *testing.T) {
	cfg := config.Default()
	for _, name := range []string{"pyannote", "sidecar", " Sidecar "} {
		b, err := New(name, cfg, io.Discard)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if b.Name() != strings.ToLower(strings.TrimSpace(name)) {
			t.Fatalf("New(%q) returned %q", name, b.Name())
		}
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("whisperx", config.Default(), io.Discard)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "pyannote, sidecar") {
		t.Fatalf("error should list known backends: %v", err)
	}
}

func TestNewRejectsEmptyPython(t *testing.T) {
	cfg := config.Default()
	cfg.Pyannote.Python = ""
	if _, err := New("pyannote", cfg, io.Discard); err == nil {
		t.Fatalf("expected error for empty python command")
	}
}
