package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dyarize/internal/diarize"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conv.wav")
	if err := os.WriteFile(path, []byte("RIFF-payload"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := New(Config{BaseURL: srv.URL + "/"}).Check(context.Background()); err != nil {
		t.Fatalf("healthy sidecar: %v", err)
	}
}

func TestCheckUnhealthyOrDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	if err := New(Config{BaseURL: srv.URL}).Check(context.Background()); !errors.Is(err, diarize.ErrDependencyMissing) {
		t.Fatalf("expected ErrDependencyMissing for 503, got %v", err)
	}
	url := srv.URL
	srv.Close()
	if err := New(Config{BaseURL: url}).Check(context.Background()); !errors.Is(err, diarize.ErrDependencyMissing) {
		t.Fatalf("expected ErrDependencyMissing for closed server, got %v", err)
	}
}

func TestDiarizeUploadsAndDecodes(t *testing.T) {
	var (
		gotAuth  string
		gotModel string
		gotMin   string
		gotNum   string
		gotAudio []byte
		gotName  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/diarize" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotMin = r.FormValue("min_speakers")
		gotNum = r.FormValue("num_speakers")
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = hdr.Filename
		gotAudio, _ = io.ReadAll(f)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segments": []map[string]any{
				{"speaker_id": "B", "start_time": 1.5, "end_time": 3.2},
				{"speaker_id": "A", "start_time": 0.0, "end_time": 1.5},
			},
		})
	}))
	defer srv.Close()

	b := New(Config{BaseURL: srv.URL})
	p, err := b.Open(context.Background(), "pyannote/speaker-diarization-3.1", "hf_secret")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	res, err := p.Diarize(context.Background(), writeAudio(t), diarize.Hints{MinSpeakers: 2})
	if err != nil {
		t.Fatalf("diarize: %v", err)
	}

	if gotAuth != "Bearer hf_secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotModel != "pyannote/speaker-diarization-3.1" || gotMin != "2" || gotNum != "" {
		t.Fatalf("form fields model=%q min=%q num=%q", gotModel, gotMin, gotNum)
	}
	if gotName != "conv.wav" || string(gotAudio) != "RIFF-payload" {
		t.Fatalf("audio upload name=%q body=%q", gotName, gotAudio)
	}

	turns := res.Turns()
	if len(turns) != 2 || turns[0].Speaker != "B" || turns[1].Speaker != "A" {
		t.Fatalf("turn order must be preserved: %+v", turns)
	}
	var rttm bytes.Buffer
	if err := res.WriteRTTM(&rttm); err != nil {
		t.Fatalf("rttm: %v", err)
	}
	if !strings.HasPrefix(rttm.String(), "SPEAKER conv 1 1.500 1.700 <NA> <NA> B <NA> <NA>\n") {
		t.Fatalf("unexpected rttm: %q", rttm.String())
	}
}

func TestDiarizeErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"http status", http.StatusForbidden, "gated model", "status 403"},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, "out of memory"},
		{"bad json", http.StatusOK, `{"segments":`, "decode diarization response"},
	}
	audio := writeAudio(t)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()
			p, _ := New(Config{BaseURL: srv.URL}).Open(context.Background(), "m", "t")
			_, err := p.Diarize(context.Background(), audio, diarize.Hints{})
			if err == nil || !strings.Contains(err.Error(), c.wantMsg) {
				t.Fatalf("expected error containing %q, got %v", c.wantMsg, err)
			}
		})
	}
}

func TestDiarizeMissingAudio(t *testing.T) {
	p, _ := New(Config{BaseURL: "http://127.0.0.1:1"}).Open(context.Background(), "m", "t")
	if _, err := p.Diarize(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), diarize.Hints{}); err == nil {
		t.Fatalf("expected error for missing audio")
	}
}
