// Package sidecar talks to a pyannote HTTP sidecar.
package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dyarize/internal/diarize"
)

const (
	// Name is the registry key of this backend.
	Name = "sidecar"

	defaultBaseURL = "http://localhost:8388"
)

// Config holds configuration for the sidecar backend.
type Config struct {
	BaseURL string
	// Timeout bounds a whole request; zero means no timeout.
	Timeout time.Duration
}

// Backend implements diarize.Backend over HTTP.
type Backend struct {
	cfg    Config
	client *http.Client
}

// New creates a sidecar backend.
func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Backend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (b *Backend) Name() string { return Name }

// Check probes GET /health.
func (b *Backend) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: diarization sidecar not reachable at %s: %v", diarize.ErrDependencyMissing, b.cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: diarization sidecar at %s is unhealthy (status %d)", diarize.ErrDependencyMissing, b.cfg.BaseURL, resp.StatusCode)
	}
	return nil
}

// Open binds model and token to subsequent requests.
func (b *Backend) Open(_ context.Context, model, token string) (diarize.Pipeline, error) {
	return &pipeline{backend: b, model: model, token: token}, nil
}

type pipeline struct {
	backend *Backend
	model   string
	token   string
}

// Diarize uploads the audio and decodes the segments.
func (p *pipeline) Diarize(ctx context.Context, audioPath string, hints diarize.Hints) (diarize.Result, error) {
	body, contentType, err := buildForm(audioPath, p.model, hints)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.backend.cfg.BaseURL+"/diarize", body)
	if err != nil {
		_ = body.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.backend.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("diarization error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", out.Error)
	}

	base := filepath.Base(audioPath)
	seg := &diarize.Segments{URI: strings.TrimSuffix(base, filepath.Ext(base))}
	for _, s := range out.Segments {
		seg.List = append(seg.List, diarize.Turn{Start: s.StartTime, End: s.EndTime, Speaker: s.SpeakerID})
	}
	return seg, nil
}

// buildForm streams the audio file into a multipart body.
func buildForm(audioPath, model string, hints diarize.Hints) (io.ReadCloser, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("read audio file: %w", err)
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer f.Close()
		pw.CloseWithError(writeForm(mw, f, filepath.Base(audioPath), model, hints))
	}()
	return pr, mw.FormDataContentType(), nil
}

func writeForm(mw *multipart.Writer, audio io.Reader, filename, model string, hints diarize.Hints) error {
	fields := [][2]string{{"model", model}}
	if hints.NumSpeakers > 0 {
		fields = append(fields, [2]string{"num_speakers", strconv.Itoa(hints.NumSpeakers)})
	}
	if hints.MinSpeakers > 0 {
		fields = append(fields, [2]string{"min_speakers", strconv.Itoa(hints.MinSpeakers)})
	}
	if hints.MaxSpeakers > 0 {
		fields = append(fields, [2]string{"max_speakers", strconv.Itoa(hints.MaxSpeakers)})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return fmt.Errorf("write audio data: %w", err)
	}
	return mw.Close()
}

type response struct {
	Segments []segment `json:"segments"`
	Error    string    `json:"error,omitempty"`
}

type segment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}
