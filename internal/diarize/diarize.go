// Package diarize runs an external speaker-diarization pipeline on one audio
// file and persists the turns it returns as RTTM and CSV.
package diarize

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrAudioNotFound is returned when the input audio path does not exist.
	ErrAudioNotFound = errors.New("audio file not found")
	// ErrMissingToken is returned when no access token could be resolved.
	ErrMissingToken = errors.New("no Hugging Face token provided")
	// ErrDependencyMissing is wrapped by backends whose external library or
	// service cannot be reached.
	ErrDependencyMissing = errors.New("diarization backend unavailable")
)

// Hints are optional speaker-count constraints forwarded to the pipeline.
// Zero means unset.
type Hints struct {
	NumSpeakers int
	MinSpeakers int
	MaxSpeakers int
}

// Params is one invocation of the tool.
type Params struct {
	AudioPath string
	Model     string
	Token     string
	OutputDir string
	Hints     Hints
}

// Turn is a contiguous interval attributed to one speaker.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Result is what a pipeline returns. Turns are in the pipeline's own order.
type Result interface {
	Turns() []Turn
	// WriteRTTM serializes the result in the pipeline's native RTTM layout.
	WriteRTTM(w io.Writer) error
}

// Pipeline is an instantiated diarization model.
type Pipeline interface {
	Diarize(ctx context.Context, audioPath string, hints Hints) (Result, error)
}

// Backend is a way of reaching the external diarization library.
type Backend interface {
	Name() string
	// Check returns an error wrapping ErrDependencyMissing when the backend
	// cannot be used on this host.
	Check(ctx context.Context) error
	// Open instantiates the pretrained pipeline identified by model.
	Open(ctx context.Context, model, token string) (Pipeline, error)
}
