package diarize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dyarize/internal/audio"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Outputs are the two artifacts written by a run.
type Outputs struct {
	RTTM string
	CSV  string
}

// Runner validates a run, calls the backend and persists the result.
type Runner struct {
	Backend Backend
	Logger  logrus.FieldLogger
	Stdout  io.Writer
}

// Validate checks the preconditions that do not need the backend.
func Validate(p Params) error {
	if _, err := os.Stat(p.AudioPath); err != nil {
		return fmt.Errorf("%w: %s", ErrAudioNotFound, p.AudioPath)
	}
	if strings.TrimSpace(p.Token) == "" {
		return fmt.Errorf("%w. Pass --token or set HF_TOKEN. "+
			"You must also accept the model terms on Hugging Face for %s", ErrMissingToken, p.Model)
	}
	return nil
}

// OutputPaths derives <dir>/<stem>.rttm and <dir>/<stem>.csv from the audio
// file's base name.
func OutputPaths(audioPath, outputDir string) Outputs {
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Outputs{
		RTTM: filepath.Join(outputDir, stem+".rttm"),
		CSV:  filepath.Join(outputDir, stem+".csv"),
	}
}

// Run executes one diarization. Errors from the backend's Open and Diarize
// are returned exactly as produced.
func (r *Runner) Run(ctx context.Context, p Params) (Outputs, error) {
	log := r.logger().WithFields(logrus.Fields{
		"run":     uuid.NewString(),
		"backend": r.Backend.Name(),
		"model":   p.Model,
	})

	if err := Validate(p); err != nil {
		return Outputs{}, err
	}
	if err := r.Backend.Check(ctx); err != nil {
		return Outputs{}, err
	}
	r.probe(log, p.AudioPath)

	pipeline, err := r.Backend.Open(ctx, p.Model, p.Token)
	if err != nil {
		return Outputs{}, err
	}
	started := time.Now()
	log.WithField("audio", p.AudioPath).Info("diarizing")
	result, err := pipeline.Diarize(ctx, p.AudioPath, p.Hints)
	if err != nil {
		return Outputs{}, err
	}
	log.WithFields(logrus.Fields{
		"turns":   len(result.Turns()),
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Info("diarization complete")

	out, err := Persist(result, p.AudioPath, p.OutputDir)
	if err != nil {
		return Outputs{}, err
	}
	if r.Stdout != nil {
		_, _ = fmt.Fprintf(r.Stdout, "Wrote RTTM: %s\n", out.RTTM)
		_, _ = fmt.Fprintf(r.Stdout, "Wrote CSV:  %s\n", out.CSV)
	}
	return out, nil
}

// Persist creates outputDir and writes the RTTM and CSV files for result.
func Persist(result Result, audioPath, outputDir string) (Outputs, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("create output dir: %w", err)
	}
	out := OutputPaths(audioPath, outputDir)
	if err := writeFile(out.RTTM, result.WriteRTTM); err != nil {
		return Outputs{}, fmt.Errorf("write rttm: %w", err)
	}
	if err := writeFile(out.CSV, func(w io.Writer) error { return WriteCSV(w, result.Turns()) }); err != nil {
		return Outputs{}, fmt.Errorf("write csv: %w", err)
	}
	return out, nil
}

// writeFile writes through a temporary sibling and renames it over path.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (r *Runner) probe(log logrus.FieldLogger, path string) {
	if !audio.IsWAV(path) {
		return
	}
	info, err := audio.Probe(path)
	if err != nil {
		log.WithError(err).Warn("could not read wav header; leaving decoding to the pipeline")
		return
	}
	log.WithFields(logrus.Fields{
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
		"bit_depth":   info.BitDepth,
		"duration":    info.Duration.Round(time.Millisecond),
	}).Info("audio")
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Logger != nil {
		return r.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
