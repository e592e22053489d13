// Package pyannote runs pyannote.audio in a child Python interpreter.
package pyannote

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"dyarize/internal/diarize"

	"github.com/google/shlex"
)

// Name is the registry key of this backend.
const Name = "pyannote"

//go:embed helper.py
var helperScript string

// Config configures the interpreter used to host pyannote.
type Config struct {
	// Python is a shell-style command line, e.g. "python3" or "uv run python".
	Python string
	// Stderr receives the child's stderr; nil means os.Stderr.
	Stderr io.Writer
}

// Backend implements diarize.Backend by shelling out to Python.
type Backend struct {
	argv   []string
	stderr io.Writer
}

// New splits cfg.Python into argv.
func New(cfg Config) (*Backend, error) {
	argv, err := shlex.Split(cfg.Python)
	if err != nil {
		return nil, fmt.Errorf("parse python command %q: %w", cfg.Python, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("python command is empty")
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Backend{argv: argv, stderr: stderr}, nil
}

func (b *Backend) Name() string { return Name }

// Interpreter returns the first word of the configured command.
func (b *Backend) Interpreter() string { return b.argv[0] }

// Check verifies the interpreter exists and can import pyannote.audio.
func (b *Backend) Check(ctx context.Context) error {
	if _, err := exec.LookPath(b.argv[0]); err != nil {
		return fmt.Errorf("%w: python interpreter %q not found; set pyannote.python in the config or DYARIZE_PYTHON",
			diarize.ErrDependencyMissing, b.argv[0])
	}
	cmd := b.command(ctx, "-c", "import pyannote.audio")
	if out, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(out))
		if i := strings.LastIndexByte(detail, '\n'); i >= 0 {
			detail = detail[i+1:]
		}
		return fmt.Errorf("%w: pyannote.audio is not installed. Install it with `pip install pyannote.audio` (%s)",
			diarize.ErrDependencyMissing, detail)
	}
	return nil
}

// Open binds model and token; the model itself is loaded by the child at
// Diarize time.
func (b *Backend) Open(_ context.Context, model, token string) (diarize.Pipeline, error) {
	return &pipeline{backend: b, model: model, token: token}, nil
}

func (b *Backend) command(ctx context.Context, args ...string) *exec.Cmd {
	full := append(append([]string{}, b.argv[1:]...), args...)
	return exec.CommandContext(ctx, b.argv[0], full...)
}

type pipeline struct {
	backend *Backend
	model   string
	token   string
}

type helperOutput struct {
	URI   string         `json:"uri"`
	RTTM  string         `json:"rttm"`
	Turns []diarize.Turn `json:"turns"`
}

// Diarize runs the helper script. A non-zero exit is returned as the raw
// *exec.ExitError; the Python traceback has already gone to stderr.
func (p *pipeline) Diarize(ctx context.Context, audioPath string, hints diarize.Hints) (diarize.Result, error) {
	args := []string{"-c", helperScript, "--audio", audioPath, "--model", p.model}
	if hints.NumSpeakers > 0 {
		args = append(args, "--num-speakers", strconv.Itoa(hints.NumSpeakers))
	}
	if hints.MinSpeakers > 0 {
		args = append(args, "--min-speakers", strconv.Itoa(hints.MinSpeakers))
	}
	if hints.MaxSpeakers > 0 {
		args = append(args, "--max-speakers", strconv.Itoa(hints.MaxSpeakers))
	}
	cmd := p.backend.command(ctx, args...)
	cmd.Env = append(os.Environ(), "HF_TOKEN="+p.token)
	cmd.Stderr = p.backend.stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	var res helperOutput
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("decode pyannote output: %w", err)
	}
	return &result{rttm: res.RTTM, turns: res.Turns}, nil
}

// result keeps pyannote's own RTTM text and writes it back verbatim.
type result struct {
	rttm  string
	turns []diarize.Turn
}

func (r *result) Turns() []diarize.Turn { return r.turns }

func (r *result) WriteRTTM(w io.Writer) error {
	_, err := io.WriteString(w, r.rttm)
	return err
}
