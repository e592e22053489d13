package doctor

import (
	"context"
	"os"
	"os/exec"

	"dyarize/internal/config"
	"dyarize/internal/diarize"
	"dyarize/internal/pipeline/pyannote"
)

// Result represents a diagnostic check.
type Result struct {
	Name     string
	Pass     bool
	Optional bool
	Detail   string
}

// Run executes doctor checks against the selected backend.
func Run(ctx context.Context, cfg *config.Config, backend diarize.Backend, token string) []Result {
	results := []Result{
		checkConfig(cfg.Path),
		checkToken(token, cfg.Diarization.Model),
	}
	if py, ok := backend.(*pyannote.Backend); ok {
		results = append(results, checkInterpreter(py.Interpreter()))
	}
	results = append(results, checkBackend(ctx, backend))
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Pass && !r.Optional {
			return true
		}
	}
	return false
}

func checkConfig(path string) Result {
	label := "config"
	if path == "" {
		return Result{Name: label, Optional: true, Detail: "no home directory; using defaults"}
	}
	if _, err := os.Stat(path); err != nil {
		return Result{Name: label, Optional: true, Detail: "not found; using defaults (dyarize config init)"}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkToken(token, model string) Result {
	label := "token"
	if token == "" {
		return Result{Name: label, Detail: "not set; pass --token or set " + config.TokenEnv + " and accept the terms of " + model}
	}
	return Result{Name: label, Pass: true, Detail: mask(token)}
}

func checkInterpreter(cmd string) Result {
	label := "python"
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		return Result{Name: label, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

func checkBackend(ctx context.Context, backend diarize.Backend) Result {
	label := "backend " + backend.Name()
	if err := backend.Check(ctx); err != nil {
		return Result{Name: label, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: "ok"}
}

func mask(token string) string {
	if len(token) <= 6 {
		return "******"
	}
	return token[:3] + "…" + token[len(token)-3:]
}
