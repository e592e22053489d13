// Package pipeline resolves a configured backend name to a diarize.Backend.
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"dyarize/internal/config"
	"dyarize/internal/diarize"
	"dyarize/internal/pipeline/pyannote"
	"dyarize/internal/pipeline/sidecar"
)

// Factory builds a backend from configuration. stderr receives any output
// the external process writes there.
type Factory func(cfg *config.Config, stderr io.Writer) (diarize.Backend, error)

var factories = map[string]Factory{
	pyannote.Name: func(cfg *config.Config, stderr io.Writer) (diarize.Backend, error) {
		b, err := pyannote.New(pyannote.Config{Python: cfg.Pyannote.Python, Stderr: stderr})
		if err != nil {
			return nil, err
		}
		return b, nil
	},
	sidecar.Name: func(cfg *config.Config, _ io.Writer) (diarize.Backend, error) {
		return sidecar.New(sidecar.Config{
			BaseURL: cfg.Sidecar.BaseURL,
			Timeout: time.Duration(cfg.Sidecar.TimeoutSec * float64(time.Second)),
		}), nil
	},
}

// Names returns the registered backend names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the backend registered under name.
func New(name string, cfg *config.Config, stderr io.Writer) (diarize.Backend, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f(cfg, stderr)
}
