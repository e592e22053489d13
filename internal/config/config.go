package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultModel     = "pyannote/speaker-diarization-3.1"
	DefaultOutputDir = "data/diarization"
	DefaultBackend   = "pyannote"
	TokenEnv         = "HF_TOKEN"
	defaultConfigDir = ".config/dyarize"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Diarization struct {
		Backend   string `toml:"backend"` // pyannote, sidecar
		Model     string `toml:"model"`
		OutputDir string `toml:"output_dir"`
	} `toml:"diarization"`

	HuggingFace struct {
		Token string `toml:"token"` // used only when neither --token nor HF_TOKEN is set
	} `toml:"huggingface"`

	Pyannote struct {
		Python string `toml:"python"` // shell-style, e.g. "uv run python"
	} `toml:"pyannote"`

	Sidecar struct {
		BaseURL    string  `toml:"base_url"`
		TimeoutSec float64 `toml:"timeout_sec"` // 0 disables the timeout
	} `toml:"sidecar"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		File   string `toml:"file"`   // optional rotating log file
	} `toml:"logging"`

	Path string `toml:"-"`
}

// Default returns Config populated with defaults.
func Default() *Config {
	cfg := &Config{}

	cfg.Diarization.Backend = DefaultBackend
	cfg.Diarization.Model = DefaultModel
	cfg.Diarization.OutputDir = DefaultOutputDir

	cfg.Pyannote.Python = "python3"

	cfg.Sidecar.BaseURL = "http://localhost:8388"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	return cfg
}

// DefaultPath is ~/.config/dyarize/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultConfigDir, "config.toml")
}

// Load loads config from file, applying defaults. A missing file is not an
// error; the defaults (plus env overrides) are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	cfg.Path = path

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// ResolveToken picks the access token: flag, then HF_TOKEN, then the file.
func (c *Config) ResolveToken(flag string) string {
	if t := strings.TrimSpace(flag); t != "" {
		return t
	}
	if t := strings.TrimSpace(os.Getenv(TokenEnv)); t != "" {
		return t
	}
	return strings.TrimSpace(c.HuggingFace.Token)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DYARIZE_BACKEND"); v != "" {
		cfg.Diarization.Backend = v
	}
	if v := os.Getenv("DYARIZE_MODEL"); v != "" {
		cfg.Diarization.Model = v
	}
	if v := os.Getenv("DYARIZE_OUTPUT_DIR"); v != "" {
		cfg.Diarization.OutputDir = v
	}
	if v := os.Getenv("DYARIZE_PYTHON"); v != "" {
		cfg.Pyannote.Python = v
	}
	if v := os.Getenv("DYARIZE_SIDECAR_URL"); v != "" {
		cfg.Sidecar.BaseURL = v
	}
	if v := os.Getenv("DYARIZE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DYARIZE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
