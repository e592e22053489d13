package control

import (
	"dyarize/internal/config"
	"dyarize/internal/diarize"
	"dyarize/internal/logging"
	"dyarize/internal/pipeline"

	"github.com/spf13/cobra"
)

// BindDiarize registers the diarization flags on cmd and makes it run a
// diarization when invoked.
func BindDiarize(cmd *cobra.Command, cfgPath *string) {
	f := cmd.Flags()
	f.String("audio", "", "Path to input audio file")
	f.String("model", config.DefaultModel, "Hugging Face model id for the diarization pipeline")
	f.String("token", "", "Hugging Face access token (defaults to "+config.TokenEnv+" env var)")
	f.String("output-dir", config.DefaultOutputDir, "Directory to write outputs (.rttm and .csv)")
	f.String("backend", config.DefaultBackend, "Diarization backend: pyannote or sidecar")
	f.Int("num-speakers", 0, "Exact number of speakers, if known")
	f.Int("min-speakers", 0, "Lower bound on the number of speakers")
	f.Int("max-speakers", 0, "Upper bound on the number of speakers")
	_ = cmd.MarkFlagRequired("audio")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWithFlags(cmd, *cfgPath)
		if err != nil {
			return err
		}
		logger, err := logging.Configure(cfg)
		if err != nil {
			return err
		}
		backend, err := pipeline.New(cfg.Diarization.Backend, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		f := cmd.Flags()
		audio, _ := f.GetString("audio")
		token, _ := f.GetString("token")
		var hints diarize.Hints
		hints.NumSpeakers, _ = f.GetInt("num-speakers")
		hints.MinSpeakers, _ = f.GetInt("min-speakers")
		hints.MaxSpeakers, _ = f.GetInt("max-speakers")

		r := &diarize.Runner{Backend: backend, Logger: logger, Stdout: cmd.OutOrStdout()}
		_, err = r.Run(cmd.Context(), diarize.Params{
			AudioPath: audio,
			Model:     cfg.Diarization.Model,
			Token:     cfg.ResolveToken(token),
			OutputDir: cfg.Diarization.OutputDir,
			Hints:     hints,
		})
		return err
	}
}

// loadWithFlags loads the config file and lets explicitly set flags win.
func loadWithFlags(cmd *cobra.Command, cfgPath string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Diarization.Model, _ = f.GetString("model")
	}
	if f.Changed("output-dir") {
		cfg.Diarization.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("backend") {
		cfg.Diarization.Backend, _ = f.GetString("backend")
	}
	return cfg, nil
}
