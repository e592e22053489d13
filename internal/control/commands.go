package control

import (
	"errors"
	"fmt"
	"os"

	"dyarize/internal/config"
	"dyarize/internal/doctor"
	"dyarize/internal/pipeline"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check token, python, and backend availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithFlags(cmd, *cfgPath)
			if err != nil {
				return err
			}
			backend, err := pipeline.New(cfg.Diarization.Backend, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			token, _ := cmd.Flags().GetString("token")
			results := doctor.Run(cmd.Context(), cfg, backend, cfg.ResolveToken(token))

			out := cmd.OutOrStdout()
			fancy := false
			if f, ok := out.(*os.File); ok {
				fancy = doctor.IsTerminal(f)
			}
			doctor.Render(out, results, fancy)
			if doctor.Failed(results) {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
	cmd.Flags().String("backend", config.DefaultBackend, "Diarization backend to check")
	cmd.Flags().String("token", "", "Hugging Face access token (defaults to "+config.TokenEnv+" env var)")
	return cmd
}

// NewConfigCmd groups config show/init.
func NewConfigCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}
	cmd.AddCommand(newConfigShowCmd(cfgPath))
	cmd.AddCommand(newConfigInitCmd(cfgPath))
	return cmd
}

func newConfigShowCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file + env)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cfg.HuggingFace.Token != "" {
				cfg.HuggingFace.Token = "<redacted>"
			}
			out, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.Path, out)
			return nil
		},
	}
}

func newConfigInitCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *cfgPath
			if path == "" {
				path = config.DefaultPath()
			}
			if path == "" {
				return errors.New("cannot determine config path; pass --config")
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}
