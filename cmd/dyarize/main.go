package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"dyarize/internal/control"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dyarize --audio <file> [flags]",
		Short: "Speaker diarization of an audio file with pyannote.audio",
		Long: `dyarize runs a pretrained pyannote.audio speaker-diarization pipeline on one audio file
and writes <stem>.rttm and <stem>.csv (start_s,end_s,speaker) into the output directory.

The model is gated on Hugging Face: accept its terms there, then pass --token or set HF_TOKEN.

Backends:
  pyannote   run pyannote.audio in a local Python interpreter (default; pyannote.python / DYARIZE_PYTHON)
  sidecar    POST the audio to a pyannote HTTP sidecar (sidecar.base_url / DYARIZE_SIDECAR_URL)

Env overrides: HF_TOKEN, DYARIZE_BACKEND, DYARIZE_MODEL, DYARIZE_OUTPUT_DIR,
               DYARIZE_PYTHON, DYARIZE_SIDECAR_URL, DYARIZE_LOG_LEVEL/FORMAT`,
		Example: `  dyarize --audio data/conv-250507.wav --token "$HF_TOKEN" --output-dir data/diarization
  dyarize --audio meeting.wav --min-speakers 2 --max-speakers 5
  dyarize --audio call.wav --backend sidecar
  dyarize doctor
  dyarize config init`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Version = version
	root.SetVersionTemplate("dyarize v{{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/dyarize/config.toml")

	control.BindDiarize(root, cfgPath)
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewConfigCmd(cfgPath))
	return root
}
