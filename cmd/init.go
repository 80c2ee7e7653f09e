package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/config"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/keywords"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/llm"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a " + config.FileName + " configuration file",
	Long: `Initialize writes a ` + config.FileName + ` file with the default settings into the
given directory (the current directory when omitted). The LLM URL and model
default to $OLLAMA_URL and $MODEL_NAME when those are set.

Examples:
  # Initialize for the current directory
  anonymizer init

  # Initialize a C++ project and check that Ollama answers
  anonymizer init --preset cpp --check src/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initPreset string
	initCheck  bool
	overwrite  bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initPreset, "preset", "p", keywords.DefaultPreset, "Keyword preset to record")
	initCmd.Flags().BoolVar(&initCheck, "check", false, "Test the LLM connection after writing")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing "+config.FileName)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	targetDir := "."
	if len(args) == 1 {
		targetDir = args[0]
	}
	if info, err := os.Stat(targetDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", targetDir)
	}

	if _, err := keywords.Preset(initPreset); err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Preset = initPreset
	cfg.LLM.URL = getEnvOrDefault("OLLAMA_URL", cfg.LLM.URL)
	cfg.LLM.Model = getEnvOrDefault("MODEL_NAME", cfg.LLM.Model)
	// Leave the worker count to the machine that runs the tool.
	cfg.Workers = 0

	path := filepath.Join(targetDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
	}
	if err := config.Write(path, cfg, true); err != nil {
		return err
	}
	fmt.Fprintf(out, "💾 Wrote %s\n", path)

	if initCheck {
		if err := checkConnection(cmd.Context(), cfg); err != nil {
			fmt.Fprintf(out, "⚠️  Cannot connect to %s: %v\n", cfg.LLM.URL, err)
		} else {
			fmt.Fprintf(out, "🤖 %s is reachable\n", cfg.LLM.URL)
		}
	}
	return nil
}

// pingTimeout bounds the connectivity check run by init --check.
const pingTimeout = 10 * time.Second

func checkConnection(parent context.Context, cfg *config.Config) error {
	provider, err := llm.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(parent, pingTimeout)
	defer cancel()
	return provider.TestConnection(ctx)
}
