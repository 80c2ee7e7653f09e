package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/batch"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/config"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/mapping"
)

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize [file|directory]",
	Short: "Anonymize a source file or a whole source tree",
	Long: `Anonymize replaces literals and identifiers with numbered placeholders.

A single file is written to stdout unless --output is given. A directory
requires --output and is mirrored under it; every file is numbered on its own.

Examples:
  # Print the anonymized form of one class
  anonymizer anonymize src/Main.java

  # Anonymize a project and keep JSON manifests for deanonymization
  anonymizer anonymize --output out --mapping json src/

  # Hide file names too: out/class0.java ... plus out/@readme.txt
  anonymizer anonymize --output out --blind src/

  # Keep out/ up to date while editing src/
  anonymizer anonymize --output out --watch src/`,
	Args: cobra.ExactArgs(1),
	RunE: runAnonymize,
}

var (
	anonKeywords   keywordFlags
	anonOutput     string
	anonManifest   string
	anonMapping    string
	anonBlind      bool
	anonWorkers    int
	anonExtensions []string
	anonWatch      bool
)

func init() {
	rootCmd.AddCommand(anonymizeCmd)

	anonKeywords.register(anonymizeCmd)
	anonymizeCmd.Flags().StringVarP(&anonOutput, "output", "o", "", "Output directory")
	anonymizeCmd.Flags().StringVar(&anonManifest, "manifest", "", "Manifest file for single-file output (format from extension)")
	anonymizeCmd.Flags().StringVarP(&anonMapping, "mapping", "m", "", "Manifest format written next to each output (json, yaml, cbor, none)")
	anonymizeCmd.Flags().BoolVar(&anonBlind, "blind", false, "Rename outputs to classN and write an @readme.txt index")
	anonymizeCmd.Flags().IntVarP(&anonWorkers, "workers", "w", 0, "Files processed concurrently (default: number of CPUs)")
	anonymizeCmd.Flags().StringSliceVar(&anonExtensions, "ext", nil, "File extensions to include (default: .java)")
	anonymizeCmd.Flags().BoolVar(&anonWatch, "watch", false, "Keep running and re-anonymize files as they change")
}

func runAnonymize(cmd *cobra.Command, args []string) error {
	target := args[0]

	cfg, err := loadConfig(target)
	if err != nil {
		return err
	}
	applyAnonymizeFlags(cmd, cfg)

	if anonWatch {
		if anonOutput == "" {
			return fmt.Errorf("--watch requires --output")
		}
		if cfg.Blind {
			return fmt.Errorf("--watch cannot be combined with blind mode")
		}
	}

	a, err := newAnonymizer(cfg)
	if err != nil {
		return err
	}

	files, err := batch.FindFiles(target, cfg.Extensions, cfg.Ignore)
	if err != nil {
		return fmt.Errorf("error finding files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files with extensions %s found in %s", strings.Join(cfg.Extensions, ", "), target)
	}

	root := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		root = filepath.Dir(target)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := batch.NewRunner(a, batch.WithWorkers(cfg.Workers), batch.WithLogger(logger))
	if anonOutput == "" {
		return anonymizeToStdout(ctx, cmd, runner, root, files)
	}

	err = anonymizeToDirectory(ctx, cmd, runner, cfg, root, files)
	if !anonWatch || ctx.Err() != nil {
		return err
	}
	if err != nil {
		logger.Warn("initial run had failures", "error", err)
	}
	return watchAndAnonymize(ctx, cmd, runner, cfg, root)
}

func applyAnonymizeFlags(cmd *cobra.Command, cfg *config.Config) {
	anonKeywords.apply(cmd, cfg)
	if cmd.Flags().Changed("mapping") {
		cfg.MappingFormat = anonMapping
	}
	if cmd.Flags().Changed("blind") {
		cfg.Blind = anonBlind
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = anonWorkers
	}
	if cmd.Flags().Changed("ext") {
		cfg.Extensions = anonExtensions
	}
}

func anonymizeToStdout(ctx context.Context, cmd *cobra.Command, runner *batch.Runner, root string, files []string) error {
	if len(files) != 1 {
		return fmt.Errorf("found %d files: use --output to anonymize more than one file", len(files))
	}

	results, err := runner.Run(ctx, root, files)
	if err != nil {
		return err
	}
	result := results[0]
	if result.Err != nil {
		return result.Err
	}

	out := cmd.OutOrStdout()
	for _, line := range result.Lines {
		fmt.Fprintln(out, line)
	}

	if anonManifest != "" {
		format, err := mapping.FormatFromPath(anonManifest)
		if err != nil {
			return err
		}
		file, err := os.Create(anonManifest)
		if err != nil {
			return fmt.Errorf("failed to create manifest: %w", err)
		}
		defer file.Close()
		if err := mapping.Encode(file, result.Manifest, format); err != nil {
			return err
		}
		logger.Info("manifest written", "path", anonManifest)
	}
	return nil
}

func anonymizeToDirectory(ctx context.Context, cmd *cobra.Command, runner *batch.Runner, cfg *config.Config, root string, files []string) error {
	out := cmd.OutOrStdout()

	format, err := manifestFormat(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "📂 Found %d files to anonymize (%d workers)\n", len(files), runner.Workers())

	results, err := runner.Run(ctx, root, files)
	if err != nil {
		return fmt.Errorf("anonymization interrupted: %w", err)
	}

	writer := &batch.Writer{OutDir: anonOutput, Format: format, Blind: cfg.Blind}
	written, err := writer.Write(results)
	if err != nil {
		return err
	}

	for _, w := range written {
		if w.Class >= 0 {
			fmt.Fprintf(out, "  ✅ %s -> %s\n", w.RelPath, filepath.Base(w.Output))
		} else {
			fmt.Fprintf(out, "  ✅ %s\n", w.RelPath)
		}
	}

	failed := batch.Failed(results)
	for _, f := range failed {
		fmt.Fprintf(out, "  ❌ %v\n", f.Err)
	}

	fmt.Fprintf(out, "\n🎉 Anonymized %d of %d files into %s\n", len(written), len(results), anonOutput)
	if cfg.Blind {
		fmt.Fprintf(out, "📇 Index written to %s\n", filepath.Join(anonOutput, batch.IndexFileName))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}

func manifestFormat(cfg *config.Config) (mapping.Format, error) {
	if cfg.MappingFormat == "" || cfg.MappingFormat == "none" {
		return "", nil
	}
	return mapping.ParseFormat(cfg.MappingFormat)
}

func watchAndAnonymize(ctx context.Context, cmd *cobra.Command, runner *batch.Runner, cfg *config.Config, root string) error {
	out := cmd.OutOrStdout()

	format, err := manifestFormat(cfg)
	if err != nil {
		return err
	}
	writer := &batch.Writer{OutDir: anonOutput, Format: format}

	fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to stop)\n", root)
	return batch.Watch(ctx, root, cfg.Extensions, cfg.Ignore, func(path string) {
		results, err := runner.Run(ctx, root, []string{path})
		if err != nil {
			return
		}
		if results[0].Err != nil {
			fmt.Fprintf(out, "  ❌ %v\n", results[0].Err)
			return
		}
		if _, err := writer.Write(results); err != nil {
			fmt.Fprintf(out, "  ❌ %v\n", err)
			return
		}
		fmt.Fprintf(out, "  🔄 %s\n", results[0].RelPath)
	})
}
