package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/mapping"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/preprocess"
)

var deanonymizeCmd = &cobra.Command{
	Use:   "deanonymize [file] [manifest]",
	Short: "Restore original names in anonymized output",
	Long: `Deanonymize replaces every placeholder in an anonymized file with the text
recorded in its manifest. The manifest format (json, yaml, cbor) is taken from
its extension. The result is the comment-free, whitespace-normalized source.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, manifestPath := args[0], args[1]

		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		lines := trimTrailingEmpty(preprocess.SplitLines(string(content)))

		manifest, err := readManifest(manifestPath)
		if err != nil {
			return err
		}
		if !manifest.Verify(lines) {
			logger.Warn("file does not match the manifest digest", "file", filename, "manifest", manifestPath)
		}

		restored, err := mapping.Deanonymize(lines, manifest)
		if err != nil {
			return fmt.Errorf("failed to deanonymize %s: %w", filename, err)
		}

		out := cmd.OutOrStdout()
		for _, line := range restored {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deanonymizeCmd)
}

func readManifest(path string) (*mapping.Manifest, error) {
	format, err := mapping.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	return mapping.Decode(file, format)
}

func trimTrailingEmpty(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
