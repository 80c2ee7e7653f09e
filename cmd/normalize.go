package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/preprocess"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Strip comments and collapse whitespace without anonymizing",
	Long: `Normalize runs only the preprocessing steps: comments are removed, runs of
whitespace become a single space and empty lines are dropped. With no file,
or "-", the source is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readSource(cmd, args)
		if err != nil {
			return err
		}

		lines, err := preprocess.Prepare(preprocess.SplitLines(content))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

// readSource reads the file named by args[0], or stdin when there is none.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(content), nil
}
