package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/keywords"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the keywords a preset preserves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if listPresets {
			for _, name := range keywords.PresetNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		words, err := keywords.Preset(keywordsPreset)
		if err != nil {
			return err
		}
		set := keywords.New(words)

		fmt.Fprintf(out, "# %d keywords, non-sealed preserved: %t\n", set.Len(), set.PreservesNonSealed())
		for _, word := range set.Words() {
			fmt.Fprintln(out, word)
		}
		return nil
	},
}

var (
	keywordsPreset string
	listPresets    bool
)

func init() {
	rootCmd.AddCommand(keywordsCmd)

	keywordsCmd.Flags().StringVarP(&keywordsPreset, "preset", "p", keywords.DefaultPreset, "Keyword preset to list")
	keywordsCmd.Flags().BoolVarP(&listPresets, "list", "l", false, "List preset names instead")
}
