package cmd

import (
	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/anonymizer"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/config"
)

// keywordFlags are the keyword overrides shared by every command that anonymizes.
type keywordFlags struct {
	preset   string
	keywords []string
	extra    []string
}

func (k *keywordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&k.preset, "preset", "p", "", "Keyword preset (java, java-reserved, c, cpp)")
	cmd.Flags().StringSliceVar(&k.keywords, "keywords", nil, "Explicit keyword list, replaces the preset")
	cmd.Flags().StringSliceVar(&k.extra, "extra-keywords", nil, "Additional keywords to preserve")
}

// apply copies the flags the user actually set over cfg.
func (k *keywordFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("preset") {
		cfg.Preset = k.preset
		cfg.Keywords = nil
	}
	if cmd.Flags().Changed("keywords") {
		cfg.Keywords = k.keywords
	}
	if cmd.Flags().Changed("extra-keywords") {
		cfg.ExtraKeywords = append(cfg.ExtraKeywords, k.extra...)
	}
}

// newAnonymizer builds the anonymizer described by cfg.
func newAnonymizer(cfg *config.Config) (*anonymizer.Anonymizer, error) {
	set, err := cfg.KeywordSet()
	if err != nil {
		return nil, err
	}
	logger.Debug("keyword set resolved", "words", set.Len(), "non-sealed", set.PreservesNonSealed())
	return anonymizer.New(nil, anonymizer.WithKeywordSet(set), anonymizer.WithLogger(logger)), nil
}
