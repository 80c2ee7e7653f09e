package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/config"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/llm"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/preprocess"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Ask an LLM which design patterns an anonymized class implements",
	Long: `Classify anonymizes a class and sends it to an LLM, which answers with a table
of design patterns and how certain it is of each.

Examples:
  # Classify with the default Ollama model
  anonymizer classify src/Registry.java

  # Send the source without anonymizing it, for comparison
  anonymizer classify --raw src/Registry.java

  # Use a remote Ollama instance and a restricted pattern list
  anonymizer classify --url http://remote:11434/api/generate --patterns Singleton,Observer src/Registry.java`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

var (
	classifyKeywords    keywordFlags
	classifyURL         string
	classifyModel       string
	classifyTemperature float64
	classifyTopP        float64
	classifyNumCtx      int
	classifyTimeout     int
	classifyPatterns    []string
	classifyName        string
	classifyRaw         bool
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyKeywords.register(classifyCmd)

	// LLM configuration flags
	defaults := llm.DefaultConfig()
	classifyCmd.Flags().StringVarP(&classifyURL, "url", "u", getEnvOrDefault("OLLAMA_URL", defaults.URL), "Ollama API URL")
	classifyCmd.Flags().StringVar(&classifyModel, "model", getEnvOrDefault("MODEL_NAME", defaults.Model), "Ollama model name")
	classifyCmd.Flags().Float64Var(&classifyTemperature, "temperature", defaults.Temperature, "LLM temperature (0.0-1.0)")
	classifyCmd.Flags().Float64Var(&classifyTopP, "top-p", defaults.TopP, "LLM top-p value (0.0-1.0)")
	classifyCmd.Flags().IntVar(&classifyNumCtx, "context", defaults.NumCtx, "Context window size")
	classifyCmd.Flags().IntVar(&classifyTimeout, "timeout", int(defaults.Timeout/time.Second), "Request timeout in seconds")

	// Processing flags
	classifyCmd.Flags().StringSliceVar(&classifyPatterns, "patterns", nil, "Candidate patterns (default: the GoF catalogue plus None)")
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "Name shown to the model (default: file name without extension)")
	classifyCmd.Flags().BoolVar(&classifyRaw, "raw", false, "Send the source without anonymizing it")
}

func runClassify(cmd *cobra.Command, args []string) error {
	filename := args[0]
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(filename)
	if err != nil {
		return err
	}
	classifyKeywords.apply(cmd, cfg)
	applyLLMFlags(cmd, cfg)

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	source, err := classificationSource(cfg, string(content))
	if err != nil {
		return fmt.Errorf("failed to prepare %s: %w", filename, err)
	}

	provider, err := llm.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	service := llm.NewClassificationService(provider)

	ctx := cmd.Context()
	if err := service.TestConnection(ctx); err != nil {
		return fmt.Errorf("cannot connect to LLM: %w", err)
	}

	modelInfo := service.GetModelInfo()
	fmt.Fprintf(out, "🤖 Connected to %s\n", modelInfo.Provider)
	fmt.Fprintf(out, "📚 Using model: %s\n", modelInfo.Name)

	name := classifyName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	result, err := service.Classify(ctx, llm.ClassificationRequest{
		ClassName: name,
		Source:    source,
		Patterns:  classifyPatterns,
	})
	if err != nil {
		return err
	}

	printClassification(cmd, result)
	return nil
}

func applyLLMFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	// Environment fallbacks count as explicit settings over the project file.
	if flags.Changed("url") || os.Getenv("OLLAMA_URL") != "" {
		cfg.LLM.URL = classifyURL
	}
	if flags.Changed("model") || os.Getenv("MODEL_NAME") != "" {
		cfg.LLM.Model = classifyModel
	}
	if flags.Changed("temperature") {
		cfg.LLM.Temperature = classifyTemperature
	}
	if flags.Changed("top-p") {
		cfg.LLM.TopP = classifyTopP
	}
	if flags.Changed("context") {
		cfg.LLM.NumCtx = classifyNumCtx
	}
	if flags.Changed("timeout") {
		cfg.LLM.Timeout = classifyTimeout
	}
}

// classificationSource returns the text sent to the model: the anonymized
// class, or only its normalized form with --raw.
func classificationSource(cfg *config.Config, content string) (string, error) {
	raw := preprocess.SplitLines(content)
	if classifyRaw {
		lines, err := preprocess.Prepare(raw)
		if err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	}

	a, err := newAnonymizer(cfg)
	if err != nil {
		return "", err
	}
	lines, err := a.Anonymize(raw)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func printClassification(cmd *cobra.Command, result *llm.ClassificationResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n# %s\n", result.ClassName)
	fmt.Fprintln(out, "| Pattern | Certainty | Correctness |")
	fmt.Fprintln(out, "|---|---|---|")
	for _, p := range result.Patterns {
		fmt.Fprintf(out, "| %s | %.0f%% | %.0f%% |\n", p.Pattern, p.Certainty*100, p.Correctness*100)
	}
}
