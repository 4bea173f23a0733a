package cli

import (
	"context"
	"fmt"

	"resumescan/internal/analysis"
	"resumescan/internal/common"
	"resumescan/internal/formatters"
	"resumescan/internal/types"

	"github.com/spf13/cobra"
)

var grammarCmd = &cobra.Command{
	Use:   "grammar [resume-file]",
	Short: "Check a resume for grammar, spelling and style issues",
	Long: `Run only the grammar checks over a structured resume (JSON or YAML).
Each issue names the section and field it was found in, with the offending
text and a suggested fix. When AI is enabled, the provider's review is
merged in and duplicate findings are dropped.

Without a file argument, or with "-", the resume is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if grammarConfig.OutputFormat == "" {
			grammarConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(grammarConfig.OutputFormat, formatters.GlobalRegistry.GetSupportedFormats())
	},
	RunE: runGrammar,
}

var (
	grammarConfig   common.CommandConfig
	grammarNoEnrich bool
)

func init() {
	grammarCmd.Flags().BoolVar(&grammarNoEnrich, "no-enrich", false, "Skip the AI grammar review")
	addOutputFlags(grammarCmd, &grammarConfig)
}

func runGrammar(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rt, err := buildRuntime(cfg, logger, !grammarNoEnrich)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.App.Timeout)
	defer cancel()

	runner := common.NewCommandRunner(logger, cfg.App.MaxFileSize).
		WithIO(cmd.InOrStdin(), cmd.OutOrStdout())

	err = common.RunReportCommand(ctx, runner, grammarConfig, resumeArg(args), "",
		func(ctx context.Context, in common.CommandInput) *types.GrammarReport {
			return rt.engine.CheckGrammar(ctx, in.Resume, analysis.CheckOptions{})
		})
	if err != nil {
		return fmt.Errorf("failed to check grammar: %w", err)
	}
	logger.Info("Grammar check completed successfully")
	return nil
}
