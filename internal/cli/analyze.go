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

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Score a resume against ATS-style rules",
	Long: `Analyze a structured resume (JSON or YAML) and report an overall score,
a tier and the suggestions most likely to improve it.

The analysis includes:
- Keyword coverage and industry detection
- Education and experience scoring
- Formatting and contact information checks
- Grammar and spelling issues
- Optional AI enrichment when ai.enabled is set

Without a file argument, or with "-", the resume is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, formatters.GlobalRegistry.GetSupportedFormats())
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig   common.CommandConfig
	analyzeJobFile  string
	analyzeNoEnrich bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeJobFile, "job-description", "j", "", "Job description file to match keywords against")
	analyzeCmd.Flags().BoolVar(&analyzeNoEnrich, "no-enrich", false, "Skip AI enrichment and use the neutral score")
	addOutputFlags(analyzeCmd, &analyzeConfig)
}

// addOutputFlags registers the output flags shared by report commands
func addOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

func resumeArg(args []string) string {
	if len(args) == 0 {
		return common.StdinPath
	}
	return args[0]
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rt, err := buildRuntime(cfg, logger, !analyzeNoEnrich)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.App.Timeout)
	defer cancel()

	runner := common.NewCommandRunner(logger, cfg.App.MaxFileSize).
		WithIO(cmd.InOrStdin(), cmd.OutOrStdout())

	err = common.RunReportCommand(ctx, runner, analyzeConfig, resumeArg(args), analyzeJobFile,
		func(ctx context.Context, in common.CommandInput) *types.AnalysisReport {
			logger.Info("Starting resume analysis",
				"has_job_description", in.JobDescription != "",
				"enrichment", rt.engine.HasEnricher(),
				"output_format", analyzeConfig.OutputFormat)
			return rt.engine.AnalyzeResume(ctx, in.Resume, analysis.AnalyzeOptions{
				JobDescription: in.JobDescription,
			})
		})
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
