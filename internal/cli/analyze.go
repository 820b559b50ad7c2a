package cli

import (
	"context"
	"fmt"
	"time"

	"wazivo/internal/common"
	"wazivo/internal/pipeline"
	"wazivo/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CV and find matching jobs",
	Long: `Analyze a CV from a local file or a public URL. The report covers:

- Candidate summary and key skills
- Weaknesses and skill gaps, with priorities
- Recommended courses that address the gaps
- Market insights for the profile
- Job opportunities from the configured job boards

Examples:
  wazivo analyze --file cv.pdf
  wazivo analyze --url https://example.com/cv.pdf --format markdown -o report.md`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutputFormat(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig   common.CommandConfig
	analyzeInput    common.SourceInput
	analyzeSkipJobs bool
	analyzeTimeout  time.Duration
)

func init() {
	addSourceFlags(analyzeCmd, &analyzeInput, &analyzeConfig)
	analyzeCmd.Flags().BoolVar(&analyzeSkipJobs, "skip-jobs", false, "Skip job search enrichment")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Overall time budget (default: server.requestTimeout)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	components, err := pipeline.Build(cfg, logger, pipeline.Observers{})
	if err != nil {
		return fmt.Errorf("failed to build analysis pipeline: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.LogError(err, "Failed to close AI provider")
		}
	}()

	timeout := analyzeTimeout
	if timeout <= 0 {
		timeout = cfg.Server.RequestTimeout
	}
	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logDetails := func(source types.CVSource, cfg common.CommandConfig) {
		logger.Info("Starting CV analysis",
			"source", source.Kind,
			"skip_jobs", analyzeSkipJobs,
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, source types.CVSource) (*types.AnalyzeResponse, error) {
		return components.Pipeline.Run(ctx, source, pipeline.Options{SkipJobs: analyzeSkipJobs})
	}

	err = common.RunSourceCommand(ctx, logger, analyzeConfig, analyzeInput, cfg.App.MaxFileSize, analyzeOperation, logDetails)
	if err != nil {
		return fmt.Errorf("failed to analyze CV: %w", err)
	}
	return nil
}

// addSourceFlags registers the flags shared by commands that take a CV
func addSourceFlags(cmd *cobra.Command, input *common.SourceInput, output *common.CommandConfig) {
	cmd.Flags().StringVarP(&input.File, "file", "f", "", "CV file (PDF, DOCX, DOC or image)")
	cmd.Flags().StringVarP(&input.URL, "url", "u", "", "Public URL of the CV")
	cmd.Flags().StringVarP(&output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&output.OutputFormat, "format", "", "Output format: json, text, or markdown")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsOneRequired("file", "url")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// prepareOutputFormat applies the default format and validates it
func prepareOutputFormat(cmd *cobra.Command, output *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if output.OutputFormat == "" {
		output.OutputFormat = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(output.OutputFormat, cfg.App.SupportedFormats)
}
