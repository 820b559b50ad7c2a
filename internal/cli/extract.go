package cli

import (
	"context"
	"fmt"

	"wazivo/internal/common"
	"wazivo/internal/pipeline"
	"wazivo/internal/types"
	"wazivo/internal/utils"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the normalized text of a CV without analyzing it",
	Long: `Extract the text of a CV the same way the analysis does, without calling
the AI model. Useful to check what a PDF, scan or web page turns into.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutputFormat(cmd, &extractConfig)
	},
	RunE: runExtract,
}

var (
	extractConfig common.CommandConfig
	extractInput  common.SourceInput
)

func init() {
	addSourceFlags(extractCmd, &extractInput, &extractConfig)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	components, err := pipeline.Build(cfg, logger, pipeline.Observers{})
	if err != nil {
		return fmt.Errorf("failed to build extraction pipeline: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.LogError(err, "Failed to close AI provider")
		}
	}()

	extractOperation := func(ctx context.Context, source types.CVSource) (types.ExtractResult, error) {
		text, err := components.Pipeline.Extract(ctx, source)
		if err != nil {
			return types.ExtractResult{}, err
		}
		name := source.URL
		if source.Kind == types.SourceFile {
			name = source.Filename
		}
		return types.ExtractResult{Source: name, Characters: utils.RuneLen(text), Text: text}, nil
	}

	err = common.RunSourceCommand(cmd.Context(), logger, extractConfig, extractInput, cfg.App.MaxFileSize, extractOperation, nil)
	if err != nil {
		return fmt.Errorf("failed to extract CV text: %w", err)
	}
	return nil
}
