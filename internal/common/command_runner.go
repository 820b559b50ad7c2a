package common

import (
	"context"

	"wazivo/internal/errors"
	"wazivo/internal/types"
)

// SourceInput is what the user pointed a command at: a local file or a URL
type SourceInput struct {
	File string
	URL  string
}

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(source types.CVSource, cfg CommandConfig)

// SourceOperationFunc is one pipeline operation over a CV source.
type SourceOperationFunc[Output any] func(context.Context, types.CVSource) (Output, error)

// RunSourceCommand encapsulates the common logic of CLI commands that take a
// CV: resolve the source, run the operation and write the formatted result.
func RunSourceCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	input SourceInput,
	maxFileSize int64,
	operation SourceOperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	outputHandler := NewOutputHandler(logger)

	source, err := ResolveSource(input, NewFileProcessor(logger), maxFileSize)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(source, cmdConfig)
	}

	result, err := operation(ctx, source)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

// ResolveSource turns the command flags into a CVSource
func ResolveSource(input SourceInput, fileProcessor *FileProcessor, maxFileSize int64) (types.CVSource, error) {
	if err := ValidateSourceInput(input); err != nil {
		return types.CVSource{}, err
	}
	if input.URL != "" {
		return types.URLSource(input.URL), nil
	}
	return fileProcessor.LoadSource(input.File, maxFileSize)
}
