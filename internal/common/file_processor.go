package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"wazivo/internal/errors"
	"wazivo/internal/types"
	"wazivo/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads a file of at most maxSize bytes. A non-positive maxSize
// disables the limit.
func (fp *FileProcessor) ReadFile(filename string, maxSize int64) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	var reader io.Reader = file
	if maxSize > 0 {
		if info, err := file.Stat(); err == nil && info.Size() > maxSize {
			return nil, fileTooLarge(filename, info.Size(), maxSize)
		}
		reader = io.LimitReader(file, maxSize+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	if maxSize > 0 && int64(len(content)) > maxSize {
		return nil, fileTooLarge(filename, int64(len(content)), maxSize)
	}

	return content, nil
}

func fileTooLarge(filename string, size, limit int64) error {
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("File %s is %s, the limit is %s", filename, utils.FormatFileSize(size), utils.FormatFileSize(limit)), nil)
}

// LoadSource reads a CV file and detects its MIME type from the extension
// or the content
func (fp *FileProcessor) LoadSource(filename string, maxSize int64) (types.CVSource, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return types.CVSource{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	data, err := fp.ReadFile(filename, maxSize)
	if err != nil {
		return types.CVSource{}, err
	}

	mimeType := utils.DetectMIMEType("", filename, data)
	fp.logger.Debug("Loaded CV file",
		"filename", filename,
		"size", utils.FormatFileSize(int64(len(data))),
		"mime_type", mimeType)

	return types.FileSource(data, mimeType, filepath.Base(filename)), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
