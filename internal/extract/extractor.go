// Package extract turns raw CV files into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"wazivo/internal/errors"
	"wazivo/internal/utils"
)

// DocumentDecoder converts PDF and Word documents to text
type DocumentDecoder interface {
	DecodePDF(ctx context.Context, data []byte) (string, error)
	DecodeDocx(ctx context.Context, data []byte) (string, error)
	DecodeDoc(ctx context.Context, data []byte) (string, error)
}

// ImageDecoder runs OCR over an image
type ImageDecoder interface {
	DecodeImage(ctx context.Context, data []byte) (string, error)
}

// Extractor dispatches a buffer to a decoder by MIME type. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	documents DocumentDecoder
	images    ImageDecoder
	logger    *errors.Logger
}

// NewExtractor creates an Extractor backed by docconv and the OCR decoder
// selected at build time.
func NewExtractor(ocrLanguage string, logger *errors.Logger) *Extractor {
	return NewExtractorWith(DocconvDecoder{}, NewOCRDecoder(ocrLanguage), logger)
}

// NewExtractorWith creates an Extractor with explicit decoders
func NewExtractorWith(documents DocumentDecoder, images ImageDecoder, logger *errors.Logger) *Extractor {
	return &Extractor{documents: documents, images: images, logger: logger}
}

// Extract converts data of the given MIME type to plain text.
// Unsupported types fail with UNSUPPORTED_FILE_TYPE.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	mediaType := utils.NormalizeMIME(mimeType)

	decode, format := e.decoderFor(mediaType)
	if decode == nil {
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("unsupported file type: %q", mimeType), nil).
			WithContext("mime_type", mimeType)
	}

	if len(data) == 0 {
		return "", errors.NewValidationError(errors.ErrCodeInsufficientText,
			"file is empty", nil).WithContext("format", format)
	}

	if e.logger != nil {
		e.logger.Debug("Extracting text", "format", format, "bytes", len(data))
	}

	text, err := decode(ctx, data)
	if _, classified := errors.AsAppError(err); classified {
		return "", err
	}
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInsufficientText,
			fmt.Sprintf("could not read %s content", format), err).
			WithContext("format", format).
			WithRemediation("The file could not be read. Please make sure it is not corrupted or password protected.")
	}

	return CleanText(text), nil
}

func (e *Extractor) decoderFor(mediaType string) (func(context.Context, []byte) (string, error), string) {
	switch {
	case mediaType == utils.MIMEPDF:
		return e.documents.DecodePDF, "pdf"
	case strings.Contains(mediaType, "wordprocessingml"):
		return e.documents.DecodeDocx, "docx"
	case mediaType == utils.MIMEDOC || strings.Contains(mediaType, "msword"):
		return e.documents.DecodeDoc, "doc"
	case strings.HasPrefix(mediaType, "image/"):
		return e.images.DecodeImage, "image"
	}
	return nil, ""
}

// CleanText normalizes line endings, trims every line and collapses runs of
// blank lines so downstream length checks measure real content.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// DocconvDecoder decodes documents with code.sajari.com/docconv. PDF needs
// pdftotext and legacy .doc needs wvText on the PATH.
type DocconvDecoder struct{}

func (DocconvDecoder) DecodePDF(_ context.Context, data []byte) (string, error) {
	text, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("pdf conversion: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("pdf has no text layer")
	}
	return text, nil
}

func (DocconvDecoder) DecodeDocx(_ context.Context, data []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("docx conversion: %w", err)
	}
	return text, nil
}

func (DocconvDecoder) DecodeDoc(_ context.Context, data []byte) (string, error) {
	text, _, err := docconv.ConvertDoc(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("doc conversion: %w", err)
	}
	return text, nil
}
