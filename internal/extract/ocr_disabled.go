//go:build !ocr

package extract

import (
	"context"

	"wazivo/internal/errors"
)

// OCRAvailable reports whether image OCR was compiled in
const OCRAvailable = false

type unavailableOCR struct{}

// NewOCRDecoder returns a decoder that rejects every image. Tesseract
// bindings need cgo and are only compiled in with the ocr build tag.
func NewOCRDecoder(string) ImageDecoder {
	return unavailableOCR{}
}

func (unavailableOCR) DecodeImage(context.Context, []byte) (string, error) {
	return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType,
		"image OCR is not available in this build; rebuild with -tags ocr", nil).
		WithContext("format", "image").
		WithRemediation("Image OCR is not enabled on this server. Please upload a PDF or DOCX file.")
}
