//go:build ocr

package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// OCRAvailable reports whether image OCR was compiled in
const OCRAvailable = true

// OCRDecoder extracts text from images with Tesseract
type OCRDecoder struct {
	language string
}

// NewOCRDecoder creates an OCR decoder for the given Tesseract language
func NewOCRDecoder(language string) ImageDecoder {
	if language == "" {
		language = "eng"
	}
	return &OCRDecoder{language: language}
}

// DecodeImage runs OCR over an in-memory image. A fresh client is used per
// call since Tesseract handles are not safe for concurrent use.
func (d *OCRDecoder) DecodeImage(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(d.language); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
