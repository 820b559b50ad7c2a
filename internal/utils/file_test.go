package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		data     []byte
		want     string
	}{
		{"declared pdf with params", "application/pdf; charset=binary", "cv.bin", nil, MIMEPDF},
		{"octet stream uses extension", "application/octet-stream", "cv.DOCX", nil, MIMEDOCX},
		{"empty declared uses extension", "", "scan.jpeg", nil, "image/jpeg"},
		{"sniff pdf", "", "upload", []byte("%PDF-1.7\n..."), MIMEPDF},
		{"sniff png", "", "upload", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"zip sniffed as docx", "", "upload", []byte("PK\x03\x04rest-of-zip"), MIMEDOCX},
		{"nothing known", "", "upload", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIMEType(tt.declared, tt.filename, tt.data))
		})
	}
}

func TestIsDocumentMIME(t *testing.T) {
	assert.True(t, IsDocumentMIME(MIMEPDF))
	assert.True(t, IsDocumentMIME("application/msword"))
	assert.True(t, IsDocumentMIME(MIMEDOCX+"; charset=utf-8"))
	assert.False(t, IsDocumentMIME("image/png"))
	assert.False(t, IsDocumentMIME("text/html"))
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.pdf")
	assert.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	assert.NoError(t, ValidateInputFile(path))
	assert.Error(t, ValidateInputFile(""))
	assert.Error(t, ValidateInputFile(filepath.Join(dir, "missing.pdf")))
	assert.Error(t, ValidateInputFile(dir))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "10.0 MB", FormatFileSize(10*1024*1024))
}
