package utils

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MIME types accepted by the text extractor
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDOC  = "application/msword"
)

var extensionMIME = map[string]string{
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
	".doc":  MIMEDOC,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
}

// ValidateInputFile checks if a file exists and is readable
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	return nil
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// MIMEFromExtension maps a filename to a MIME type, or "" when unknown.
func MIMEFromExtension(filename string) string {
	return extensionMIME[GetFileExtension(filename)]
}

// NormalizeMIME strips parameters and lowercases a Content-Type value.
func NormalizeMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mediaType
}

// DetectMIMEType resolves the MIME type of an upload. A specific declared type
// wins; generic declarations fall back to the filename extension and then to
// content sniffing.
func DetectMIMEType(declared, filename string, data []byte) string {
	declared = NormalizeMIME(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := MIMEFromExtension(filename); byExt != "" {
		return byExt
	}
	if len(data) == 0 {
		return declared
	}
	sniffed := NormalizeMIME(http.DetectContentType(data))
	if sniffed == "application/zip" {
		// DOCX is a zip container; the sniffer cannot tell them apart.
		return MIMEDOCX
	}
	return sniffed
}

// IsDocumentMIME reports whether mimeType is PDF or a Word document.
func IsDocumentMIME(mimeType string) bool {
	switch NormalizeMIME(mimeType) {
	case MIMEPDF, MIMEDOCX, MIMEDOC:
		return true
	}
	return false
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
