package normalize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/fetch"
	"wazivo/internal/types"
	"wazivo/internal/utils"
)

type fakeExtractor struct {
	text     string
	err      error
	mimeType string
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.mimeType = mimeType
	return f.text, f.err
}

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) FetchText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func appConfig() config.AppConfig {
	return config.AppConfig{MaxFileSize: 1024, MinFileTextLength: 100, MinURLTextLength: 200}
}

func TestNormalizeFile(t *testing.T) {
	extractor := &fakeExtractor{text: strings.Repeat("a", 150)}
	n := New(extractor, &fakeFetcher{}, appConfig(), errors.NewDiscardLogger())

	text, err := n.Normalize(context.Background(), types.FileSource([]byte("%PDF-1.7"), "application/octet-stream", "cv.pdf"))
	require.NoError(t, err)
	assert.Len(t, text, 150)
	assert.Equal(t, utils.MIMEPDF, extractor.mimeType, "octet-stream is corrected from the filename")
}

func TestNormalizeFileTooShort(t *testing.T) {
	n := New(&fakeExtractor{text: strings.Repeat("a", 99)}, &fakeFetcher{}, appConfig(), errors.NewDiscardLogger())

	_, err := n.Normalize(context.Background(), types.FileSource([]byte("x"), utils.MIMEPDF, "cv.pdf"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInsufficientText))
	assert.Contains(t, errors.Classify(err).Message, "scanned document")
}

func TestNormalizeFileTooLarge(t *testing.T) {
	extractor := &fakeExtractor{text: strings.Repeat("a", 500)}
	n := New(extractor, &fakeFetcher{}, appConfig(), errors.NewDiscardLogger())

	_, err := n.Normalize(context.Background(), types.FileSource(make([]byte, 2048), utils.MIMEPDF, "cv.pdf"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileTooLarge))
	assert.Empty(t, extractor.mimeType, "oversized files are never decoded")
}

func TestNormalizeEmptyFileNeverPanics(t *testing.T) {
	n := New(&fakeExtractor{}, &fakeFetcher{}, appConfig(), errors.NewDiscardLogger())

	_, err := n.Normalize(context.Background(), types.FileSource(nil, "", ""))
	require.Error(t, err)
	assert.True(t,
		errors.HasCode(err, errors.ErrCodeUnsupportedFileType) || errors.HasCode(err, errors.ErrCodeInsufficientText))
}

func TestNormalizeURLThresholdIsHigher(t *testing.T) {
	n := New(&fakeExtractor{}, &fakeFetcher{text: strings.Repeat("a", 150)}, appConfig(), errors.NewDiscardLogger())

	_, err := n.Normalize(context.Background(), types.URLSource("https://example.com/cv"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInsufficientText))
}

func TestNormalizeURLPropagatesFetchErrors(t *testing.T) {
	fetchErr := errors.NewValidationError(errors.ErrCodeInvalidURL, "invalid URL", nil)
	n := New(&fakeExtractor{}, &fakeFetcher{err: fetchErr}, appConfig(), errors.NewDiscardLogger())

	_, err := n.Normalize(context.Background(), types.URLSource("nope"))
	assert.ErrorIs(t, err, fetchErr)
}

func TestNormalizeUnknownKind(t *testing.T) {
	n := New(&fakeExtractor{}, &fakeFetcher{}, appConfig(), errors.NewDiscardLogger())

	_, err := n.Normalize(context.Background(), types.CVSource{Kind: "carrier-pigeon"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestPublicPDFNeverReachesReader(t *testing.T) {
	layer := strings.Repeat("Senior Go engineer with ten years of backend experience. ", 36)[:2000]

	pdfHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer pdfHost.Close()

	var readerCalls atomic.Int32
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		readerCalls.Add(1)
		_, _ = w.Write([]byte("should not be used"))
	}))
	defer reader.Close()

	cfg := config.Defaults()
	cfg.Fetch.Reader.BaseURL = reader.URL + "/"
	cfg.Fetch.Reader.CircuitBreaker.Enabled = false

	extractor := &fakeExtractor{text: "\n" + layer + "\n"}
	chain := fetch.New(cfg, extractor, errors.NewDiscardLogger())
	n := New(extractor, chain, cfg.App, errors.NewDiscardLogger())

	text, err := n.Normalize(context.Background(), types.URLSource(pdfHost.URL+"/resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(layer), text)
	assert.Zero(t, readerCalls.Load())
}

func TestShortPDFFallsBackToReader(t *testing.T) {
	pdfHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer pdfHost.Close()

	var readerCalls atomic.Int32
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		readerCalls.Add(1)
		_, _ = w.Write([]byte(strings.Repeat("Rendered CV content. ", 20)))
	}))
	defer reader.Close()

	cfg := config.Defaults()
	cfg.Fetch.Reader.BaseURL = reader.URL + "/"
	cfg.Fetch.Reader.CircuitBreaker.Enabled = false

	extractor := &fakeExtractor{text: "scan"}
	n := New(extractor, fetch.New(cfg, extractor, errors.NewDiscardLogger()), cfg.App, errors.NewDiscardLogger())

	text, err := n.Normalize(context.Background(), types.URLSource(pdfHost.URL+"/resume.pdf"))
	require.NoError(t, err)
	assert.Contains(t, text, "Rendered CV content.")
	assert.Equal(t, int32(1), readerCalls.Load())
}
