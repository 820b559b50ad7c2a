package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorChainHelpers(t *testing.T) {
	inner := NewNetworkError(ErrCodeLoginRequired, "login wall detected", nil).
		WithRemediation("Use Save to PDF from your profile.")
	outer := fmt.Errorf("reader strategy: %w", inner)

	appErr, ok := AsAppError(outer)
	require.True(t, ok)
	assert.Equal(t, ErrCodeLoginRequired, appErr.Code)
	assert.True(t, HasCode(outer, ErrCodeLoginRequired))
	assert.False(t, HasCode(outer, ErrCodeFetchFailed))
	assert.True(t, HasRemediation(outer))
	assert.Equal(t, "Use Save to PDF from your profile.", RemediationOf(outer))

	wrapped := NewNetworkError(ErrCodeFetchFailed, "all strategies failed", outer)
	assert.True(t, HasCode(wrapped, ErrCodeLoginRequired), "nested codes are visible")
	assert.Equal(t, "Use Save to PDF from your profile.", RemediationOf(wrapped))
}

func TestAppErrorMessage(t *testing.T) {
	err := NewValidationError(ErrCodeInvalidURL, "bad url", fmt.Errorf("missing scheme"))
	assert.Equal(t, "INVALID_URL: bad url (caused by: missing scheme)", err.Error())

	err = NewValidationError(ErrCodeInvalidURL, "bad url", nil)
	assert.Equal(t, "INVALID_URL: bad url", err.Error())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid url",
			err:        NewValidationError(ErrCodeInvalidURL, "no scheme", nil),
			wantCode:   ErrCodeInvalidURL,
			wantStatus: http.StatusBadRequest,
			wantMsg:    userMessages[ErrCodeInvalidURL],
		},
		{
			name: "fetch failed surfaces remediation",
			err: NewNetworkError(ErrCodeFetchFailed, "exhausted", nil).
				WithRemediation("Download your résumé as PDF from Glassdoor and upload it directly."),
			wantCode:   ErrCodeFetchFailed,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Download your résumé as PDF from Glassdoor and upload it directly.",
		},
		{
			name: "unsupported type with remediation",
			err: NewValidationError(ErrCodeUnsupportedFileType, "no ocr", nil).
				WithRemediation("Image OCR is not enabled on this server. Please upload a PDF or DOCX file."),
			wantCode:   ErrCodeUnsupportedFileType,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Image OCR is not enabled on this server. Please upload a PDF or DOCX file.",
		},
		{
			name:       "login required without tip",
			err:        NewNetworkError(ErrCodeLoginRequired, "wall", nil),
			wantCode:   ErrCodeLoginRequired,
			wantStatus: http.StatusBadRequest,
			wantMsg:    userMessages[ErrCodeLoginRequired],
		},
		{
			name:       "rate limit with retry",
			err:        NewValidationError(ErrCodeRateLimitExceeded, "quota", nil).WithContext("retry_after", 42),
			wantCode:   ErrCodeRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Too many requests. Please wait 42 seconds and try again.",
		},
		{
			name:       "ai timeout",
			err:        NewAIError(ErrCodeAITimeout, "deadline", nil),
			wantCode:   ErrCodeAITimeout,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    userMessages[ErrCodeAITimeout],
		},
		{
			name:       "missing credential",
			err:        NewAIError(ErrCodeAIServiceUnavailable, "no key", nil),
			wantCode:   ErrCodeAIServiceUnavailable,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    userMessages[ErrCodeAIServiceUnavailable],
		},
		{
			name:       "invalid ai response",
			err:        NewAIError(ErrCodeInvalidAIResponse, "schema", nil).WithViolations([]string{"x"}),
			wantCode:   ErrCodeInvalidAIResponse,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    userMessages[ErrCodeInvalidAIResponse],
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom: secret stack detail"),
			wantCode:   ErrCodeInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    defaultMessage,
		},
		{
			name:       "unknown app code",
			err:        NewIOError(ErrCodeFileNotReadable, "cannot read", nil),
			wantCode:   ErrCodeInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    defaultMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}
