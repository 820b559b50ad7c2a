package errors

import (
	"fmt"
	"net/http"
)

// Classification is the user-facing view of a pipeline failure.
type Classification struct {
	Code    string
	Message string
	Status  int
}

const defaultMessage = "An unexpected error occurred. Please try again."

var userMessages = map[string]string{
	ErrCodeInvalidURL:           "Invalid URL. Please provide a full URL starting with https://",
	ErrCodeUnsupportedFileType:  "File type not supported. Please upload PDF, DOCX, DOC, or image files.",
	ErrCodeFileTooLarge:         "File is too large. Maximum size is 10MB.",
	ErrCodeFetchFailed:          "Failed to extract CV from URL. Please download the file and upload it directly.",
	ErrCodeLoginRequired:        "This page requires login. Please download and upload the file directly.",
	ErrCodeInsufficientText:     "Not enough text could be extracted. Please ensure the file is readable.",
	ErrCodeAITimeout:            "Analysis took too long. Please try again with a shorter CV.",
	ErrCodeInvalidAIResponse:    "AI analysis failed. Please try again.",
	ErrCodeAIServiceUnavailable: "Service temporarily unavailable. Please try again later.",
	ErrCodeInvalidRequest:       "Invalid request.",
	ErrCodeUnauthorized:         "A valid API key is required.",
}

var statusByCode = map[string]int{
	ErrCodeInvalidURL:           http.StatusBadRequest,
	ErrCodeUnsupportedFileType:  http.StatusBadRequest,
	ErrCodeFileTooLarge:         http.StatusBadRequest,
	ErrCodeFetchFailed:          http.StatusBadRequest,
	ErrCodeLoginRequired:        http.StatusBadRequest,
	ErrCodeInsufficientText:     http.StatusBadRequest,
	ErrCodeInvalidRequest:       http.StatusBadRequest,
	ErrCodeUnauthorized:         http.StatusUnauthorized,
	ErrCodeRateLimitExceeded:    http.StatusTooManyRequests,
	ErrCodeAITimeout:            http.StatusInternalServerError,
	ErrCodeInvalidAIResponse:    http.StatusInternalServerError,
	ErrCodeAIServiceUnavailable: http.StatusInternalServerError,
}

// Classify maps an error to its code, a message safe to show end users and
// the HTTP status for the request boundary. Unknown errors become 500 with a
// generic message; raw error text never leaks.
func Classify(err error) Classification {
	appErr, ok := AsAppError(err)
	if !ok || err == nil {
		return Classification{Code: ErrCodeInternal, Message: defaultMessage, Status: http.StatusInternalServerError}
	}

	status, known := statusByCode[appErr.Code]
	if !known {
		return Classification{Code: ErrCodeInternal, Message: defaultMessage, Status: http.StatusInternalServerError}
	}

	return Classification{
		Code:    appErr.Code,
		Message: userMessage(appErr, err),
		Status:  status,
	}
}

func userMessage(appErr *AppError, err error) string {
	switch appErr.Code {
	case ErrCodeRateLimitExceeded:
		if retryAfter, ok := appErr.Context["retry_after"].(int); ok && retryAfter > 0 {
			return fmt.Sprintf("Too many requests. Please wait %d seconds and try again.", retryAfter)
		}
		return "Too many requests. Please try again later."
	case ErrCodeFetchFailed, ErrCodeLoginRequired, ErrCodeInvalidRequest, ErrCodeUnsupportedFileType:
		if remediation := RemediationOf(err); remediation != "" {
			return remediation
		}
	case ErrCodeInsufficientText:
		if remediation := RemediationOf(err); remediation != "" {
			return userMessages[appErr.Code] + " " + remediation
		}
	}
	return userMessages[appErr.Code]
}
