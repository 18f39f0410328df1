package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoResumes           = errors.New("no resumes supplied")
	ErrNoValidResumes      = errors.New("none of the supplied resumes could be read")
	ErrMissingCredentials  = errors.New("AI service credentials are not configured")
	ErrEmptyJobDescription = errors.New("job description is empty")
)

type ExtractionReason string

const (
	ReasonUnsupportedFormat ExtractionReason = "UNSUPPORTED_FORMAT"
	ReasonCorruptFile       ExtractionReason = "CORRUPT_FILE"
	ReasonEmptyResult       ExtractionReason = "EMPTY_RESULT"
	ReasonTooLarge          ExtractionReason = "TOO_LARGE"
)

type ExtractionError struct {
	Reason ExtractionReason
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Remark is the recruiter-facing explanation for a failed extraction.
func (e *ExtractionError) Remark() string {
	switch e.Reason {
	case ReasonUnsupportedFormat:
		return "Unsupported file type; upload a PDF, DOCX or TXT resume."
	case ReasonCorruptFile:
		return "The file could not be read; it may be corrupted."
	case ReasonEmptyResult:
		return "No text could be extracted (scanned, image-only or password-protected document)."
	case ReasonTooLarge:
		return "The file exceeds the maximum upload size."
	default:
		return "The file could not be processed."
	}
}

type ServiceErrorKind string

const (
	ServiceTimeout     ServiceErrorKind = "TIMEOUT"
	ServiceUnavailable ServiceErrorKind = "SERVICE_UNAVAILABLE"
	ServiceAuth        ServiceErrorKind = "AUTH_ERROR"

	// ServiceRejected is a 4xx the service will answer the same way again,
	// such as an unknown model or a malformed request.
	ServiceRejected ServiceErrorKind = "REQUEST_REJECTED"
)

type ServiceError struct {
	Kind ServiceErrorKind
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("AI service error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("AI service error (%s)", e.Kind)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed.
func (e *ServiceError) Retryable() bool {
	return e.Kind == ServiceTimeout || e.Kind == ServiceUnavailable
}

func (e *ServiceError) Remark() string {
	switch e.Kind {
	case ServiceTimeout:
		return "The AI service timed out while scoring this resume."
	case ServiceAuth:
		return "The AI service rejected the configured credentials."
	case ServiceRejected:
		return "The AI service rejected the scoring request."
	default:
		return "The AI service was unavailable while scoring this resume."
	}
}

// IsAuthError reports whether err carries an AUTH_ERROR from the AI service.
func IsAuthError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == ServiceAuth
}
