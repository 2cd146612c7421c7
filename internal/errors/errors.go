package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Input errors
	ErrorDecodeFailed   ErrorCode = "DECODE_FAILED"
	ErrorInvalidPayload ErrorCode = "INVALID_PAYLOAD"

	// Processing errors
	ErrorPipelineTimeout ErrorCode = "PIPELINE_TIMEOUT"
	ErrorOCRFailed       ErrorCode = "OCR_FAILED"
	ErrorDetectorFailed  ErrorCode = "DETECTOR_FAILED"
)

// ProcessingError represents a structured processing error
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	JobID     string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// WithJob returns a copy of the error tagged with a job id.
func (e *ProcessingError) WithJob(jobID string) *ProcessingError {
	c := *e
	c.JobID = jobID
	return &c
}

// Factory functions for common errors

// NewDecodeError reports image bytes that could not be turned into pixels.
// A decode failure is fatal for the request and is never retried.
func NewDecodeError(reason string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorDecodeFailed,
		Message:   fmt.Sprintf("Image could not be decoded: %s", reason),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"reason": reason,
		},
		Cause: cause,
	}
}

func NewInvalidPayloadError(taskType string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorInvalidPayload,
		Message:   fmt.Sprintf("Invalid payload for task: %s", taskType),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"task_type": taskType,
		},
		Cause: cause,
	}
}

func NewPipelineTimeoutError(duration time.Duration, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorPipelineTimeout,
		Message:   fmt.Sprintf("Processing timed out after %v", duration),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"timeout_duration": duration.String(),
		},
		Cause: cause,
	}
}

func NewOCRFailedError(engine string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorOCRFailed,
		Message:   fmt.Sprintf("OCR failed in engine: %s", engine),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"ocr_engine": engine,
		},
		Cause: cause,
	}
}

func NewDetectorFailedError(detector string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorDetectorFailed,
		Message:   fmt.Sprintf("Glyph detector failed: %s", detector),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"detector": detector,
		},
		Cause: cause,
	}
}

// IsCode reports whether any error in err's chain is a ProcessingError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var pe *ProcessingError
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// ToMap converts error to map for job results
func (e *ProcessingError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	if e.JobID != "" {
		result["job_id"] = e.JobID
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
