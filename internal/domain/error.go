package domain

import (
	"errors"
	"fmt"
)

var (
	// Pipeline errors
	ErrResourceExpired      = errors.New("voice payload no longer available at transport")
	ErrTransportUnavailable = errors.New("chat transport unavailable")
	ErrUnsupportedFormat    = errors.New("unsupported audio format")
	ErrTranscodeFailure     = errors.New("audio transcode failed")
	ErrAuth                 = errors.New("speech backend rejected credentials")
	ErrRecognitionFailed    = errors.New("speech recognition failed")
	ErrDeliveryFailed       = errors.New("reply delivery failed")
	ErrJobTimeout           = errors.New("job exceeded its deadline")

	// Input validation
	ErrTextTooLong     = errors.New("text exceeds maximum length")
	ErrDocumentTooBig  = errors.New("document exceeds maximum size")
	ErrUnknownLanguage = errors.New("unknown target language")
)

// RecognitionError carries the underlying cause after retry exhaustion so
// the dispatcher can record the failed stage together with what broke it.
type RecognitionError struct {
	Cause error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition failed: %v", e.Cause)
}

func (e *RecognitionError) Unwrap() error { return ErrRecognitionFailed }

// IsRetryable reports whether retrying the same call can change the outcome.
// Auth, format and expired-resource errors never can.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrAuth),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrResourceExpired),
		errors.Is(err, ErrTranscodeFailure):
		return false
	}
	return true
}
