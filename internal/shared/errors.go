package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Intake errors
	ErrInvalidMetadata = fmt.Errorf("invalid broadcast metadata")
	ErrMissingAudio    = fmt.Errorf("audio file not found")
	ErrMissingSonglist = fmt.Errorf("songlist file not found")
	ErrUploadNotFound  = fmt.Errorf("upload not found")

	// Destination and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrQuotaExceeded      = fmt.Errorf("destination quota exceeded")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
