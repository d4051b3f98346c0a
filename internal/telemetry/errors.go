package telemetry

import "codeberg.org/mutker/battwarn/internal/errors"

const (
	// Discovery Errors
	ErrEnumerateFailed = errors.ErrorCode("telemetry_enumerate_failed")
	ErrNoBatteries     = errors.ErrorCode("telemetry_no_batteries")

	// Reading Errors
	ErrRefreshFailed  = errors.ErrorCode("telemetry_refresh_failed")
	ErrInvalidReading = errors.ErrorCode("telemetry_invalid_reading")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
