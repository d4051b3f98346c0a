package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig         ErrorCode = "invalid_configuration"
	ErrBindFlags             ErrorCode = "bind_flags_failed"
	ErrReadConfig            ErrorCode = "read_config_failed"
	ErrInvalidInterval       ErrorCode = "invalid_interval"
	ErrInvalidThreshold      ErrorCode = "invalid_threshold"
	ErrInvalidThresholdOrder ErrorCode = "invalid_threshold_order"
	ErrInvalidUrgency        ErrorCode = "invalid_urgency"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"

	// Metrics errors
	ErrInitMetrics  ErrorCode = "init_metrics_failed"
	ErrCloseMetrics ErrorCode = "close_metrics_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:              "Internal error occurred",
	ErrInvalidArgument:       "Invalid argument provided",
	ErrAlreadyRunning:        "Another instance is already running",
	ErrInvalidConfig:         "Invalid configuration",
	ErrBindFlags:             "Failed to bind flags",
	ErrReadConfig:            "Failed to read config file",
	ErrInvalidInterval:       "Invalid interval value",
	ErrInvalidThreshold:      "Threshold must be between 0 and 100",
	ErrInvalidThresholdOrder: "Critical battery percentage should be less than low battery percentage",
	ErrInvalidUrgency:        "Invalid notification urgency",
	ErrInvalidLogLevel:       "Invalid log level",
	ErrInitFailed:            "Initialization failed",
	ErrShutdownFailed:        "Shutdown failed",
	ErrInitApp:               "Failed to initialize application",
	ErrMainLoop:              "Error in main loop",
	ErrTimeout:               "Operation timed out",
	ErrInitMetrics:           "Failed to initialize metrics",
	ErrCloseMetrics:          "Failed to close metrics connection",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
