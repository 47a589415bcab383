package constants

import (
	"time"
)

// Form limits. These must match what the comparison server accepts.
const (
	// MaxFiles - maximum number of file slots on the form (10)
	MaxFiles = 10

	// MaxFileSize - maximum size of a single selected file (10 MiB)
	MaxFileSize = 10 * 1024 * 1024

	// FileFieldName - multipart field name shared by every file part
	FileFieldName = "files"
)

// AllowedExtensions lists the accepted file extensions, lower-case with the leading dot.
// Order matters: it is the order shown in the validation message.
var AllowedExtensions = []string{".pdf", ".docx", ".txt"}

// Simulated progress
const (
	// BaseUploadTime - fixed part of the estimated submission time (20 seconds)
	BaseUploadTime = 20.0

	// SecondsPerMB - estimated seconds added per selected megabyte (2 seconds)
	SecondsPerMB = 2.0

	// ProgressCeiling - percentage the ticking animation approaches but never reaches (90%)
	ProgressCeiling = 90.0

	// MinProgressIncrement - smallest percentage step per tick (0.1%)
	MinProgressIncrement = 0.1

	// MinTickInterval - lower bound of the animation tick (100ms)
	MinTickInterval = 100 * time.Millisecond
)

// User-facing strings. The comparison service is Russian-only.
const (
	ElapsedPrefix      = "Прошло: "
	RemainingPrefix    = "Осталось: "
	RemainingUnknown   = "расчет..."
	SubmitFailedAlert  = "Произошла ошибка при отправке файлов. Пожалуйста, попробуйте еще раз."
	PrepareFailedAlert = "Произошла ошибка при подготовке файлов. Пожалуйста, попробуйте еще раз."
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (256)
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size for event channels (1024)
	EventBusMaxBuffer = 1024
)

// Submission
const (
	// DefaultSubmitTimeout - upper bound for one POST to the comparison endpoint (5 minutes)
	DefaultSubmitTimeout = 5 * time.Minute

	// DefaultSubmitRetries - transport-level retries for connection errors and 5xx (2)
	DefaultSubmitRetries = 2

	// RetryWaitMin / RetryWaitMax - bounds for retryablehttp backoff
	RetryWaitMin = 1 * time.Second
	RetryWaitMax = 10 * time.Second

	// MaxResponseSize - largest response document accepted (32 MiB)
	MaxResponseSize = 32 * 1024 * 1024
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (30 seconds)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// ProxyWarmupTimeout - timeout for the optional proxy warmup request (15 seconds)
	ProxyWarmupTimeout = 15 * time.Second
)

// UI Updates
const (
	// TerminalRefreshRate - redraw rate for terminal progress displays (150ms)
	TerminalRefreshRate = 150 * time.Millisecond
)
