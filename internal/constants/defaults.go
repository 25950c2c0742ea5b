package constants

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultDatabaseRetryAttempts = 3
)

// Default server configuration values
const (
	DefaultServerPort            = 8084
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	ServerErrorChannelSize       = 1
)

// Default sending window values
const (
	DefaultWindowStartMinute   = 9 * 60
	DefaultWindowEndMinute     = 18 * 60
	DefaultMessageIntervalSec  = 30
	DefaultDispatchIntervalSec = 15
	DefaultDispatchBatchSize   = 25
)

// Reconciliation values
const (
	DefaultReconcileDebounceMs = 2000
)

// Bulk operation chunking
const (
	DefaultImportChunkSize = 50
	DefaultDeleteChunkSize = 50
)

// Default channel client values
const (
	DefaultChannelTimeoutSec    = 30
	DefaultChannelRetryCount    = 3
	DefaultEventReconnectMinSec = 1
	DefaultEventReconnectMaxSec = 30
)

// Input validation limits
const (
	MinPhoneNumberLength     = 7
	MaxPhoneNumberLength     = 20
	MaxExternalIDLength      = 255
	MaxTemplateNameLength    = 120
	MaxTemplateContentLength = 4096
)
