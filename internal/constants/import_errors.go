package constants

// Import error kinds. The HTTP layer maps each to a status code.
const (
	ErrCodeAuth           = "AUTH"
	ErrCodeConfig         = "CONFIG"
	ErrCodeSchemaMismatch = "SCHEMA_MISMATCH"
	ErrCodeFetch          = "FETCH"
	ErrCodePersistence    = "PERSISTENCE"
	ErrCodeCancelled      = "CANCELLED"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeInvalidData    = "INVALID_DATA"
)

// Fetch error codes raised by sheet providers
const (
	ErrCodeHTTPStatus    = "HTTP_STATUS"
	ErrCodeNetworkError  = "NETWORK_ERROR"
	ErrCodeMalformedCSV  = "MALFORMED_CSV"
	ErrCodeInvalidURL    = "INVALID_URL"
	ErrCodeSheetNotFound = "SHEET_NOT_FOUND"
)

const (
	MsgUnauthorized        = "Unauthorized"
	MsgNotFound            = "Not found"
	MsgImportRunning       = "Import already running"
	MsgCancelledByUser     = "cancelled by user"
	MsgInternalServerError = "Internal server error"
)
