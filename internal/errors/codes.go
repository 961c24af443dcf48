package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token revoked
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // email taken

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN" // no access
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Shipments (SHIPMENT_) ====================
	ShipmentNotFound       = "SHIPMENT_NOT_FOUND"
	ShipmentNoRecordIDs    = "SHIPMENT_NO_RECORD_IDS"    // bulk request without ids
	ShipmentInvalidIDs     = "SHIPMENT_INVALID_IDS"      // ids outside caller's records
	ShipmentNoFields       = "SHIPMENT_NO_FIELDS"        // bulk update with nothing to change
	ShipmentNoneFound      = "SHIPMENT_NONE_FOUND"       // caller owns no shipments

	// ==================== Purchase (PURCHASE_) ====================
	PurchaseInsufficientBalance = "PURCHASE_INSUFFICIENT_BALANCE"
	PurchaseNothingToBuy        = "PURCHASE_NOTHING_TO_BUY"

	// ==================== Presets (PRESET_) ====================
	PresetNotFound = "PRESET_NOT_FOUND"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadMissingFile     = "UPLOAD_MISSING_FILE"
	UploadFailed          = "UPLOAD_FAILED"
	ImportParseFailed     = "IMPORT_PARSE_FAILED" // file unreadable as CSV/XLSX

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
