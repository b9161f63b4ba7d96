package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL; clients map these to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"       // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"      // bearer token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"      // malformed or forged token
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"       // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // no access
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // superuser only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // bad request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-numeric or missing id
	ValidationRequired     = "VALIDATION_REQUIRED"      // missing required field

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // no such record
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // duplicate

	// ==================== Password reset (RESET_) ====================
	ResetNotRequested = "RESET_NOT_REQUESTED"  // no pending reset for this email
	ResetCodeInvalid  = "RESET_CODE_INVALID"   // submitted code does not match

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unclassified failure
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB failure
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // cache/mail transport failure
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // misconfiguration
)
