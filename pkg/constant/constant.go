package constant

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// Context keys
const (
	CtxKeySubject ContextKey = "subject"
	CtxKeyRoles   ContextKey = "roles"
	CtxKeyLogger  ContextKey = "logger"
)

// Headers
const (
	HeaderAPIKey             = "X-API-Key"
	HeaderRequestID          = "X-Request-Id"
	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// Roles
const (
	RoleAdmin = "admin"
)
