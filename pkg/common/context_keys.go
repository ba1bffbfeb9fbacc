package common

type ContextKey string

const (
	// UserIDContextKey holds the authenticated principal's user id.
	UserIDContextKey ContextKey = "user_id"
	// ApiKeyIdContextKey holds the authenticated API key's id, when the
	// request authenticated with a key rather than a dashboard token.
	ApiKeyIdContextKey ContextKey = "api_key_id"
	// AuthMethodContextKey is either AuthMethodApiKey or AuthMethodJWT.
	AuthMethodContextKey ContextKey = "auth_method"
)

const (
	AuthMethodApiKey = "api_key"
	AuthMethodJWT    = "jwt"
)

// Usage domains tracked by the portal. They prefix every Fast Store usage
// key and partition the durable tables.
const (
	AirdropUsageDomain = "airdrop"
	ApiKeyUsageDomain  = "apikey"
)
