package configuration

const AppName = "portal"

// AudienceSession is the audience of the signed session cookie.
const AudienceSession = "portal:session"

const (
	CacheAppRateLimitKey      = "app:ratelimit:%s"
	CacheAppWorkerLockKey     = "app:worker:lock:%s" //nolint:gosec // not a credential
	CacheAppWorkerLockTTL     = 60
	CacheAppWorkerLockRefresh = 55
)

// GlobalRequestsPerMinute caps every client address across all routes.
const GlobalRequestsPerMinute = 120

// Event types carried on the notifications topic.
const (
	EventPasswordResetRequested = "PasswordResetRequested"
	EventPasswordResetCompleted = "PasswordResetCompleted"
)

// DateFormat is how dates are written in e-mails.
const DateFormat = "January 2, 2006 at 3:04 PM MST"

const (
	// ResetTokenBytes is the entropy of a reset token; it is hex encoded in links.
	ResetTokenBytes = 32
	// FlashCookieName carries the one-shot flash between a redirect and the next render.
	FlashCookieName = "portal_flash"
	// CSRFCookieName and CSRFFieldName implement the double-submit token.
	CSRFCookieName = "portal_csrf"
	CSRFFieldName  = "_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// Named routes, relative to app.base_path.
const (
	RouteHome      = "/"
	RouteForgot    = "/forgot"
	RouteReset     = "/forgot/reset"
	RouteResetForm = "/forgot/reset/%s"
)

// Rule set names registered in the validation engine.
const (
	RulesForgot = "forgot"
	RulesReset  = "reset"
)

// Validation listener events.
const (
	EventValidateUsers       = "validate:users"
	EventValidateUserAccount = "validate:user.account"
)

// Storage and messaging provider types.
const (
	ProviderJetstream = "jetstream"
	ProviderMemory    = "memory"
	ProviderRedis     = "redis"
	ProviderValkey    = "valkey"
	ProviderPostgres  = "postgres"
	ProviderSQLite    = "sqlite"
)

var ArrayConfigFields = []string{
	"app.trusted_proxies",
	"app.allowed_origins",
	"cache.redis.hosts",
	"cache.valkey.hosts",
}

var ConfigFileSearchPaths = []string{
	"./config.yaml",
	"templates/config.yaml",
}
