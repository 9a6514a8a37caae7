package common

const (
	// Propagation attribute keys. The instrumentation layer stamps these on
	// every span it emits; they must be read verbatim here.
	SessionIdAttrKey = "pagelens.session.id"
	ProjectIdAttrKey = "pagelens.project.id"
	RequestIdAttrKey = "pagelens.request.id"
	CategoryAttrKey  = "pagelens.span.category"
	InitiatorAttrKey = "pagelens.fetch.initiator"
	OriginAttrKey    = "pagelens.span.origin"

	// OTel semantic convention keys read during span mapping.
	HTTPUrlAttrKey        = "http.url"
	UrlFullAttrKey        = "url.full"
	HTTPTargetAttrKey     = "http.target"
	HTTPMethodAttrKey     = "http.method"
	HTTPStatusCodeAttrKey = "http.status_code"
	HTTPContentLenAttrKey = "http.response_content_length"
	DBSystemAttrKey       = "db.system"

	// Next.js span attributes used for type inference and navigation
	// classification.
	NextSpanTypeAttrKey = "next.span_type"
	NextRouteAttrKey    = "next.route"
	NextPathnameAttrKey = "next.pathname"
	NextRscAttrKey      = "next.rsc"
	NextCacheAttrKey    = "next.cache"
	ServerActionAttrKey = "next.server_action"

	ResourceLanguageKey = "telemetry.sdk.language"

	// Span type value marking the full-page server render.
	DocumentSpanType = "BaseServer.handleRequest"

	CacheHitValue = "HIT"

	DefaultMaxSessions = 50
	DefaultDebounceMs  = 500
)

// NoisePatterns is the fixed denylist applied before session building. A
// span whose name or URL attribute contains any of these substrings is
// dropped as noise.
var NoisePatterns = []string{
	"/_next/static",
	"/_next/image",
	"/__nextjs",
	"/favicon",
	".woff",
	".css",
	".map",
	"hot-reloader",
	"webpack-hmr",
	"_vercel/insights",
	"_vercel/speed-insights",
	"google-analytics.com",
	"googletagmanager.com",
	"segment.io",
	"sentry.io",
	"/__pagelens",
}
