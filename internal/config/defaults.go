package config

import "time"

// Default constants for the crawl configuration.
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

	// Target site surfaces. Detail pages are reached by clicking listing
	// elements, so only the entry URLs are configurable.
	DefaultBaseURL      = "https://www.yeoshin.co.kr"
	DefaultSearchFormat = "https://www.yeoshin.co.kr/search/category?q=%s&tab=events"
	DefaultVerifyPath   = "/myPage"
	DefaultCookieDomain = ".yeoshin.co.kr"

	// Crawl bounds.
	DefaultMaxItems       = 50
	DefaultMaxOptions     = 40 // defensive cap, the site never shows this many
	DefaultScrollRounds   = 5
	DefaultWorkers        = 3
	DefaultMaxWorkers     = 10
	DefaultHeadless       = true

	// Waits. Field lookups get the short timeout, structural anchors the
	// long one; the settle delay absorbs client-side rendering after a
	// navigation or click.
	DefaultNavTimeout    = 30 * time.Second
	DefaultFieldTimeout  = 5 * time.Second
	DefaultAnchorTimeout = 10 * time.Second
	DefaultSettleDelay   = 2 * time.Second
	DefaultSearchSettle  = 5 * time.Second
	DefaultScrollDelay   = 3 * time.Second

	// Navigation pacing (per-host token bucket).
	DefaultNavRateRPS   = 2.0
	DefaultNavRateBurst = 4
)

// CookieNames is the fixed credential token set injected on the site
// domain. A token with no value is a warning; all tokens missing is fatal.
var CookieNames = []string{"_kau", "_kahai", "_karmt", "_kawlt", "access_token"}

// CookieEnvVars maps each token to the environment variable it is read
// from. The access token uses an uppercase name for historical reasons.
var CookieEnvVars = map[string]string{
	"_kau":         "_kau",
	"_kahai":       "_kahai",
	"_karmt":       "_karmt",
	"_kawlt":       "_kawlt",
	"access_token": "ACCESS_TOKEN",
}
