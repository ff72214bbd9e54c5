// Package automation looks for markers left by WebDriver, headless browsers
// and scripted HTTP clients. Its result feeds scoring.ApplyBotPenalty.
package automation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/browserscan/trustscore/internal/useragent"
)

// Signals are the automation-relevant fields of the client payload.
type Signals struct {
	WebDriver bool `json:"webdriver"`
	// HasOuterDimensions is nil when the collector did not report it.
	HasOuterDimensions *bool `json:"has_outer_dimensions,omitempty"`
	// AutomationGlobals lists injected globals the collector found, such as
	// "cdc_adoQpoasnfa76pfcZLmcfl_Array" (chromedriver) or "__playwright".
	AutomationGlobals []string `json:"automation_globals,omitempty"`
	WebGLRenderer     string   `json:"-"`
	// Navigator.platform, e.g. "Win32" or "MacIntel".
	Platform string `json:"platform,omitempty"`
	// MaxTouchPoints and HasWindowChrome are nil when not collected.
	MaxTouchPoints  *int  `json:"max_touch_points,omitempty"`
	HasWindowChrome *bool `json:"has_window_chrome,omitempty"`
	// Headers of the scan request. Nil skips the header checks.
	Headers http.Header `json:"-"`
}

var headlessUAPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)headless`),
	regexp.MustCompile(`(?i)phantomjs`),
	regexp.MustCompile(`(?i)selenium`),
	regexp.MustCompile(`(?i)webdriver`),
	regexp.MustCompile(`(?i)puppeteer`),
	regexp.MustCompile(`(?i)playwright`),
	regexp.MustCompile(`(?i)cypress`),
	regexp.MustCompile(`(?i)nightwatch`),
	regexp.MustCompile(`(?i)zombie`),
	regexp.MustCompile(`(?i)electron`),
}

// Software rasterizers used by headless Chrome and CI containers.
var softwareRenderers = []string{"swiftshader", "llvmpipe", "softpipe", "mesa offscreen"}

// TLS client hellos of common HTTP libraries and automation defaults. JA3 is
// computed by the TLS terminator and forwarded in a header.
var knownBotJA3 = map[string]string{
	"3b5074b1b5d032e5620f69f9f700ff0e": "Python requests",
	"b32309a26951912be7dba376398abc3b": "Python urllib",
	"9e10692f1b7f78228b2d4e424db3a98c": "Go net/http",
	"473cd7cb9faa642487833865d516e578": "curl",
	"c12f54a3f91dc7bafd92cb59fe009a35": "Wget",
	"2d1eb5817ece335c24904f516ad5da2f": "Java HttpClient",
	"fc54fe03db02a25e1be5bb5a7678b7a4": "Node.js axios",
	"579ccef312d18482fc42e2b822ca2430": "Node.js node-fetch",
	"5d7974c9fe7862e0f9a3eb35a6a5d9c8": "Puppeteer default",
}

// Headers every mainstream browser sends on a fetch from the scan page.
var expectedBrowserHeaders = []string{"Accept", "Accept-Language", "Accept-Encoding", "User-Agent"}

func headerMarkers(h http.Header) []string {
	var markers []string

	missing := 0
	for _, name := range expectedBrowserHeaders {
		if h.Get(name) == "" {
			missing++
		}
	}
	// One missing header is common behind privacy extensions.
	if missing > 1 {
		markers = append(markers, fmt.Sprintf("Missing expected browser headers (%d)", missing))
	}

	if lang := h.Values("Accept-Language"); len(lang) > 0 && strings.TrimSpace(lang[0]) == "*" {
		markers = append(markers, "Wildcard Accept-Language header")
	}

	return markers
}

// Substring navigator.platform must contain for each desktop OS.
var platformTokens = map[string]string{
	"Windows": "Win",
	"macOS":   "Mac",
	"Linux":   "Linux",
}

// environmentMarkers compares what the User-Agent claims with what the
// JavaScript environment reports.
func environmentMarkers(signals Signals, info useragent.Info) []string {
	var markers []string

	if token, ok := platformTokens[info.OS]; ok && signals.Platform != "" && !strings.Contains(signals.Platform, token) {
		markers = append(markers, fmt.Sprintf("User-Agent claims %s but navigator.platform is %q", info.OS, signals.Platform))
	}

	if info.IsMobile && signals.MaxTouchPoints != nil && *signals.MaxTouchPoints == 0 {
		markers = append(markers, "User-Agent claims mobile but no touch support")
	}

	if info.Browser == "Chrome" && signals.HasWindowChrome != nil && !*signals.HasWindowChrome {
		markers = append(markers, "User-Agent claims Chrome but window.chrome is missing")
	}

	return markers
}

// Result lists the markers found, in detection order.
type Result struct {
	Markers []string `json:"markers"`
}

// Detected reports whether any marker was found.
func (r Result) Detected() bool {
	return len(r.Markers) > 0
}

// Evidence joins the markers into the description used for the
// BOT_DETECTED deduction.
func (r Result) Evidence() string {
	return strings.Join(r.Markers, "; ")
}

// Detect checks the client signals, User-Agent and JA3 hash for automation.
func Detect(signals Signals, userAgent, ja3 string) Result {
	markers := make([]string, 0)

	if signals.WebDriver {
		markers = append(markers, "WebDriver detected (navigator.webdriver = true)")
	}

	if len(signals.AutomationGlobals) > 0 {
		markers = append(markers, "Automation globals present: "+strings.Join(signals.AutomationGlobals, ", "))
	}

	if signals.HasOuterDimensions != nil && !*signals.HasOuterDimensions {
		markers = append(markers, "Window lacks outer dimensions")
	}

	for _, pattern := range headlessUAPatterns {
		if pattern.MatchString(userAgent) {
			markers = append(markers, "Automation pattern in User-Agent")
			break
		}
	}

	info := useragent.Parse(userAgent)
	if info.IsBot {
		markers = append(markers, "User-Agent indicates bot/automation tool ("+info.BotName+")")
	}
	markers = append(markers, environmentMarkers(signals, info)...)

	renderer := strings.ToLower(signals.WebGLRenderer)
	for _, sw := range softwareRenderers {
		if strings.Contains(renderer, sw) {
			markers = append(markers, "Software WebGL renderer detected ("+signals.WebGLRenderer+")")
			break
		}
	}

	if tool, ok := knownBotJA3[strings.ToLower(strings.TrimSpace(ja3))]; ok {
		markers = append(markers, "TLS fingerprint matches "+tool)
	}

	if signals.Headers != nil {
		markers = append(markers, headerMarkers(signals.Headers)...)
	}

	return Result{Markers: markers}
}
