package utils

import "strings"

// User-agent classification uses ordered substring matching against fixed
// vocabularies; the first match wins. Anything unmatched is the literal
// "unknown". The priority order is part of the contract (e.g. "mobile"
// before "tablet", "chrome" before "safari") so results stay stable across
// releases.

var browsers = []string{"chrome", "firefox", "safari", "opera", "msie", "edge", "brave"}

var platforms = []string{"windows", "linux", "macintosh", "android", "iphone", "ipad"}

// DeviceType classifies a user agent as mobile, tablet or desktop.
func DeviceType(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}

	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "mobile") {
		return "mobile"
	}
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return "tablet"
	}

	return "desktop"
}

// Browser returns the first browser keyword found in the user agent.
func Browser(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}

	ua := strings.ToLower(userAgent)
	for _, b := range browsers {
		if strings.Contains(ua, b) {
			return b
		}
	}

	return "unknown"
}

// Platform returns the first platform keyword found in the user agent.
func Platform(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}

	ua := strings.ToLower(userAgent)
	for _, p := range platforms {
		if strings.Contains(ua, p) {
			return p
		}
	}

	return "unknown"
}
