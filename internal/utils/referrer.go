package utils

import "net/url"

// ReferrerHost reduces a raw referrer URL to its host component, dropping
// path and query. Unparsable or host-less values keep the raw string; an
// absent referrer stays nil.
func ReferrerHost(raw string) *string {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &raw
	}

	host := u.Hostname()
	return &host
}
