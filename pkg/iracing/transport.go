package iracing

import (
	"net/http"
	"strings"
)

// cacheDirectiveTransport rewrites the Cache-Control request header before the
// request leaves the process. The upstream edge rejects requests carrying a
// bare "no-cache" directive, so that directive is dropped while every other
// directive and header is forwarded untouched.
type cacheDirectiveTransport struct {
	base http.RoundTripper
}

// NewCacheDirectiveTransport wraps base so that every outbound request has
// unsupported cache directives normalized. A nil base uses
// http.DefaultTransport.
func NewCacheDirectiveTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &cacheDirectiveTransport{base: base}
}

func (t *cacheDirectiveTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if cc := req.Header.Get("Cache-Control"); cc != "" {
		if normalized, changed := stripNoCache(cc); changed {
			// Clone before mutating: RoundTrippers must not modify the
			// caller's request.
			req = req.Clone(req.Context())
			if normalized == "" {
				req.Header.Del("Cache-Control")
			} else {
				req.Header.Set("Cache-Control", normalized)
			}
		}
	}
	return t.base.RoundTrip(req)
}

// stripNoCache removes the "no-cache" directive from a Cache-Control value,
// preserving all other directives. The second return reports whether the
// value was modified.
func stripNoCache(value string) (string, bool) {
	parts := strings.Split(value, ",")
	kept := make([]string, 0, len(parts))
	changed := false
	for _, part := range parts {
		directive := strings.TrimSpace(part)
		if strings.EqualFold(directive, "no-cache") {
			changed = true
			continue
		}
		if directive != "" {
			kept = append(kept, directive)
		}
	}
	if !changed {
		return value, false
	}
	return strings.Join(kept, ", "), true
}
