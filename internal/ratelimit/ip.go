package ratelimit

import (
	"net/http"
	"strings"
)

const UnknownIP = "unknown"

// GetClientIP trusts proxy headers as-is. Callers without either header
// share the UnknownIP bucket.
func GetClientIP(h http.Header) string {
	if fwd := h.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(h.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownIP
}
