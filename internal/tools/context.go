package tools

import "context"

type contextKey struct{ name string }

var clientIPKey = contextKey{"client-ip"}

// WithClientIP returns a context carrying the HTTP client's IP address.
// The geolocation tool reads it as the middle step of its IP precedence:
// explicit parameter, then context client IP, then server autodetect.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext extracts the client IP injected by WithClientIP.
// Returns "" when none was set.
func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
