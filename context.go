package authcore

import "context"

type deviceNameContextKey struct{}
type clientIPContextKey struct{}

// WithDeviceName attaches a human-readable device label to ctx. The server
// stores it on the session record created at login, so it shows up in the
// active-sessions screen.
func WithDeviceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, deviceNameContextKey{}, name)
}

// WithClientIP attaches the originating IP address to ctx for session
// records and audit events. Only useful when the client runs behind an edge
// process that knows the real address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func deviceNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	name, _ := ctx.Value(deviceNameContextKey{}).(string)
	return name
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
