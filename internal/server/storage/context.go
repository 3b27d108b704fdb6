package storage

import "context"

type ctxKey string

const profileKey ctxKey = "profile"

// WithProfile returns a context selecting the connection profile code for
// store calls made with it. The empty code selects the default settings.
func WithProfile(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, profileKey, code)
}

// ProfileFromContext returns the profile code set by WithProfile, or "".
func ProfileFromContext(ctx context.Context) string {
	code, _ := ctx.Value(profileKey).(string)
	return code
}
