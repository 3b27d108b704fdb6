package common

import "time"

// TextKeyPrefix marks objects holding inline text messages rather than
// uploaded files.
const TextKeyPrefix = "text-"

// PreviewLength is the number of characters kept in a text preview.
const PreviewLength = 50

// PreviewUnavailable replaces a preview that could not be fetched.
const PreviewUnavailable = "preview unavailable"

// Cookie names shared by the server and the CLI.
const (
	SessionCookieName = "sharebox_session"
	ProfileCookieName = "sharebox_profile"
)

// SessionLifetime is how long an issued session cookie stays valid.
const SessionLifetime = 30 * 24 * time.Hour

// RequestIDHeaderName carries the per-request id on responses.
const RequestIDHeaderName = "X-Request-ID"
