// Package client talks to the sharebox HTTP API on behalf of the CLI.
//
// # Overview
//
// API is the transport-agnostic contract the CLI codes against; HTTPClient
// implements it over net/http with a cookie jar holding the session. The
// server answers unauthenticated requests with a redirect to its login page;
// redirects are never followed and surface as ErrUnauthorized.
//
// # Error Handling
//
// Conditions callers branch on are sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrRateLimited and common.ErrorNotFound.
// A name clash on upload is a *ConflictError carrying the existing object.
// Anything else the server rejects is an *APIError.
package client
