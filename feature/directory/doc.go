// Package directory resolves member display names through the VRChat API.
//
// The Client implements reconcile.Resolver. Given a profile URL or a bare user id
// it returns the user's current display name.
//
// # Session Handling
//
// Login sends the account credentials and, when the API asks for a second factor,
// answers the TOTP challenge with a code generated from the configured secret.
// Session cookies are written to the cookie file so later runs skip the handshake.
// Accounts that only offer email codes are rejected, since runs are unattended.
//
// # Rate Limiting
//
// Requests are spaced by a token bucket (one request per RequestIntervalMS) and
// 429 or 5xx responses are retried with exponential backoff up to MaxRetries.
// A 401 during a lookup triggers one fresh login before the lookup fails.
package directory
