// Package client talks to the BoostManager API on behalf of bmctl.
//
// HTTPClient wraps the JSON routes one method per endpoint. It keeps the
// current token pair, sends the access token as a bearer header and, when a
// protected call answers 401, exchanges the refresh token once and retries.
// Rotated tokens are handed to the OnTokenRefresh callback so the caller can
// persist them.
//
// Every failed request is mapped to a Notice (see NoticeFor) and passed to
// the OnNotice sink; quiet paths such as the login endpoints and lockout
// functions only return the error. Non-2xx answers come back as *APIError,
// which matches ErrUnauthorized and ErrForbidden with errors.Is. Transport
// failures wrap ErrUnavailable.
//
// Watch streams superadmin realtime events over a websocket.
//
// InitDatabase and RunMigrations prepare the local SQLite store that holds
// session metadata between runs.
package client
