// Package client is the typed Go client of the siteadmin HTTP API.
//
// A Client signs in with credentials, keeps the resulting tokens in an
// explicit SessionContext and refreshes the access token when it has
// expired. Collection reads go through a querycache.Cache keyed
// "<entity>:list"; every successful write through the same Client
// invalidates that key.
//
// Errors returned for non-2xx responses are *APIError values that unwrap to
// the sentinels in package common, so callers match them with errors.Is.
package client
