// Package middleware holds the HTTP middleware of the API: bearer token
// authentication and per-request trace IDs.
package middleware
