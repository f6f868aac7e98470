// Package auth issues and validates JWT access and refresh tokens, hashes
// passwords with bcrypt and carries the authenticated Principal through a
// request context.
package auth
