// Package session stamps every compiler invocation with a UUID so
// diagnostics and build-cache entries from concurrent daemon sessions
// (cmd/fscd) can be correlated back to the request that produced them.
//
// Grounded on the pack's evaluator/builtins_uuid.go wiring of
// github.com/google/uuid into identifier generation, and the teacher's own
// use of UUIDs for scratch directory names in its ext package tests.
package session

import "github.com/google/uuid"

// Session identifies one compiler invocation.
type Session struct {
	ID string
}

// New mints a fresh session with a random UUID.
func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// String returns the session's ID.
func (s *Session) String() string { return s.ID }
