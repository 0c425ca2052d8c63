// Package uuidx generates the time-ordered identifiers used to tag
// conversation runs in logs.
package uuidx

import "github.com/google/uuid"

// New returns a version 7 UUID. V7 ids sort by creation time, which keeps
// log lines for consecutive runs adjacent. Panics only if the OS entropy
// source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a version 7 UUID in canonical string form.
func NewString() string {
	return New().String()
}
