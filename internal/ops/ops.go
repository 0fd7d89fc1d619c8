// Package ops implements the capture → cluster → triage → export pipeline
// over the item store. Operations take the database and config explicitly
// and publish change events on an optional notify bus.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// timeNow is swapped out in tests to pin the clock.
var timeNow = time.Now

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
