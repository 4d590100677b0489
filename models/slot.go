package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Slot is a computed candidate bookable interval. It is ephemeral: slots are
// never persisted, only their fingerprint survives as the lock and
// idempotency key once a caller decides to book.
type Slot struct {
	ResourceID   string    `json:"resourceId"`
	CapabilityID string    `json:"capabilityId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Fingerprint  string    `json:"fingerprint"`
}

// SlotFingerprint derives the stable fingerprint for a
// (resource, capability, start, end) tuple. Identical inputs always yield the
// same fingerprint regardless of the wall-clock zone they were computed in.
func SlotFingerprint(resourceID, capabilityID string, start, end time.Time) string {
	payload := fmt.Sprintf("%s|%s|%d|%d",
		resourceID, capabilityID, start.UTC().Unix(), end.UTC().Unix())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
