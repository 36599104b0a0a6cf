// Package id generates the opaque identifiers used for outbound transfers and
// events.
package id

import (
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

var reTransferID = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewTransferID returns a random UUIDv4 as 32 lowercase hex characters, the
// form stored in transfers.transfer_id.
func NewTransferID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// IsTransferID reports whether s has the NewTransferID shape.
func IsTransferID(s string) bool { return reTransferID.MatchString(s) }

// NewEventID returns a canonical hyphenated UUIDv4.
func NewEventID() string { return uuid.NewString() }
