package id

import (
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
)

func TestNewTransferID_FormatAndDecode(t *testing.T) {
	got := NewTransferID()
	if !IsTransferID(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		t.Fatalf("not a uuid: %v", err)
	}
	if u.Version() != 4 {
		t.Fatalf("version = %d, want 4", u.Version())
	}
}

func TestNewTransferID_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewTransferID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsTransferID(t *testing.T) {
	for _, bad := range []string{"", "ABCDEF0123456789ABCDEF0123456789", "0123-4567", NewEventID()} {
		if IsTransferID(bad) {
			t.Errorf("IsTransferID(%q) = true", bad)
		}
	}
}

func TestNewEventID_Parses(t *testing.T) {
	if _, err := uuid.Parse(NewEventID()); err != nil {
		t.Fatalf("event id does not parse: %v", err)
	}
}
