// Package dedup tracks identity keys of records already accepted during a crawl run.
package dedup

import (
	"strings"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
)

// KeyKind names the record field an identity key was taken from.
type KeyKind string

// Key kinds, in selection priority order.
const (
	KeyProfessionalID KeyKind = "professional_id"
	KeyProfileURL     KeyKind = "profile_url"
	KeyName           KeyKind = "name"
)

// Ledger is a grow-only set of identity keys. It is not safe for concurrent use;
// callers serialize access (see crawler.State).
type Ledger struct {
	seen map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// IdentityKey returns the record's identity key: professional id, else profile URL, else name.
// ok is false when the record carries none of them.
func IdentityKey(r domain.Record) (key string, kind KeyKind, ok bool) {
	candidates := []struct {
		kind  KeyKind
		value *string
	}{
		{KeyProfessionalID, r.ProfessionalID},
		{KeyProfileURL, r.ProfileURL},
		{KeyName, r.Name},
	}
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		if v := strings.TrimSpace(*c.value); v != "" {
			// Keys of different kinds never collide.
			return string(c.kind) + ":" + v, c.kind, true
		}
	}
	return "", "", false
}

// Accept records the identity key of r and reports whether it was new.
// Keyless records and duplicates return false.
func (l *Ledger) Accept(r domain.Record) bool {
	key, _, ok := IdentityKey(r)
	if !ok {
		return false
	}
	if _, dup := l.seen[key]; dup {
		return false
	}
	l.seen[key] = struct{}{}
	return true
}

// Len returns the number of keys accepted so far.
func (l *Ledger) Len() int {
	return len(l.seen)
}
