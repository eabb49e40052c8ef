package cache

import (
	"fmt"
	"time"
)

type ttlKind uint8

const (
	ttlForever ttlKind = iota
	ttlRelative
	ttlAbsolute
)

// TTL describes how long an entry lives: forever (the zero value), for a
// duration, or until an absolute instant.
type TTL struct {
	kind ttlKind
	d    time.Duration
	at   time.Time
}

// Forever keeps the entry until it is forgotten or overwritten.
//
// In-process stores cap it: the memory driver evicts after Memory.TTL (24h by
// default) and bigcache after its LifeWindow. Model.GetCached repopulates
// such entries, SetCache callers have to write them again.
func Forever() TTL { return TTL{} }

// For expires the entry d after it is stored. A non-positive d expires it
// immediately, which makes a write behave like a forget.
func For(d time.Duration) TTL { return TTL{kind: ttlRelative, d: d} }

// Seconds is For expressed in whole seconds.
func Seconds(n int) TTL { return For(time.Duration(n) * time.Second) }

// Until expires the entry at t.
func Until(t time.Time) TTL { return TTL{kind: ttlAbsolute, at: t} }

// IsForever reports whether the TTL never expires.
func (t TTL) IsForever() bool { return t.kind == ttlForever }

// Resolve converts t into the relative duration handed to a Store at now.
// live is false when the entry would already be expired.
func (t TTL) Resolve(now time.Time) (d time.Duration, live bool) {
	switch t.kind {
	case ttlRelative:
		return t.d, t.d > 0
	case ttlAbsolute:
		d = t.at.Sub(now)
		return d, d > 0
	default:
		return 0, true
	}
}

func (t TTL) String() string {
	switch t.kind {
	case ttlRelative:
		return t.d.String()
	case ttlAbsolute:
		return "until " + t.at.Format(time.RFC3339)
	default:
		return "forever"
	}
}

var _ fmt.Stringer = TTL{}
