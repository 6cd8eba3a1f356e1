package value

import (
	"fmt"
	"time"
)

// Wrapped is a stored value paired with an optional absolute expiration instant.
// A zero ExpiresAt means the value never expires.
type Wrapped struct {
	Value     Value
	ExpiresAt time.Time
}

// NewWrapped wraps v. A ttl <= 0 means no expiration, otherwise the value
// expires at now+ttl.
func NewWrapped(v Value, ttl time.Duration, now time.Time) Wrapped {
	w := Wrapped{Value: v}
	if ttl > 0 {
		w.ExpiresAt = now.Add(ttl).Round(0) // strip the monotonic reading, the instant is persisted
	}
	return w
}

// HasExpiry reports whether an expiration instant is set
func (w Wrapped) HasExpiry() bool {
	return !w.ExpiresAt.IsZero()
}

// IsExpiredAt reports whether the expiration instant lies strictly before now.
// This is recomputed on every call.
func (w Wrapped) IsExpiredAt(now time.Time) bool {
	return w.HasExpiry() && w.ExpiresAt.Before(now)
}

// IsExpired is IsExpiredAt evaluated against the wall clock
func (w Wrapped) IsExpired() bool {
	return w.IsExpiredAt(time.Now())
}

// Equal reports whether both the values and the expiration instants are equal
func (w Wrapped) Equal(other Wrapped) bool {
	return w.Value.Equal(other.Value) && w.ExpiresAt.Equal(other.ExpiresAt)
}

func (w Wrapped) String() string {
	if !w.HasExpiry() {
		return fmt.Sprintf("Wrapped{%s}", w.Value)
	}
	return fmt.Sprintf("Wrapped{%s, expiresAt=%s}", w.Value, w.ExpiresAt.Format(time.RFC3339Nano))
}
