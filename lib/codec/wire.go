package codec

import (
	"github.com/ValentinKolb/eKV/lib/value"
	"time"
)

// wireWrapped is the shape used by the reflection based serializers (json, gob).
// The expiry is split into seconds and nanoseconds so every time.Time survives,
// including instants outside the int64 nanosecond range.
type wireWrapped struct {
	Value       value.Value `json:"value"`
	HasExpiry   bool        `json:"has_expiry,omitempty"`
	ExpiresSec  int64       `json:"expires_sec,omitempty"`
	ExpiresNsec int32       `json:"expires_nsec,omitempty"`
}

func toWire(w value.Wrapped) wireWrapped {
	out := wireWrapped{Value: w.Value}
	if w.HasExpiry() {
		out.HasExpiry = true
		out.ExpiresSec = w.ExpiresAt.Unix()
		out.ExpiresNsec = int32(w.ExpiresAt.Nanosecond())
	}
	return out
}

func fromWire(in wireWrapped) value.Wrapped {
	out := value.Wrapped{Value: in.Value}
	if in.HasExpiry {
		out.ExpiresAt = time.Unix(in.ExpiresSec, int64(in.ExpiresNsec))
	}
	return out
}
