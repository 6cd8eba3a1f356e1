package codec

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/eKV/lib/value"
	"time"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and size
func NewBinarySerializer() ISerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements ISerializer using a custom binary format:
//
//	[flags][value (see value.AppendBinary)][expiry seconds int64][expiry nanos int32]
//
// The expiry fields are only present if the hasExpiry flag is set.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasExpiry byte = 1 << 0

	knownFlags = hasExpiry
)

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ISerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(w value.Wrapped) ([]byte, error) {
	result := make([]byte, 1, 1+16+12)

	var flags byte = 0
	result = w.Value.AppendBinary(result)

	if w.HasExpiry() {
		flags |= hasExpiry
		result = binary.BigEndian.AppendUint64(result, uint64(w.ExpiresAt.Unix()))
		result = binary.BigEndian.AppendUint32(result, uint32(w.ExpiresAt.Nanosecond()))
	}

	// Set flags byte after knowing which fields are present
	result[0] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, w *value.Wrapped) error {
	// Check minimum size (flags + value kind)
	if len(data) < 2 {
		return fmt.Errorf("data too short for wrapped value header")
	}

	flags := data[0]
	if flags&^knownFlags != 0 {
		return fmt.Errorf("unknown flags %08b", flags)
	}
	pos := 1

	v, n, err := value.DecodeBinary(data[pos:])
	if err != nil {
		return err
	}
	pos += n

	var expiresAt time.Time
	if flags&hasExpiry != 0 {
		if pos+12 > len(data) {
			return fmt.Errorf("data too short for expiry")
		}
		sec := int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		nsec := int64(binary.BigEndian.Uint32(data[pos+8 : pos+12]))
		pos += 12
		expiresAt = time.Unix(sec, nsec)
	}

	if pos != len(data) {
		return fmt.Errorf("unexpected %d trailing bytes", len(data)-pos)
	}

	w.Value = v
	w.ExpiresAt = expiresAt
	return nil
}
