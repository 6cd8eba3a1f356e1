package codec

import (
	"github.com/ValentinKolb/eKV/lib/value"
)

// ISerializer converts a wrapped value to and from its uncompressed wire form
type ISerializer interface {
	// Serialize serializes a wrapped value into a byte array
	Serialize(w value.Wrapped) ([]byte, error)
	// Deserialize deserializes a byte array into the given wrapped value
	Deserialize(b []byte, w *value.Wrapped) error
}

// ICompressor is a lossless general purpose byte codec
type ICompressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// Codec turns a wrapped value into the opaque bytes kept by a storage backend and back.
// Decompress(Compress(w)) is value-equal to w for every wrapped value.
type Codec interface {
	Compress(w value.Wrapped) ([]byte, error)
	Decompress(data []byte) (value.Wrapped, error)
	// Config returns the configuration the codec was built from
	Config() Config
}
