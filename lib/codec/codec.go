package codec

import (
	"fmt"
	"github.com/ValentinKolb/eKV/lib/value"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

type SerializerType string

const (
	SerializerBinary SerializerType = "binary"
	SerializerJSON   SerializerType = "json"
	SerializerGOB    SerializerType = "gob"
)

type CompressionType string

const (
	CompressionLZ4    CompressionType = "lz4"
	CompressionZstd   CompressionType = "zstd"
	CompressionSnappy CompressionType = "snappy"
)

// Config selects the serializer and the compression of a codec
type Config struct {
	Serializer  SerializerType
	Compression CompressionType
}

// DefaultConfig returns the binary serializer with lz4 compression
func DefaultConfig() Config {
	return Config{
		Serializer:  SerializerBinary,
		Compression: CompressionLZ4,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("%s+%s", c.Serializer, c.Compression)
}

// --------------------------------------------------------------------------
// Codec implementation
// --------------------------------------------------------------------------

type codecImpl struct {
	config     Config
	serializer ISerializer
	compressor ICompressor
}

// New builds a codec from the given configuration.
// Empty fields fall back to DefaultConfig, unknown names are an error.
func New(config Config) (Codec, error) {
	defaults := DefaultConfig()
	if config.Serializer == "" {
		config.Serializer = defaults.Serializer
	}
	if config.Compression == "" {
		config.Compression = defaults.Compression
	}

	var s ISerializer
	switch config.Serializer {
	case SerializerBinary:
		s = NewBinarySerializer()
	case SerializerJSON:
		s = NewJSONSerializer()
	case SerializerGOB:
		s = NewGOBSerializer()
	default:
		return nil, fmt.Errorf("invalid serializer %q (expected one of: binary, json, gob)", config.Serializer)
	}

	var c ICompressor
	switch config.Compression {
	case CompressionLZ4:
		c = NewLZ4Compressor()
	case CompressionZstd:
		var err error
		if c, err = NewZstdCompressor(); err != nil {
			return nil, err
		}
	case CompressionSnappy:
		c = NewSnappyCompressor()
	default:
		return nil, fmt.Errorf("invalid compression %q (expected one of: lz4, zstd, snappy)", config.Compression)
	}

	return &codecImpl{
		config:     config,
		serializer: s,
		compressor: c,
	}, nil
}

// Default returns a codec with the DefaultConfig
func Default() Codec {
	c, err := New(DefaultConfig())
	if err != nil {
		panic(err) // the default configuration is always valid
	}
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (c *codecImpl) Compress(w value.Wrapped) ([]byte, error) {
	raw, err := c.serializer.Serialize(w)
	if err != nil {
		return nil, fmt.Errorf("serialize (%s): %w", c.config.Serializer, err)
	}
	compressed, err := c.compressor.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress (%s): %w", c.config.Compression, err)
	}
	return compressed, nil
}

func (c *codecImpl) Decompress(data []byte) (value.Wrapped, error) {
	raw, err := c.compressor.Decompress(data)
	if err != nil {
		return value.Wrapped{}, fmt.Errorf("decompress (%s): %w", c.config.Compression, err)
	}
	var w value.Wrapped
	if err := c.serializer.Deserialize(raw, &w); err != nil {
		return value.Wrapped{}, fmt.Errorf("deserialize (%s): %w", c.config.Serializer, err)
	}
	return w, nil
}

func (c *codecImpl) Config() Config {
	return c.config
}
