package codec

import (
	"math"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/value"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testConfigs lists every serializer/compression combination
func testConfigs() []Config {
	var configs []Config
	for _, s := range []SerializerType{SerializerBinary, SerializerJSON, SerializerGOB} {
		for _, c := range []CompressionType{CompressionLZ4, CompressionZstd, CompressionSnappy} {
			configs = append(configs, Config{Serializer: s, Compression: c})
		}
	}
	return configs
}

// testValues creates a set of wrapped values covering every kind with and without expiry
func testValues() []value.Wrapped {
	expiry := time.Date(2031, 7, 4, 13, 37, 0, 123456789, time.UTC)
	epoch := time.Unix(0, 0)
	farFuture := time.Date(2400, 1, 1, 0, 0, 0, 1, time.UTC)

	return []value.Wrapped{
		{Value: value.Null()},
		{Value: value.Bool(true)},
		{Value: value.Bool(false), ExpiresAt: expiry},
		{Value: value.Int(0)},
		{Value: value.Int(math.MinInt64), ExpiresAt: epoch},
		{Value: value.Int(math.MaxInt64), ExpiresAt: farFuture},
		{Value: value.Float(0)},
		{Value: value.Float(-1.5e-300), ExpiresAt: expiry},
		{Value: value.Float(math.Inf(1))},
		{Value: value.String("")},
		{Value: value.String("hello world"), ExpiresAt: expiry},
		{Value: value.String(string(make([]byte, 16*1024)))},
	}
}

// TestSerializerRoundTrip tests that wrapped values can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, w := range testValues() {
				data, err := serializer.Serialize(w)
				if err != nil {
					t.Errorf("Failed to serialize value %d: %v", i, err)
					continue
				}

				var result value.Wrapped
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize value %d: %v", i, err)
					continue
				}

				if !result.Equal(w) {
					t.Errorf("Value %d mismatch after round trip: got %s, want %s", i, result, w)
				}
			}
		})
	}
}

// TestCodecRoundTrip checks decompress(compress(w)) == w for every configuration
func TestCodecRoundTrip(t *testing.T) {
	for _, config := range testConfigs() {
		t.Run(config.String(), func(t *testing.T) {
			c, err := New(config)
			if err != nil {
				t.Fatalf("Failed to create codec: %v", err)
			}
			if c.Config() != config {
				t.Errorf("Config() = %v, want %v", c.Config(), config)
			}

			for i, w := range testValues() {
				data, err := c.Compress(w)
				if err != nil {
					t.Fatalf("Failed to compress value %d: %v", i, err)
				}
				result, err := c.Decompress(data)
				if err != nil {
					t.Fatalf("Failed to decompress value %d: %v", i, err)
				}
				if !result.Equal(w) || result.Value.Kind() != w.Value.Kind() {
					t.Errorf("Value %d mismatch after round trip: got %s, want %s", i, result, w)
				}
			}
		})
	}
}

// TestCodecDeterministic checks that compressing the same value twice yields the same bytes
func TestCodecDeterministic(t *testing.T) {
	c := Default()
	w := value.Wrapped{Value: value.String("deterministic")}

	a, err := c.Compress(w)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compress(w)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("compressing the same value twice produced different bytes")
	}
}

// TestCodecCorruptedInput checks that corrupted data results in an error and not in a default value
func TestCodecCorruptedInput(t *testing.T) {
	for _, config := range testConfigs() {
		t.Run(config.String(), func(t *testing.T) {
			c, err := New(config)
			if err != nil {
				t.Fatalf("Failed to create codec: %v", err)
			}

			for _, data := range [][]byte{nil, {}, []byte("not compressed data")} {
				if _, err := c.Decompress(data); err == nil {
					t.Errorf("expected error for corrupted input %q", data)
				}
			}

			valid, err := c.Compress(value.Wrapped{Value: value.Int(1)})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := c.Decompress(valid[:len(valid)/2]); err == nil {
				t.Errorf("expected error for truncated input")
			}
		})
	}
}

func TestBinaryRejectsUnknownFlags(t *testing.T) {
	s := NewBinarySerializer()
	data, err := s.Serialize(value.Wrapped{Value: value.Int(7)})
	if err != nil {
		t.Fatal(err)
	}
	data[0] |= 1 << 5

	var w value.Wrapped
	if err := s.Deserialize(data, &w); err == nil {
		t.Errorf("expected error for unknown flags")
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{Serializer: "xml"}); err == nil {
		t.Errorf("expected error for unknown serializer")
	}
	if _, err := New(Config{Compression: "brotli"}); err == nil {
		t.Errorf("expected error for unknown compression")
	}

	c, err := New(Config{})
	if err != nil {
		t.Fatalf("empty config should fall back to defaults: %v", err)
	}
	if c.Config() != DefaultConfig() {
		t.Errorf("Config() = %v, want %v", c.Config(), DefaultConfig())
	}
}
