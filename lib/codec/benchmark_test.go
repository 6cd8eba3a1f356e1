package codec

import (
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/value"
)

// benchmarkValues returns a set of wrapped values for targeted benchmarking
func benchmarkValues() map[string]value.Wrapped {
	expiry := time.Now().Add(time.Hour)
	return map[string]value.Wrapped{
		"Null":        {Value: value.Null()},
		"Int":         {Value: value.Int(42)},
		"IntWithTTL":  {Value: value.Int(42), ExpiresAt: expiry},
		"SmallString": {Value: value.String("v")},
		"LargeString": {Value: value.String(string(make([]byte, 16*1024)))},
	}
}

// BenchmarkCompress benchmarks compression for all configurations
func BenchmarkCompress(b *testing.B) {
	for _, config := range testConfigs() {
		for name, w := range benchmarkValues() {
			b.Run(config.String()+"_"+name, func(b *testing.B) {
				c, err := New(config)
				if err != nil {
					b.Fatal(err)
				}
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := c.Compress(w); err != nil {
						b.Fatalf("Failed to compress: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDecompress benchmarks decompression for all configurations
func BenchmarkDecompress(b *testing.B) {
	for _, config := range testConfigs() {
		for name, w := range benchmarkValues() {
			b.Run(config.String()+"_"+name, func(b *testing.B) {
				c, err := New(config)
				if err != nil {
					b.Fatal(err)
				}
				data, err := c.Compress(w)
				if err != nil {
					b.Fatal(err)
				}
				b.ReportMetric(float64(len(data)), "bytes")
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := c.Decompress(data); err != nil {
						b.Fatalf("Failed to decompress: %v", err)
					}
				}
			})
		}
	}
}
