package ordered

import (
	"testing"

	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	dbtesting "github.com/ValentinKolb/eKV/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunBackendTests(t, "Ordered", func() db.Backend {
		return New(nil)
	})

	c, err := codec.New(codec.Config{Serializer: codec.SerializerJSON, Compression: codec.CompressionZstd})
	if err != nil {
		t.Fatalf("codec.New failed: %v", err)
	}
	dbtesting.RunBackendTests(t, "Ordered(json+zstd)", func() db.Backend {
		return New(c)
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunBackendBenchmarks(b, "Ordered", func() db.Backend {
		return New(nil)
	})
}
