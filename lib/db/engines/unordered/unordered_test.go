package unordered

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	dbtesting "github.com/ValentinKolb/eKV/lib/db/testing"
	"github.com/ValentinKolb/eKV/lib/value"
)

func Test(t *testing.T) {
	dbtesting.RunBackendTests(t, "Unordered", func() db.Backend {
		return New(nil, nil)
	})

	c, err := codec.New(codec.Config{Serializer: codec.SerializerGOB, Compression: codec.CompressionSnappy})
	if err != nil {
		t.Fatalf("codec.New failed: %v", err)
	}
	dbtesting.RunBackendTests(t, "Unordered(gob+snappy,1 shard)", func() db.Backend {
		return New(c, &Options{NumShards: 1})
	})
}

func TestConcurrentInsert(t *testing.T) {
	backend := New(nil, &Options{NumShards: 8})
	now := time.Now()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = backend.Insert(fmt.Sprintf("g%d-%d", g, i), value.NewWrapped(value.Int(int64(i)), 0, now))
			}
		}(g)
	}
	wg.Wait()

	if backend.Len() != 8*500 {
		t.Fatalf("Expected %d entries, got %d", 8*500, backend.Len())
	}

	sizes := backend.(*unorderedImpl).ShardSizes()
	total := 0.0
	for _, s := range sizes {
		if s == 0 {
			t.Errorf("Expected every shard to receive keys, got %v", sizes)
		}
		total += s
	}
	if int(total) != backend.Len() {
		t.Errorf("Shard sizes sum to %v, want %d", total, backend.Len())
	}
}

func Benchmark(b *testing.B) {
	dbtesting.RunBackendBenchmarks(b, "Unordered", func() db.Backend {
		return New(nil, nil)
	})
}
