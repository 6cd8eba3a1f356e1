package kv

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/eKV/cmd/util"
	"github.com/ValentinKolb/eKV/lib/common"
	"github.com/ValentinKolb/eKV/lib/query"
	"github.com/ValentinKolb/eKV/lib/store/lstore"
	"github.com/ValentinKolb/eKV/lib/value"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for the store",
		Long: `Runs in-process benchmarks against fresh in-memory stores that use the
configured backend, serializer and compression. The snapshot file is not touched.`,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
	perfTests            = []string{"set", "set-large", "set-ttl", "get", "query", "lookup", "sweep", "tx"}
)

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Parallelism multiplier for the benchmarks"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(1, viper.GetInt("keys"))
	perfNumThreads = max(1, viper.GetInt("threads"))
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return common.InitLoggers(storeConf.LogLevel)
}

// benchmark is the body of one perf test. It gets a fresh store and the test keys.
type benchmark func(b *testing.B, s *lstore.Store, getKey func(int) string)

func runPerf(_ *cobra.Command, _ []string) error {
	opts, err := storeConf.Options()
	if err != nil {
		return err
	}
	// fail early on an invalid codec
	s, err := lstore.New(opts)
	if err != nil {
		return err
	}
	_ = s.Close()

	fmt.Println("Performance testing tool for eKV")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(storeConf.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()
	fmt.Println("starting tests...")

	benchmarks := map[string]benchmark{
		"set":       benchSet,
		"set-large": benchSetLarge,
		"set-ttl":   benchSetTTL,
		"get":       benchGet,
		"query":     benchQuery,
		"lookup":    benchLookup,
		"sweep":     benchSweep,
		"tx":        benchTx,
	}

	results := make(map[string]testing.BenchmarkResult)
	for _, name := range perfTests {
		bench := benchmarks[name]
		result := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(name) {
				return
			}
			s, err := lstore.New(opts)
			if err != nil {
				b.Fatalf("cannot create store: %v", err)
			}
			b.Cleanup(func() { _ = s.Close() })

			getKey := getKeys(name)
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()
			bench(b, s, getKey)
		})
		results[name] = result
		printResult(name, result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvPath)
	}
	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

func benchSet(b *testing.B, s *lstore.Store, getKey func(int) string) {
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_ = s.Insert(getKey(counter), value.Int(int64(counter)), 0)
			counter++
		}
	})
}

func benchSetLarge(b *testing.B, s *lstore.Store, getKey func(int) string) {
	large := value.String(strings.Repeat("x", perfLargeValueSizeKB*1024))
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_ = s.Insert(getKey(counter), large, 0)
			counter++
		}
	})
}

func benchSetTTL(b *testing.B, s *lstore.Store, getKey func(int) string) {
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_ = s.Insert(getKey(counter), value.Int(int64(counter)), time.Minute)
			counter++
		}
	})
}

func fill(b *testing.B, s *lstore.Store, getKey func(int) string) {
	b.StopTimer()
	for i := 0; i < perfKeySpread; i++ {
		_ = s.Insert(getKey(i), value.Int(int64(i%10)), 0)
	}
	b.StartTimer()
}

func benchGet(b *testing.B, s *lstore.Store, getKey func(int) string) {
	fill(b, s, getKey)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = s.Get(getKey(counter))
			counter++
		}
	})
}

func benchQuery(b *testing.B, s *lstore.Store, getKey func(int) string) {
	fill(b, s, getKey)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			q := query.New().Where(getKey(counter), query.GreaterOrEqual, value.Int(5))
			_, _ = s.Execute(q)
			counter++
		}
	})
}

func benchLookup(b *testing.B, s *lstore.Store, getKey func(int) string) {
	fill(b, s, getKey)
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = s.Lookup(value.Int(int64(counter % 10)))
			counter++
		}
	})
}

// benchSweep measures full sweeps where half of the keys have expired
func benchSweep(b *testing.B, s *lstore.Store, getKey func(int) string) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < perfKeySpread; j++ {
			ttl := time.Duration(0)
			if j%2 == 0 {
				ttl = time.Nanosecond
			}
			_ = s.Insert(getKey(j), value.Int(int64(j)), ttl)
		}
		b.StartTimer()

		_, _ = s.RemoveExpired()
	}
}

// benchTx measures a transaction with two inserts and a rollback on close
func benchTx(b *testing.B, s *lstore.Store, getKey func(int) string) {
	for i := 0; i < b.N; i++ {
		func() {
			tx := s.Begin()
			defer tx.Close()
			_ = tx.Insert(getKey(i), value.Int(int64(i)), 0)
			_ = tx.Insert(getKey(i+1), value.Int(int64(i)), 0)
			if i%2 == 0 {
				_ = tx.Commit()
			}
		}()
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// getKeys returns a function mapping an index to one of perfKeySpread test keys (with wraparound)
func getKeys(prefix string) func(int) string {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	return func(i int) string {
		return keys[i%perfKeySpread]
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Backend", "Serializer", "Compression",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range perfTests {
		result, ok := results[test]
		if !ok {
			continue
		}

		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			storeConf.Backend,
			storeConf.Serializer,
			storeConf.Compression,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
