package util

import (
	"math"
	"testing"
)

func TestHashStringSeeded(t *testing.T) {
	if HashString("key", 1) != HashString("key", 1) {
		t.Errorf("HashString must be deterministic for the same seed")
	}
	if HashString("key", 1) == HashString("key", 2) {
		t.Errorf("different seeds should produce different hashes")
	}
}

func TestNewStats(t *testing.T) {
	s := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Mean != 5 || s.StdDeviation != 2 || s.Min != 2 || s.Max != 9 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if NewStats(nil) != (Stats{}) {
		t.Errorf("stats of no samples should be zero")
	}

	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if math.Abs(even.DistributionQuality-1) > 1e-9 {
		t.Errorf("an even distribution should have quality 1, got %f", even.DistributionQuality)
	}
	skewed := NewDistributionStats([]float64{40, 0, 0, 0})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("a skewed distribution should rate lower than an even one")
	}
}

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()
	if h.PercentileEstimate(50) != 0 || h.AverageSize() != 0 {
		t.Errorf("empty histogram should report zero")
	}

	for i := 0; i < 99; i++ {
		h.AddSample(100)
	}
	h.AddSample(10000)

	if h.Count() != 100 || h.Total() != 99*100+10000 {
		t.Errorf("unexpected count/total: %d/%d", h.Count(), h.Total())
	}
	if got := h.PercentileEstimate(50); got != 128 {
		t.Errorf("median estimate should be the 128 byte bucket, got %d", got)
	}
	if got := h.PercentileEstimate(100); got != 16384 {
		t.Errorf("max estimate should be the 16384 byte bucket, got %d", got)
	}
	if got := h.AverageSize(); got != (99*100+10000)/100 {
		t.Errorf("unexpected average %d", got)
	}
}
