package benchkit

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}
	if got := Percentile(data, 50); got != 30 {
		t.Fatalf("expected p50=30, got %v", got)
	}
	if got := Percentile(data, 100); got != 50 {
		t.Fatalf("expected p100=50, got %v", got)
	}
	if got := Percentile(data, 25); math.Abs(got-20) > 1e-9 {
		t.Fatalf("expected p25=20, got %v", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Fatalf("expected 0 for empty data, got %v", got)
	}
}

func TestTrimmedMean(t *testing.T) {
	data := []float64{1000, 2, 3, 4, 5, 6, 7, 8, 9, 0}
	// 10% trims one value from each end: 0 and 1000.
	if got := TrimmedMean(data, 10); math.Abs(got-5.5) > 1e-9 {
		t.Fatalf("expected 5.5, got %v", got)
	}
	if got := TrimmedMean(nil, 1); got != 0 {
		t.Fatalf("expected 0 for empty data, got %v", got)
	}
}
