package analysis

import (
	"math"
	"testing"
	"time"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func bucketsFromCounts(start time.Time, counts []int) []MonthlyBucket {
	out := make([]MonthlyBucket, len(counts))
	for i, n := range counts {
		out[i] = MonthlyBucket{Month: start.AddDate(0, i, 0), Count: n}
	}
	return out
}

func TestFloorMonth(t *testing.T) {
	got := FloorMonth(time.Date(2023, time.March, 17, 14, 5, 0, 0, time.UTC))
	if !got.Equal(month(2023, time.March)) {
		t.Fatalf("FloorMonth = %v", got)
	}
}

func TestBucketMonthly(t *testing.T) {
	dates := []time.Time{
		time.Date(2023, time.January, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.January, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		{}, // zero dates are ignored
	}
	buckets := BucketMonthly(dates)
	if len(buckets) != 2 {
		t.Fatalf("buckets = %#v, want 2 (no zero-filled February)", buckets)
	}
	if !buckets[0].Month.Equal(month(2023, time.January)) || buckets[0].Count != 2 {
		t.Fatalf("first bucket = %#v", buckets[0])
	}
	if !buckets[1].Month.Equal(month(2023, time.March)) || buckets[1].Count != 1 {
		t.Fatalf("second bucket = %#v", buckets[1])
	}
}

func TestDetectOutliersSinglePeak(t *testing.T) {
	buckets := bucketsFromCounts(month(2023, time.January), []int{10, 11, 9, 10, 50, 10, 9})
	rep := DetectOutliers(buckets, 2.0)

	if !almostEqual2(rep.Mean, 109.0/7.0, 1e-9) {
		t.Fatalf("mean = %f", rep.Mean)
	}
	if len(rep.Peaks) != 1 || len(rep.Valleys) != 0 {
		t.Fatalf("peaks = %d, valleys = %d, want 1/0", len(rep.Peaks), len(rep.Valleys))
	}
	peak := rep.Peaks[0]
	if peak.Count != 50 || !peak.Month.Equal(month(2023, time.May)) {
		t.Fatalf("peak = %#v", peak)
	}
	if peak.Class != Peak {
		t.Fatalf("class = %q", peak.Class)
	}
	if peak.ZScore < 2.0 {
		t.Fatalf("z = %f, want >= 2", peak.ZScore)
	}
	if peak.DeviationPct <= 0 {
		t.Fatalf("deviation pct = %f, want positive", peak.DeviationPct)
	}
}

func TestDetectOutliersZeroVariance(t *testing.T) {
	buckets := bucketsFromCounts(month(2023, time.January), []int{7, 7, 7, 7})
	rep := DetectOutliers(buckets, 2.0)
	if rep.StdDev != 0 {
		t.Fatalf("sd = %f, want 0", rep.StdDev)
	}
	if len(rep.Peaks) != 0 || len(rep.Valleys) != 0 {
		t.Fatalf("zero-variance series flagged outliers: %#v %#v", rep.Peaks, rep.Valleys)
	}
}

func TestDetectOutliersEmptyAndSingle(t *testing.T) {
	if rep := DetectOutliers(nil, 2.0); len(rep.Peaks) != 0 || len(rep.Valleys) != 0 {
		t.Fatalf("empty series flagged outliers")
	}
	rep := DetectOutliers([]MonthlyBucket{{Month: month(2023, time.January), Count: 5}}, 2.0)
	if len(rep.Peaks) != 0 || len(rep.Valleys) != 0 {
		t.Fatalf("single bucket flagged outliers")
	}
}

func TestDetectOutliersValleyAndOrdering(t *testing.T) {
	// Two valleys of different depth plus two peaks of different height.
	buckets := bucketsFromCounts(month(2022, time.January), []int{
		50, 50, 50, 50, 50, 50, 50, 50, 5, 1, 95, 99,
	})
	rep := DetectOutliers(buckets, 1.5)
	if len(rep.Peaks) != 2 {
		t.Fatalf("peaks = %#v", rep.Peaks)
	}
	if rep.Peaks[0].Count != 99 || rep.Peaks[1].Count != 95 {
		t.Fatalf("peaks not ordered by descending z: %#v", rep.Peaks)
	}
	if len(rep.Valleys) != 2 {
		t.Fatalf("valleys = %#v", rep.Valleys)
	}
	if rep.Valleys[0].Count != 1 || rep.Valleys[1].Count != 5 {
		t.Fatalf("valleys not ordered most extreme first: %#v", rep.Valleys)
	}
	for _, v := range rep.Valleys {
		if v.Class != Valley {
			t.Fatalf("class = %q", v.Class)
		}
		if v.DeviationPct >= 0 {
			t.Fatalf("valley deviation pct = %f, want negative", v.DeviationPct)
		}
	}
}

func TestDetectOutliersCutoffBoundary(t *testing.T) {
	buckets := bucketsFromCounts(month(2023, time.January), []int{10, 11, 9, 10, 50, 10, 9})
	var sum float64
	for _, b := range buckets {
		sum += float64(b.Count)
	}
	mean := sum / float64(len(buckets))
	var m2 float64
	for _, b := range buckets {
		d := float64(b.Count) - mean
		m2 += d * d
	}
	sd := math.Sqrt(m2 / float64(len(buckets)-1))
	z := (50 - mean) / sd

	// A cutoff exactly at the z of the extreme month still flags it
	// (inclusive boundary), while anything above does not.
	rep := DetectOutliers(buckets, z)
	if len(rep.Peaks) != 1 {
		t.Fatalf("inclusive boundary: peaks = %#v", rep.Peaks)
	}
	rep = DetectOutliers(buckets, z+0.01)
	if len(rep.Peaks) != 0 {
		t.Fatalf("above boundary: peaks = %#v", rep.Peaks)
	}
}

func almostEqual2(a, b, eps float64) bool { return math.Abs(a-b) <= eps }
