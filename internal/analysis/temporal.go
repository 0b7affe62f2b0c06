package analysis

import (
	"math"
	"sort"
	"time"
)

// MonthlyBucket is the report count for one observed month. Month is the
// first day of the month in UTC. Months with no records simply do not exist;
// gaps are not zero-filled.
type MonthlyBucket struct {
	Month time.Time
	Count int
}

// Classification of a monthly count relative to the series.
type Classification string

const (
	Peak   Classification = "peak"
	Valley Classification = "valley"
	Normal Classification = "normal"
)

// Outlier is a month flagged by the z-score rule, with its signed percentage
// deviation from the monthly mean.
type Outlier struct {
	Month        time.Time
	Count        int
	ZScore       float64
	Class        Classification
	DeviationPct float64
}

// OutlierReport summarizes the monthly series: mean and sample standard
// deviation of the bucket counts, peaks sorted by descending z, valleys by
// ascending z (most extreme first).
type OutlierReport struct {
	Buckets []MonthlyBucket
	Mean    float64
	StdDev  float64
	Cutoff  float64
	Peaks   []Outlier
	Valleys []Outlier
}

// FloorMonth truncates a date to the first of its month.
func FloorMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BucketMonthly aggregates record dates into per-month counts, sorted
// chronologically. Zero dates are ignored.
func BucketMonthly(dates []time.Time) []MonthlyBucket {
	counts := make(map[time.Time]int)
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		counts[FloorMonth(d)]++
	}
	buckets := make([]MonthlyBucket, 0, len(counts))
	for month, n := range counts {
		buckets = append(buckets, MonthlyBucket{Month: month, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month.Before(buckets[j].Month) })
	return buckets
}

// DetectOutliers flags months whose count deviates from the mean by at least
// cutoff sample standard deviations. A zero-variance series yields no
// outliers rather than a division error.
func DetectOutliers(buckets []MonthlyBucket, cutoff float64) OutlierReport {
	rep := OutlierReport{Buckets: buckets, Cutoff: cutoff}
	if len(buckets) == 0 {
		return rep
	}
	var sum float64
	for _, b := range buckets {
		sum += float64(b.Count)
	}
	rep.Mean = sum / float64(len(buckets))
	if len(buckets) > 1 {
		var m2 float64
		for _, b := range buckets {
			d := float64(b.Count) - rep.Mean
			m2 += d * d
		}
		rep.StdDev = math.Sqrt(m2 / float64(len(buckets)-1))
	}
	if rep.StdDev == 0 {
		return rep
	}
	for _, b := range buckets {
		z := (float64(b.Count) - rep.Mean) / rep.StdDev
		o := Outlier{
			Month:        b.Month,
			Count:        b.Count,
			ZScore:       z,
			DeviationPct: 100 * (float64(b.Count) - rep.Mean) / rep.Mean,
		}
		switch {
		case z >= cutoff:
			o.Class = Peak
			rep.Peaks = append(rep.Peaks, o)
		case z <= -cutoff:
			o.Class = Valley
			rep.Valleys = append(rep.Valleys, o)
		}
	}
	sort.Slice(rep.Peaks, func(i, j int) bool { return rep.Peaks[i].ZScore > rep.Peaks[j].ZScore })
	sort.Slice(rep.Valleys, func(i, j int) bool { return rep.Valleys[i].ZScore < rep.Valleys[j].ZScore })
	return rep
}
