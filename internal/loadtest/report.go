package loadtest

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"
)

// Sample is the outcome of a single request
type Sample struct {
	Latency time.Duration
	Status  int    // 0 when the request failed before a response
	Err     string // Transport error, if any
}

// Failed reports whether the sample counts as a failure
func (s Sample) Failed() bool {
	return s.Err != "" || s.Status >= 400
}

// Report aggregates the samples of a load test
type Report struct {
	Users        int
	Elapsed      time.Duration
	Requests     int
	Failures     int
	StatusCounts map[int]int
	ErrorCounts  map[string]int
	Mean         time.Duration
	P50          time.Duration
	P95          time.Duration
	Max          time.Duration
	RPS          float64
}

// NewReport computes counts, latency percentiles and throughput
func NewReport(users int, elapsed time.Duration, samples []Sample) *Report {
	report := &Report{
		Users:        users,
		Elapsed:      elapsed,
		Requests:     len(samples),
		StatusCounts: make(map[int]int),
		ErrorCounts:  make(map[string]int),
	}
	if len(samples) == 0 {
		return report
	}

	latencies := make([]time.Duration, 0, len(samples))
	var total time.Duration
	for _, s := range samples {
		if s.Failed() {
			report.Failures++
		}
		if s.Err != "" {
			report.ErrorCounts[s.Err]++
		} else {
			report.StatusCounts[s.Status]++
		}
		latencies = append(latencies, s.Latency)
		total += s.Latency
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	report.Mean = total / time.Duration(len(latencies))
	report.P50 = percentile(latencies, 0.50)
	report.P95 = percentile(latencies, 0.95)
	report.Max = latencies[len(latencies)-1]
	if elapsed > 0 {
		report.RPS = float64(len(samples)) / elapsed.Seconds()
	}

	return report
}

// percentile returns the nearest-rank percentile of sorted latencies
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}

// Print writes a human-readable summary
func (r *Report) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Users:       %d\n", r.Users)
	_, _ = fmt.Fprintf(w, "Elapsed:     %s\n", r.Elapsed.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Requests:    %d (%.2f req/s)\n", r.Requests, r.RPS)
	_, _ = fmt.Fprintf(w, "Failures:    %d\n", r.Failures)
	_, _ = fmt.Fprintf(w, "Latency:     mean %s  p50 %s  p95 %s  max %s\n",
		r.Mean.Round(time.Millisecond), r.P50.Round(time.Millisecond),
		r.P95.Round(time.Millisecond), r.Max.Round(time.Millisecond))

	statuses := make([]int, 0, len(r.StatusCounts))
	for status := range r.StatusCounts {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)
	for _, status := range statuses {
		_, _ = fmt.Fprintf(w, "  HTTP %d:    %d\n", status, r.StatusCounts[status])
	}

	errs := make([]string, 0, len(r.ErrorCounts))
	for e := range r.ErrorCounts {
		errs = append(errs, e)
	}
	sort.Strings(errs)
	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "  error:      %d x %s\n", r.ErrorCounts[e], e)
	}
}
