package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"
	"time"
)

// recorder collects per-request outcomes from concurrent workers.
type recorder struct {
	mu        sync.Mutex
	latencies []time.Duration
	codes     map[int]int
	failures  int
}

func newRecorder() *recorder {
	return &recorder{
		latencies: make([]time.Duration, 0, 1<<16),
		codes:     make(map[int]int),
	}
}

// observe records one request. A transport error counts as a failure with no
// status code.
func (r *recorder) observe(d time.Duration, status int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failures++
		return
	}
	r.latencies = append(r.latencies, d)
	r.codes[status]++
}

// summary is an immutable view of a finished run.
type summary struct {
	Requests int
	Failures int
	Codes    map[int]int
	Min      time.Duration
	Mean     time.Duration
	P50      time.Duration
	P90      time.Duration
	P99      time.Duration
	Max      time.Duration
	StdDev   time.Duration
}

func (r *recorder) summary() summary {
	r.mu.Lock()
	sorted := slices.Clone(r.latencies)
	codes := make(map[int]int, len(r.codes))
	for code, n := range r.codes {
		codes[code] = n
	}
	s := summary{Requests: len(r.latencies) + r.failures, Failures: r.failures, Codes: codes}
	r.mu.Unlock()

	if len(sorted) == 0 {
		return s
	}
	slices.Sort(sorted)
	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	s.Mean = sum / time.Duration(len(sorted))
	var sq float64
	for _, d := range sorted {
		diff := float64(d - s.Mean)
		sq += diff * diff
	}
	s.StdDev = time.Duration(math.Sqrt(sq / float64(len(sorted))))
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P50 = percentile(sorted, 50)
	s.P90 = percentile(sorted, 90)
	s.P99 = percentile(sorted, 99)
	return s
}

// percentile uses the nearest-rank method over an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}

func (s summary) print(w io.Writer, elapsed time.Duration) {
	fmt.Fprintf(w, "requests:  %d\n", s.Requests)
	fmt.Fprintf(w, "failures:  %d\n", s.Failures)
	if s.Requests > 0 && elapsed > 0 {
		fmt.Fprintf(w, "req/sec:   %.2f\n", float64(s.Requests)/elapsed.Seconds())
	}
	fmt.Fprintf(w, "latency:   min=%s mean=%s p50=%s p90=%s p99=%s max=%s stddev=%s\n",
		s.Min, s.Mean, s.P50, s.P90, s.P99, s.Max, s.StdDev)
	codes := make([]int, 0, len(s.Codes))
	for code := range s.Codes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "status %d: %d\n", code, s.Codes[code])
	}
}
