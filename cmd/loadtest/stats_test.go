package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}
	assert.Equal(t, 50*time.Millisecond, percentile(sorted, 50))
	assert.Equal(t, 99*time.Millisecond, percentile(sorted, 99))
	assert.Equal(t, 100*time.Millisecond, percentile(sorted, 100))
	assert.Equal(t, 1*time.Millisecond, percentile(sorted, 0))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}

func TestRecorderSummary(t *testing.T) {
	r := newRecorder()
	r.observe(3*time.Millisecond, 200, nil)
	r.observe(1*time.Millisecond, 200, nil)
	r.observe(2*time.Millisecond, 404, nil)
	r.observe(0, 0, errors.New("refused"))

	s := r.summary()
	assert.Equal(t, 4, s.Requests)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, map[int]int{200: 2, 404: 1}, s.Codes)
	assert.Equal(t, 1*time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Mean)
	assert.Equal(t, 2*time.Millisecond, s.P50)

	var buf bytes.Buffer
	s.print(&buf, time.Second)
	assert.Contains(t, buf.String(), "status 404: 1")
	assert.Contains(t, buf.String(), "req/sec:   4.00")
}
