package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", Newf(ErrInvalidInput, http.StatusTeapot, "brew %d", 1), http.StatusTeapot},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrTermNotFound), http.StatusNotFound},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"not ready", ErrIndexNotReady, http.StatusServiceUnavailable},
		{"source", fmt.Errorf("redis: %w", ErrSourceUnavailable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrTermNotFound, http.StatusNotFound, "term %q", "cat")
	assert.ErrorIs(t, err, ErrTermNotFound)
	assert.Equal(t, `term not found: term "cat"`, err.Error())
}
