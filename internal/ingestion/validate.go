package ingestion

import (
	"fmt"
	"sort"
	"strings"
)

const maxPort = 65535

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

// Validate checks that the objects needed to build the record's URL are
// present and that the port fits in 16 bits. Empty strings are accepted.
func (r *Record) Validate() error {
	errs := make(map[string]string)
	if r.TLSEndpoint == nil {
		errs["tlsEndpoint"] = "tlsEndpoint is required"
	} else {
		if r.TLSEndpoint.IP == nil {
			errs["tlsEndpoint.ip"] = "ip is required"
		}
		if r.TLSEndpoint.PortNumber < 0 || r.TLSEndpoint.PortNumber > maxPort {
			errs["tlsEndpoint.portNumber"] = fmt.Sprintf("port must be between 0 and %d", maxPort)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
