// Package ingestion defines the HTTP transaction record schema read from
// NDJSON input and maps each record to an index.Document keyed by a
// synthetic URL.
package ingestion

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
)

// httpsPort selects the https scheme when building a record's URL.
const httpsPort = 443

// Header is one HTTP response header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IP holds the server address.
type IP struct {
	IPv4 string `json:"ipv4"`
}

// TLSEndpoint describes the server side of the transaction.
type TLSEndpoint struct {
	IP                       *IP    `json:"ip"`
	PortNumber               int    `json:"portNumber"`
	PortProtocol             string `json:"portProtocol"`
	DomainName               string `json:"domainName"`
	ServerNameIndicationUsed bool   `json:"serverNameIndicationUsed"`
	StartTLSProtocol         string `json:"startTlsProtocol"`
}

// Record is a single observed HTTP transaction, one per input line.
type Record struct {
	TLSEndpoint       *TLSEndpoint `json:"tlsEndpoint"`
	HTTPBody          string       `json:"httpBody"`
	HTTPHeaders       []Header     `json:"httpHeaders"`
	HTTPVersion       string       `json:"httpVersion"`
	HTTPStatusCode    uint64       `json:"httpStatusCode"`
	HTTPStatusMessage string       `json:"httpStatusMessage"`
	HTTPPath          string       `json:"httpPath"`
}

// DecodeRecord parses and validates one NDJSON line.
func DecodeRecord(line []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: decoding record: %v", apperrors.ErrInvalidInput, err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return rec, nil
}

// DecodeDocument parses one NDJSON line straight into the Document it
// describes.
func DecodeDocument(line []byte) (index.Document, error) {
	rec, err := DecodeRecord(line)
	if err != nil {
		return index.Document{}, err
	}
	return rec.Document(), nil
}

// Host returns the domain name, falling back to the IPv4 address when the
// domain is empty.
func (r Record) Host() string {
	if r.TLSEndpoint == nil {
		return ""
	}
	if r.TLSEndpoint.DomainName != "" {
		return r.TLSEndpoint.DomainName
	}
	if r.TLSEndpoint.IP == nil {
		return ""
	}
	return r.TLSEndpoint.IP.IPv4
}

// Scheme is https on port 443 and http everywhere else.
func (r Record) Scheme() string {
	if r.TLSEndpoint != nil && r.TLSEndpoint.PortNumber == httpsPort {
		return "https"
	}
	return "http"
}

// URL builds scheme://host:port/path. The path is appended verbatim, so a
// path that already starts with "/" yields a double slash.
func (r Record) URL() string {
	port := 0
	if r.TLSEndpoint != nil {
		port = r.TLSEndpoint.PortNumber
	}
	return r.Scheme() + "://" + r.Host() + ":" + strconv.Itoa(port) + "/" + r.HTTPPath
}

// Document maps the record to the document indexed for it: the URL is the
// id and the response body is the text.
func (r Record) Document() index.Document {
	return index.NewDocument(r.URL(), r.HTTPBody)
}
