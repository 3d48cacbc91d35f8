package ingestion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
)

const sampleLine = `{"tlsEndpoint":{"ip":{"ipv4":"10.0.0.1"},"portNumber":443,"portProtocol":"tcp","domainName":"example.com","serverNameIndicationUsed":true,"startTlsProtocol":""},"httpBody":"Hello, world!","httpHeaders":[{"name":"Server","value":"nginx"}],"httpVersion":"HTTP/1.1","httpStatusCode":200,"httpStatusMessage":"OK","httpPath":"index.html"}`

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(sampleLine))
	require.NoError(t, err)
	require.NotNil(t, rec.TLSEndpoint)
	assert.Equal(t, "example.com", rec.TLSEndpoint.DomainName)
	assert.Equal(t, 443, rec.TLSEndpoint.PortNumber)
	assert.True(t, rec.TLSEndpoint.ServerNameIndicationUsed)
	assert.Equal(t, []Header{{Name: "Server", Value: "nginx"}}, rec.HTTPHeaders)
	assert.Equal(t, uint64(200), rec.HTTPStatusCode)
	assert.Equal(t, "Hello, world!", rec.HTTPBody)
}

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleLine))
	require.NoError(t, err)
	assert.Equal(t, index.NewDocument("https://example.com:443/index.html", "Hello, world!"), doc)
}

func TestRecordURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint TLSEndpoint
		path     string
		want     string
	}{
		{
			name:     "domain on 443",
			endpoint: TLSEndpoint{IP: &IP{IPv4: "1.2.3.4"}, PortNumber: 443, DomainName: "example.com"},
			path:     "a/b",
			want:     "https://example.com:443/a/b",
		},
		{
			name:     "ip fallback on 80",
			endpoint: TLSEndpoint{IP: &IP{IPv4: "1.2.3.4"}, PortNumber: 80},
			path:     "",
			want:     "http://1.2.3.4:80/",
		},
		{
			name:     "8443 is plain http",
			endpoint: TLSEndpoint{IP: &IP{IPv4: "1.2.3.4"}, PortNumber: 8443, DomainName: "svc.local"},
			path:     "x",
			want:     "http://svc.local:8443/x",
		},
		{
			name:     "leading slash kept verbatim",
			endpoint: TLSEndpoint{IP: &IP{}, PortNumber: 443, DomainName: "example.com"},
			path:     "/root",
			want:     "https://example.com:443//root",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := tt.endpoint
			rec := Record{TLSEndpoint: &ep, HTTPPath: tt.path}
			assert.Equal(t, tt.want, rec.URL())
		})
	}
}

func TestDecodeRecordInvalid(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"not json", `{"tlsEndpoint":`, ""},
		{"missing endpoint", `{"httpBody":"x"}`, "tlsEndpoint"},
		{"missing ip", `{"tlsEndpoint":{"portNumber":80}}`, "tlsEndpoint.ip"},
		{"port overflow", `{"tlsEndpoint":{"ip":{"ipv4":""},"portNumber":70000}}`, "tlsEndpoint.portNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.line))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			if tt.field != "" {
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestValidationErrorIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "a:one; b:two", err.Error())
}

func TestDecodeDocumentMinimalRecord(t *testing.T) {
	// Only the objects needed to build the URL are required. Missing body,
	// path and headers decode to their zero values.
	doc, err := DecodeDocument([]byte(`{"tlsEndpoint":{"ip":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, index.NewDocument("http://:0/", ""), doc)

	rec, err := DecodeRecord([]byte(`{"tlsEndpoint":{"ip":{}}}`))
	require.NoError(t, err)
	assert.Nil(t, rec.HTTPHeaders)
	assert.Equal(t, uint64(0), rec.HTTPStatusCode)
}
