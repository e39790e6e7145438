package provider

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/smmops/panel/internal/config"
)

// NewHTTPClient creates a pooled HTTP client for provider traffic.
// TLS certificate verification is disabled: SMM providers are frequently
// self-signed or serve mismatched hostnames, and the troubleshooting chain
// must be able to distinguish "unreachable" from "bad certificate". This is
// a deliberate trust trade-off, not a security boundary.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxConnsPerHost:     config.HTTPMaxConnsPerHost,
		MaxIdleConnsPerHost: config.HTTPMaxIdleConnsPerHost,
		MaxIdleConns:        config.HTTPMaxIdleConns,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
