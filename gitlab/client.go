package gitlab

import (
	"crypto/tls"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
)

// NewHTTPClient returns the client used for every call to the hosting service.
// With insecure set, server certificates are not verified.
func NewHTTPClient(insecure bool) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{Transport: transport}
}
