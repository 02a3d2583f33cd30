package ports

import "net/http"

// HTTPClient is the transport dependency of the provider adapter. It allows
// tests to substitute the pooled client built by pkg/httpclient.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
