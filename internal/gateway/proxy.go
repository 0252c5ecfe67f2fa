package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// forwardedHeaders are copied from the client request to the backend.
var forwardedHeaders = []string{"Content-Type", "Authorization", "Accept"}

// ServiceProxy replays edge requests against one backend service.
type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// ForwardRequest sends r to path on the backend, keeping its method, body,
// query string and the headers the backends need to authenticate it.
func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	target := p.baseURL + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.Method, err)
	}

	for _, name := range forwardedHeaders {
		if value := r.Header.Get(name); value != "" {
			req.Header.Set(name, value)
		}
	}

	return p.client.Do(req)
}
