package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// Searcher runs a query body against the index service
type Searcher interface {
	Search(ctx context.Context, body map[string]any) (*Result, error)
}

// UpstreamError is returned when the index service answers with a non-success status
type UpstreamError struct {
	Status int
	// Payload is the upstream "error" field, or the whole body when there is none
	Payload any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("index service returned status %d", e.Status)
}

// Client talks to an Elasticsearch compatible index service using an API key
type Client struct {
	es    *elasticsearch.Client
	index string
}

// NewClient creates a client for baseURL/index. Retries are disabled; a failed
// call fails the request.
func NewClient(baseURL, apiKey, index string, transport http.RoundTripper) (*Client, error) {
	if transport == nil {
		transport = http.DefaultTransport
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{baseURL},
		APIKey:       apiKey,
		Transport:    productHeaderTransport{next: transport},
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index client: %w", err)
	}

	return &Client{es: es, index: index}, nil
}

// productHeaderTransport marks responses as coming from Elasticsearch when the
// server leaves the header out (OpenSearch and other compatible services).
// The client refuses 2xx responses without it.
type productHeaderTransport struct {
	next http.RoundTripper
}

const productHeader = "X-Elastic-Product"

func (t productHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if res.Header == nil {
		res.Header = http.Header{}
	}
	if res.Header.Get(productHeader) == "" {
		res.Header.Set(productHeader, "Elasticsearch")
	}
	return res, nil
}

// Search POSTs body to /<index>/_search and reshapes the hits
func (c *Client) Search(ctx context.Context, body map[string]any) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call index service: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read index response: %w", err)
	}

	if res.IsError() {
		return nil, &UpstreamError{Status: res.StatusCode, Payload: errorPayload(raw)}
	}

	return decodeResult(raw)
}

// errorPayload picks the "error" field out of an upstream error body
func errorPayload(raw []byte) any {
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	if obj, ok := body.(map[string]any); ok {
		if e, exists := obj["error"]; exists {
			return e
		}
	}
	return body
}
