package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-httpclient/pkg/httpclient"
)

const bodySnippetLimit = 512

// httpPublisher delivers events to a webhook through the shared http client.
type httpPublisher struct {
	id      string
	method  httpclient.Method
	url     string
	headers map[string]string
	client  *httpclient.Client
}

// newHTTPPublisher creates a webhook publisher with its own client sized to the configured timeout.
func newHTTPPublisher(_ context.Context, cfg Config, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	method, err := httpclient.ParseMethod(cfg.HTTP.Method)
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	client := httpclient.New(
		httpclient.WithTimeout(timeout),
		httpclient.WithResourceTimeout(timeout),
		httpclient.WithLogger(log),
	)

	return &httpPublisher{
		id:      cfg.ID,
		method:  method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  client,
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish posts the event as JSON. Webhooks often answer with an empty body,
// so only the status code is inspected.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	req, err := httpclient.NewJSONRequest(h.method, h.url, evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req.SetHeaders(h.headers)

	resp, err := h.client.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode, readBodySnippet(resp.Body))
	}
	return nil
}

// readBodySnippet returns at most bodySnippetLimit bytes of body for error messages.
func readBodySnippet(body []byte) string {
	if len(body) > bodySnippetLimit {
		body = body[:bodySnippetLimit]
	}
	return strings.TrimSpace(string(body))
}
