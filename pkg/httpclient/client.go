package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Client sends requests through a shared session and decodes JSON responses.
// A Client is safe for concurrent use.
type Client struct {
	executor *Executor
	strict   bool
}

type options struct {
	timeout         time.Duration
	resourceTimeout time.Duration
	trustedDomain   string
	transport       Transport
	log             Logger
	strict          bool
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the per-request timeout of the built-in session (default 10s).
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithResourceTimeout sets the whole-exchange timeout of the built-in session (default 10s).
func WithResourceTimeout(d time.Duration) Option {
	return func(o *options) { o.resourceTimeout = d }
}

// WithTrustedSSLDomain accepts the server certificate of exactly this host without validation.
// The host is compared case-insensitively and wildcards are not expanded, so
// "Dev.Internal" also trusts "dev.internal" but never "api.dev.internal".
func WithTrustedSSLDomain(host string) Option {
	return func(o *options) { o.trustedDomain = host }
}

// WithTransport injects a pre-built transport, bypassing the session factory.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger sets the logger used for exchange records.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// WithStrictDecoding rejects response fields that the target type does not declare.
func WithStrictDecoding() Option {
	return func(o *options) { o.strict = true }
}

// New builds a client. Without WithTransport a Session is created from the timeout options.
func New(opts ...Option) *Client {
	o := options{
		timeout:         DefaultRequestTimeout,
		resourceTimeout: DefaultResourceTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	transport := o.transport
	if transport == nil {
		transport = NewSession(SessionConfig{
			RequestTimeout:  o.timeout,
			ResourceTimeout: o.resourceTimeout,
			TrustedDomain:   o.trustedDomain,
		}, o.log)
	}

	return &Client{
		executor: NewExecutor(transport, o.log),
		strict:   o.strict,
	}
}

// Send executes a raw request and returns the unprocessed response.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	return c.executor.Send(ctx, req)
}

// Check reports whether a GET to url returns a 2xx status. Every failure yields false.
func (c *Client) Check(ctx context.Context, url string) bool {
	resp, err := c.Send(ctx, NewRequest(MethodGet, url, nil))
	if err != nil {
		return false
	}
	return resp.IsSuccess()
}

// Get sends a GET request and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, url string, headers map[string]string) (T, error) {
	req := NewRequest(MethodGet, url, nil).SetHeaders(headers)
	return sendAndDecode[T](ctx, c, req)
}

// Post sends form as an application/x-www-form-urlencoded body and decodes the JSON response into T.
func Post[T any](ctx context.Context, c *Client, url string, form *Form, headers map[string]string) (T, error) {
	req := NewFormRequest(MethodPost, url, form).SetHeaders(headers)
	return sendAndDecode[T](ctx, c, req)
}

// PostJSON sends body as JSON and decodes the JSON response into T.
// A marshal failure is returned as-is.
func PostJSON[T any](ctx context.Context, c *Client, url string, body any, headers map[string]string) (T, error) {
	var zero T
	req, err := NewJSONRequest(MethodPost, url, body)
	if err != nil {
		return zero, err
	}
	req.SetHeaders(headers)
	return sendAndDecode[T](ctx, c, req)
}

func sendAndDecode[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var zero T

	resp, err := c.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	if resp == nil {
		return zero, invalidResponseError()
	}
	// Any status outside 2xx is reported with its code, including ones no
	// registry defines.
	if !resp.IsSuccess() {
		return zero, httpStatusError(resp.StatusCode)
	}

	out, err := decodeJSON[T](resp.Body, c.strict)
	if err != nil {
		return zero, decodingError(err)
	}
	return out, nil
}

// decodeJSON decodes into a fresh value so a failure leaves nothing half-filled.
func decodeJSON[T any](body []byte, strict bool) (T, error) {
	var out T
	if !strict {
		err := json.Unmarshal(body, &out)
		return out, err
	}

	var zero T
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return zero, err
	}
	if dec.More() {
		return zero, fmt.Errorf("invalid character after top-level value at offset %d", dec.InputOffset())
	}
	return out, nil
}
