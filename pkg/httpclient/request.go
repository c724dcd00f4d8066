package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP verb supported by the client.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// ParseMethod validates a verb name, ignoring case and surrounding space.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported http method %q", s)
	}
}

const (
	headerContentType = "Content-Type"
	contentTypeForm   = "application/x-www-form-urlencoded"
	contentTypeJSON   = "application/json"
)

// Request describes a single HTTP call. Treat it as read-only once passed to Send.
type Request struct {
	Method Method
	URL    string
	Header http.Header
	Body   []byte
}

// NewRequest builds a request with an empty header set.
func NewRequest(method Method, url string, body []byte) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
		Body:   body,
	}
}

// NewFormRequest builds a request whose body is the encoded form.
func NewFormRequest(method Method, url string, form *Form) *Request {
	req := NewRequest(method, url, []byte(form.Encode()))
	req.Header.Set(headerContentType, contentTypeForm)
	return req
}

// NewJSONRequest builds a request whose body is body marshalled as JSON.
// Marshal errors are returned unwrapped.
func NewJSONRequest(method Method, url string, body any) (*Request, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req := NewRequest(method, url, raw)
	req.Header.Set(headerContentType, contentTypeJSON)
	return req, nil
}

// SetHeaders applies headers on top of the current set, replacing existing keys.
func (r *Request) SetHeaders(headers map[string]string) *Request {
	if len(headers) == 0 {
		return r
	}
	if r.Header == nil {
		r.Header = make(http.Header, len(headers))
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

// Response is what the transport hands back for a completed exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode <= 299
}
