package httpclient

import "fmt"

// ErrorKind classifies failures raised by the typed decode path.
type ErrorKind int

const (
	// InvalidResponse means the transport produced something that is not an HTTP response.
	InvalidResponse ErrorKind = iota + 1
	// HTTPStatus means the status code was outside 200-299.
	HTTPStatus
	// DecodingFailed means the body did not decode into the requested type.
	DecodingFailed
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidResponse:
		return "invalid_response"
	case HTTPStatus:
		return "http_status"
	case DecodingFailed:
		return "decoding_failed"
	default:
		return "unknown"
	}
}

// ClientError is returned by Get, Post and PostJSON when a response could not
// be turned into a value. Transport errors are never converted into it.
type ClientError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

// Sentinels for errors.Is; they match any ClientError of the same kind.
var (
	ErrInvalidResponse = &ClientError{Kind: InvalidResponse}
	ErrHTTPStatus      = &ClientError{Kind: HTTPStatus}
	ErrDecodingFailed  = &ClientError{Kind: DecodingFailed}
)

func (e *ClientError) Error() string {
	switch e.Kind {
	case InvalidResponse:
		return "Invalid response type"
	case HTTPStatus:
		return fmt.Sprintf("Invalid http status code: %d", e.Code)
	case DecodingFailed:
		return "Failed to decode response: " + e.Message
	default:
		return "httpclient: unknown error"
	}
}

func (e *ClientError) Unwrap() error { return e.Err }

// Is matches on kind, and on code when the target carries one.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

func invalidResponseError() error {
	return &ClientError{Kind: InvalidResponse}
}

func httpStatusError(code int) error {
	return &ClientError{Kind: HTTPStatus, Code: code}
}

func decodingError(err error) error {
	return &ClientError{Kind: DecodingFailed, Message: err.Error(), Err: err}
}
