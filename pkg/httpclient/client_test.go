package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestGetDecodesSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t" {
			t.Fatalf("missing auth header, got %q", got)
		}
		_, _ = io.WriteString(w, `{"id":1,"name":"ann"}`)
	}))
	defer srv.Close()

	c := New()
	got, err := Get[user](context.Background(), c, srv.URL, map[string]string{"Authorization": "Bearer t"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != (user{ID: 1, Name: "ann"}) {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestGetStatusClassification(t *testing.T) {
	for _, code := range []int{200, 201, 204, 250, 299} {
		c := New(WithTransport(staticTransport(&Response{StatusCode: code, Body: []byte(`{}`)}, nil)))
		if _, err := Get[map[string]any](context.Background(), c, "https://example.com", nil); errors.Is(err, ErrHTTPStatus) {
			t.Fatalf("status %d must not be an http status error, got %v", code, err)
		}
	}

	for _, code := range []int{100, 199, 300, 304, 404, 500, 599} {
		c := New(WithTransport(staticTransport(&Response{StatusCode: code, Body: []byte(`{}`)}, nil)))
		_, err := Get[map[string]any](context.Background(), c, "https://example.com", nil)
		var ce *ClientError
		if !errors.As(err, &ce) || ce.Kind != HTTPStatus || ce.Code != code {
			t.Fatalf("status %d: expected http status error with code, got %v", code, err)
		}
		if !errors.Is(err, &ClientError{Kind: HTTPStatus, Code: code}) {
			t.Fatalf("status %d: expected errors.Is match on code", code)
		}
	}
}

func TestGetInvalidResponse(t *testing.T) {
	c := New(WithTransport(staticTransport(nil, nil)))
	_, err := Get[user](context.Background(), c, "https://example.com", nil)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected invalid response error, got %v", err)
	}
	if err.Error() != "Invalid response type" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestGetUnregisteredStatusIsHTTPStatus(t *testing.T) {
	for _, code := range []int{0, 42, 600} {
		c := New(WithTransport(staticTransport(&Response{StatusCode: code}, nil)))
		_, err := Get[user](context.Background(), c, "https://example.com", nil)
		if !errors.Is(err, &ClientError{Kind: HTTPStatus, Code: code}) {
			t.Fatalf("status %d: expected http status error, got %v", code, err)
		}
		if errors.Is(err, ErrInvalidResponse) {
			t.Fatalf("status %d: must not be an invalid response", code)
		}
	}
}

func TestGetUnregisteredStatusFromServer(t *testing.T) {
	for _, code := range []int{600, 799, 999} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = io.WriteString(w, `{}`)
		}))

		_, err := Get[map[string]any](context.Background(), New(), srv.URL, nil)
		srv.Close()
		if !errors.Is(err, &ClientError{Kind: HTTPStatus, Code: code}) {
			t.Fatalf("status %d: expected http status error, got %v", code, err)
		}
	}
}

func TestGetDecodingFailed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"id":"one","name":"ann"}`,
		``,
	}
	for _, body := range cases {
		c := New(WithTransport(staticTransport(&Response{StatusCode: 200, Body: []byte(body)}, nil)))
		got, err := Get[user](context.Background(), c, "https://example.com", nil)
		if !errors.Is(err, ErrDecodingFailed) {
			t.Fatalf("body %q: expected decoding error, got %v", body, err)
		}
		if got != (user{}) {
			t.Fatalf("body %q: expected zero value on failure, got %+v", body, got)
		}
		var ce *ClientError
		errors.As(err, &ce)
		if ce.Message == "" || err.Error() != "Failed to decode response: "+ce.Message {
			t.Fatalf("unexpected decoding message %q", err.Error())
		}
	}
}

func TestStrictDecodingRejectsUnknownFields(t *testing.T) {
	body := []byte(`{"id":1,"name":"ann","extra":true}`)

	lenient := New(WithTransport(staticTransport(&Response{StatusCode: 200, Body: body}, nil)))
	if _, err := Get[user](context.Background(), lenient, "https://example.com", nil); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}

	strict := New(WithStrictDecoding(), WithTransport(staticTransport(&Response{StatusCode: 200, Body: body}, nil)))
	if _, err := Get[user](context.Background(), strict, "https://example.com", nil); !errors.Is(err, ErrDecodingFailed) {
		t.Fatalf("expected strict decoding failure, got %v", err)
	}
}

func TestStrictDecodingRejectsTrailingData(t *testing.T) {
	body := []byte(`{"id":1,"name":"ann"} {"id":2}`)
	c := New(WithStrictDecoding(), WithTransport(staticTransport(&Response{StatusCode: 200, Body: body}, nil)))

	_, err := Get[user](context.Background(), c, "https://example.com", nil)
	if !errors.Is(err, ErrDecodingFailed) {
		t.Fatalf("expected decoding error, got %v", err)
	}
	var ce *ClientError
	errors.As(err, &ce)
	if !strings.Contains(ce.Message, "after top-level value") {
		t.Fatalf("expected trailing data message, got %q", ce.Message)
	}
}

func TestTransportErrorIsNotWrapped(t *testing.T) {
	transportErr := &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("no such host")}
	c := New(WithTransport(staticTransport(nil, transportErr)))

	_, err := Get[user](context.Background(), c, "https://example.com", nil)
	if err != transportErr {
		t.Fatalf("expected transport error verbatim, got %v", err)
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		t.Fatalf("transport error must not become a ClientError")
	}
}

func TestPostSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != contentTypeForm {
			t.Fatalf("unexpected content type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"name":  r.PostForm.Get("name"),
			"age":   r.PostForm.Get("age"),
			"admin": r.PostForm.Get("admin"),
		})
	}))
	defer srv.Close()

	form := NewForm().Set("name", String("Zoë & co")).Set("age", Int(30)).Set("admin", Bool(false))
	got, err := Post[map[string]string](context.Background(), New(), srv.URL, form, nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got["name"] != "Zoë & co" || got["age"] != "30" || got["admin"] != "false" {
		t.Fatalf("unexpected echo %v", got)
	}
}

func TestPostJSONEchoesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != contentTypeJSON {
			t.Fatalf("unexpected content type %q", ct)
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		_, _ = io.Copy(w, r.Body)
	}))
	defer srv.Close()

	got, err := PostJSON[map[string]int](context.Background(), New(), srv.URL, map[string]int{"a": 1}, nil)
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if got["a"] != 1 || len(got) != 1 {
		t.Fatalf("unexpected echo %v", got)
	}
}

func TestPostJSONMarshalFailure(t *testing.T) {
	called := false
	c := New(WithTransport(TransportFunc(func(context.Context, *Request) (*Response, error) {
		called = true
		return &Response{StatusCode: 200}, nil
	})))

	_, err := PostJSON[user](context.Background(), c, "https://example.com", map[string]any{"ch": make(chan int)}, nil)
	var unsupported *json.UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected marshal error, got %v", err)
	}
	if called {
		t.Fatalf("request must not be sent when marshalling fails")
	}
}

func TestCallerHeadersOverrideContentType(t *testing.T) {
	var seen string
	c := New(WithTransport(TransportFunc(func(_ context.Context, req *Request) (*Response, error) {
		seen = req.Header.Get("Content-Type")
		return &Response{StatusCode: 200, Body: []byte(`{}`)}, nil
	})))

	headers := map[string]string{"Content-Type": "application/vnd.api+json"}
	if _, err := PostJSON[map[string]any](context.Background(), c, "https://example.com", struct{}{}, headers); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if seen != "application/vnd.api+json" {
		t.Fatalf("expected caller content type, got %q", seen)
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name string
		resp *Response
		err  error
		want bool
	}{
		{"ok", &Response{StatusCode: 200}, nil, true},
		{"no content", &Response{StatusCode: 204}, nil, true},
		{"not found", &Response{StatusCode: 404}, nil, false},
		{"redirect", &Response{StatusCode: 301}, nil, false},
		{"malformed", &Response{StatusCode: 0}, nil, false},
		{"nil response", nil, nil, false},
		{"transport error", nil, errors.New("refused"), false},
	}
	for _, tc := range cases {
		c := New(WithTransport(staticTransport(tc.resp, tc.err)))
		if got := c.Check(context.Background(), "https://example.com/health"); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCheckAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/up" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	if !c.Check(context.Background(), srv.URL+"/up") {
		t.Fatalf("expected /up to be healthy")
	}
	if c.Check(context.Background(), srv.URL+"/down") {
		t.Fatalf("expected /down to be unhealthy")
	}
}

func TestSendReturnsRawResponse(t *testing.T) {
	want := &Response{StatusCode: 418, Body: []byte("teapot")}
	c := New(WithTransport(staticTransport(want, nil)))

	got, err := c.Send(context.Background(), NewRequest(MethodGet, "https://example.com", nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got != want {
		t.Fatalf("expected raw response pointer to pass through")
	}
}

func TestClientLogsThroughInjectedLogger(t *testing.T) {
	log := &recordingLogger{}
	c := New(WithLogger(log), WithTransport(staticTransport(&Response{StatusCode: 200, Body: []byte(`{}`)}, nil)))

	if _, err := Get[map[string]any](context.Background(), c, "https://example.com", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(log.debugs) != 1 {
		t.Fatalf("expected one exchange record, got %d", len(log.debugs))
	}
}
