package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"
)

// Outcome tags a log record.
type Outcome string

const (
	OutcomeOK    Outcome = "OK"
	OutcomeFail  Outcome = "FAIL"
	OutcomeError Outcome = "ERROR"
)

// HeaderEntry is one header line in a log record.
type HeaderEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LogRecord summarises one exchange. Fields that were not available are empty.
type LogRecord struct {
	Method          Method        `json:"method"`
	URL             string        `json:"url"`
	Outcome         Outcome       `json:"outcome"`
	StatusCode      int           `json:"status_code,omitempty"`
	Duration        time.Duration `json:"-"`
	DurationMs      float64       `json:"duration_ms"`
	RequestHeaders  []HeaderEntry `json:"request_headers,omitempty"`
	RequestBody     string        `json:"request_body,omitempty"`
	ResponseHeaders []HeaderEntry `json:"response_headers,omitempty"`
	ResponseBody    string        `json:"response_body,omitempty"`
	ResponseSize    int           `json:"response_size"`
	Error           string        `json:"error,omitempty"`
	ErrorDetails    string        `json:"error_details,omitempty"`
}

func newResponseRecord(req *Request, resp *Response, elapsed time.Duration) LogRecord {
	rec := newRecord(req, elapsed)
	rec.StatusCode = resp.StatusCode
	rec.Outcome = OutcomeFail
	if resp.IsSuccess() {
		rec.Outcome = OutcomeOK
	}
	rec.ResponseHeaders = sortedHeaders(resp.Header)
	rec.ResponseBody = renderBody(resp.Body)
	rec.ResponseSize = len(resp.Body)
	return rec
}

func newErrorRecord(req *Request, err error, elapsed time.Duration) LogRecord {
	rec := newRecord(req, elapsed)
	rec.Outcome = OutcomeError
	rec.Error = err.Error()
	rec.ErrorDetails = fmt.Sprintf("%+v", err)
	return rec
}

func newRecord(req *Request, elapsed time.Duration) LogRecord {
	rec := LogRecord{
		Method:         req.Method,
		URL:            req.URL,
		Duration:       elapsed,
		DurationMs:     float64(elapsed.Microseconds()) / 1000,
		RequestHeaders: sortedHeaders(req.Header),
	}
	if len(req.Body) > 0 && utf8.Valid(req.Body) {
		rec.RequestBody = string(req.Body)
	}
	return rec
}

// String renders the multi-line text form of the record.
func (r LogRecord) String() string {
	var b strings.Builder

	status := "ERROR"
	tag := r.Outcome
	if r.Outcome == OutcomeError {
		tag = OutcomeFail
	} else {
		status = fmt.Sprintf("%d", r.StatusCode)
	}
	fmt.Fprintf(&b, "[HTTP] [%s] [%s] [%s] [%.3fs]", r.Method, tag, status, r.Duration.Seconds())
	fmt.Fprintf(&b, "\nURL: %s", r.URL)

	writeHeaders(&b, "Request Headers:", r.RequestHeaders)
	if r.RequestBody != "" {
		fmt.Fprintf(&b, "\nRequest Body: %s", r.RequestBody)
	}

	if r.Outcome == OutcomeError {
		fmt.Fprintf(&b, "\nError: %s", r.Error)
		fmt.Fprintf(&b, "\nDetails: %s", r.ErrorDetails)
		return b.String()
	}

	writeHeaders(&b, "Response Headers:", r.ResponseHeaders)
	if r.ResponseBody != "" {
		size := humanize.Bytes(uint64(r.ResponseSize))
		if strings.Contains(r.ResponseBody, "\n") {
			fmt.Fprintf(&b, "\nResponse Body (%s):\n%s", size, r.ResponseBody)
		} else {
			fmt.Fprintf(&b, "\nResponse Body (%s): %s", size, r.ResponseBody)
		}
	}
	return b.String()
}

func writeHeaders(b *strings.Builder, title string, headers []HeaderEntry) {
	if len(headers) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(title)
	for _, h := range headers {
		fmt.Fprintf(b, "\n  %s: %s", h.Name, h.Value)
	}
}

func sortedHeaders(h http.Header) []HeaderEntry {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HeaderEntry, 0, len(names))
	for _, name := range names {
		out = append(out, HeaderEntry{Name: name, Value: strings.Join(h[name], ", ")})
	}
	return out
}

// renderBody pretty-prints JSON, passes UTF-8 text through and drops anything else.
func renderBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if json.Valid(body) {
		return strings.TrimRight(string(pretty.Pretty(body)), "\n")
	}
	if utf8.Valid(body) {
		return string(body)
	}
	return ""
}
