package httpclient

import (
	"context"
	"errors"
	"time"
)

const logKeyExchange = "http_exchange"

// Executor sends requests through a Transport and logs one record per exchange.
// It never changes what the transport returned.
type Executor struct {
	transport Transport
	log       Logger
	now       func() time.Time
}

// NewExecutor wraps transport. A nil logger discards records.
func NewExecutor(transport Transport, log Logger) *Executor {
	return &Executor{
		transport: transport,
		log:       ensureLogger(log),
		now:       time.Now,
	}
}

// Send executes req and returns the transport's response or error untouched.
func (e *Executor) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("httpclient: nil request")
	}
	if e == nil || e.transport == nil {
		return nil, errors.New("httpclient: executor has no transport")
	}

	start := e.now()
	resp, err := e.transport.Send(ctx, req)
	elapsed := e.now().Sub(start)

	switch {
	case err != nil:
		rec := newErrorRecord(req, err, elapsed)
		e.log.ErrorObj(rec.String(), logKeyExchange, rec)
	case resp != nil:
		rec := newResponseRecord(req, resp, elapsed)
		e.log.DebugObj(rec.String(), logKeyExchange, rec)
	}

	return resp, err
}
