package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultRequestTimeout bounds connect, TLS handshake and time to response headers.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultResourceTimeout bounds a whole exchange including the body.
	DefaultResourceTimeout = 10 * time.Second
)

// SessionConfig controls how a Session talks to servers.
type SessionConfig struct {
	RequestTimeout  time.Duration
	ResourceTimeout time.Duration
	// TrustedDomain, when set, is the one host whose server certificate is
	// accepted without validation. The match is exact and case-insensitive.
	TrustedDomain string
	// RootCAs replaces the system roots for default validation.
	RootCAs *x509.CertPool
}

// Session is the production Transport, backed by a resty client.
// It is immutable after NewSession and safe for concurrent use.
type Session struct {
	client    *resty.Client
	transport *http.Transport
	policy    *TrustPolicy
}

// NewSession creates a session from cfg, filling unset timeouts with defaults.
func NewSession(cfg SessionConfig, log Logger) *Session {
	log = ensureLogger(log)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ResourceTimeout <= 0 {
		cfg.ResourceTimeout = DefaultResourceTimeout
	}

	dialer := &net.Dialer{
		Timeout:   cfg.RequestTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = cfg.RequestTimeout
	transport.ResponseHeaderTimeout = cfg.RequestTimeout
	if cfg.RootCAs != nil {
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    cfg.RootCAs,
		}
	}

	policy := NewTrustPolicy(cfg.TrustedDomain)
	if domain := policy.TrustedDomain(); domain != "" {
		log.InfoObj("session trusts ssl certificate for domain", "trusted_ssl_domain", domain)
		// Proxied HTTPS still goes through TLSClientConfig, so the override
		// only applies to direct connections.
		transport.DialTLSContext = trustedTLSDialer(dialer, policy, cfg.RootCAs, cfg.RequestTimeout)
	}

	client := resty.New()
	client.SetTimeout(cfg.ResourceTimeout)
	client.SetTransport(transport)
	// resty drops GET payloads unless told otherwise; requests carry their body for every method.
	client.SetAllowGetMethodPayload(true)

	return &Session{
		client:    client,
		transport: transport,
		policy:    policy,
	}
}

func trustedTLSDialer(dialer *net.Dialer, policy *TrustPolicy, roots *x509.CertPool, handshakeTimeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		raw, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
		defer cancel()

		conn := tls.Client(raw, policy.tlsConfig(host, roots))
		if err := conn.HandshakeContext(hsCtx); err != nil {
			raw.Close()
			return nil, err
		}
		return conn, nil
	}
}

// TrustPolicy returns the TLS override policy in effect.
func (s *Session) TrustPolicy() *TrustPolicy {
	return s.policy
}

// CloseIdleConnections releases pooled connections.
func (s *Session) CloseIdleConnections() {
	if s == nil || s.transport == nil {
		return
	}
	s.transport.CloseIdleConnections()
}

// Send performs the request. Transport errors are returned exactly as resty reports them.
func (s *Session) Send(ctx context.Context, req *Request) (*Response, error) {
	r := s.client.R().SetContext(ctx)
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(string(req.Method), req.URL)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}
