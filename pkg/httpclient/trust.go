package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
)

// AuthMethod identifies the kind of TLS authentication challenge being answered.
type AuthMethod int

const (
	// AuthServerTrust asks whether the server certificate chain should be trusted.
	AuthServerTrust AuthMethod = iota + 1
	// AuthClientCertificate asks which client certificate to present.
	AuthClientCertificate
)

// Disposition is the answer to a Challenge.
type Disposition int

const (
	// PerformDefaultHandling runs the platform's normal validation.
	PerformDefaultHandling Disposition = iota
	// UseCredential accepts the presented server trust as-is.
	UseCredential
)

func (d Disposition) String() string {
	switch d {
	case UseCredential:
		return "use_credential"
	default:
		return "default_handling"
	}
}

// Challenge is a TLS authentication decision point for one connection.
type Challenge struct {
	Method       AuthMethod
	Host         string
	Certificates []*x509.Certificate
}

// TrustPolicy accepts server trust for exactly one host and defers everything else.
type TrustPolicy struct {
	trustedDomain string
}

// NewTrustPolicy returns a policy for domain. An empty domain trusts nothing extra.
// Hosts match the domain exactly, ignoring ASCII case, with no wildcard support.
func NewTrustPolicy(domain string) *TrustPolicy {
	return &TrustPolicy{trustedDomain: strings.TrimSpace(domain)}
}

// TrustedDomain returns the single overridden host, or "".
func (p *TrustPolicy) TrustedDomain() string {
	if p == nil {
		return ""
	}
	return p.trustedDomain
}

// Evaluate decides how a challenge should be answered.
// Only server-trust challenges whose host equals the trusted domain exactly
// (ignoring ASCII case, since DNS names are case-insensitive) are accepted.
func (p *TrustPolicy) Evaluate(ch Challenge) Disposition {
	if p == nil || p.trustedDomain == "" {
		return PerformDefaultHandling
	}
	if ch.Method != AuthServerTrust || len(ch.Certificates) == 0 {
		return PerformDefaultHandling
	}
	if !strings.EqualFold(ch.Host, p.trustedDomain) {
		return PerformDefaultHandling
	}
	return UseCredential
}

// tlsConfig returns the client TLS config for a connection to host.
// Certificate checks move from crypto/tls into VerifyConnection so that the
// trusted host can skip them while every other host gets the standard checks.
func (p *TrustPolicy) tlsConfig(host string, roots *x509.CertPool) *tls.Config {
	return &tls.Config{
		ServerName:         host,
		MinVersion:         tls.VersionTLS12,
		RootCAs:            roots,
		InsecureSkipVerify: true, //nolint:gosec // verification happens in VerifyConnection
		VerifyConnection: func(cs tls.ConnectionState) error {
			ch := Challenge{
				Method:       AuthServerTrust,
				Host:         host,
				Certificates: cs.PeerCertificates,
			}
			if p.Evaluate(ch) == UseCredential {
				return nil
			}
			return verifyDefault(host, cs.PeerCertificates, roots)
		},
	}
}

// verifyDefault replicates the chain and hostname checks crypto/tls performs
// when InsecureSkipVerify is false.
func verifyDefault(host string, certs []*x509.Certificate, roots *x509.CertPool) error {
	if len(certs) == 0 {
		return errors.New("tls: server presented no certificates")
	}
	opts := x509.VerifyOptions{
		Roots:         roots,
		DNSName:       host,
		Intermediates: x509.NewCertPool(),
	}
	for _, cert := range certs[1:] {
		opts.Intermediates.AddCert(cert)
	}
	if _, err := certs[0].Verify(opts); err != nil {
		return fmt.Errorf("tls: verify certificate for %q: %w", host, err)
	}
	return nil
}
