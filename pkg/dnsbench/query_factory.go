package dnsbench

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go/http3"
	"github.com/tantalor93/doh-go/doh"
	"github.com/tantalor93/doq-go/doq"
	"golang.org/x/net/http2"
)

const (
	// UDPTransport represents plain DNS over UDP.
	UDPTransport = "udp"
	// TCPTransport represents plain DNS over TCP.
	TCPTransport = "tcp"
	// TLSTransport represents DNS over TLS.
	TLSTransport = "tcp-tls"
)

const (
	// ProtocolUDP queries servers using plain DNS over UDP.
	ProtocolUDP = "udp"
	// ProtocolTCP queries servers using plain DNS over TCP.
	ProtocolTCP = "tcp"
	// ProtocolDoT queries servers using DNS over TLS.
	ProtocolDoT = "dot"
	// ProtocolDoH queries servers using DNS over HTTPS on the /dns-query path.
	ProtocolDoH = "doh"
	// ProtocolDoQ queries servers using DNS over QUIC.
	ProtocolDoQ = "doq"
)

const (
	// GetHTTPMethod represents GET HTTP Method for DoH.
	GetHTTPMethod = "get"
	// PostHTTPMethod represents POST HTTP Method for DoH.
	PostHTTPMethod = "post"
)

const (
	// HTTP1Proto represents HTTP/1.1 protocol for DoH.
	HTTP1Proto = "1.1"
	// HTTP2Proto represents HTTP/2 protocol for DoH.
	HTTP2Proto = "2"
	// HTTP3Proto represents HTTP/3 protocol for DoH.
	HTTP3Proto = "3"
)

var errUnsuccessfulRcode = errors.New("unsuccessful response code")

type queryFunc func(context.Context, *dns.Msg) (*dns.Msg, error)

// DNSExecutor resolves domains in-process, without depending on any tool installed on the host.
type DNSExecutor struct {
	// Protocol is one of ProtocolUDP (default), ProtocolTCP, ProtocolDoT, ProtocolDoH or ProtocolDoQ.
	Protocol string
	// Port overrides the default port of the protocol.
	Port string
	// Timeout bounds the network operations, DefaultProbeTimeout is used when zero.
	Timeout time.Duration

	// DohMethod is GetHTTPMethod or PostHTTPMethod (default).
	DohMethod string
	// DohProtocol is HTTP1Proto (default), HTTP2Proto or HTTP3Proto.
	DohProtocol string

	// Insecure disables TLS certificate validation for DoT, DoH and DoQ.
	Insecure bool

	mu      sync.Mutex
	queries map[string]queryFunc
}

// Name returns name of the executor.
func (e *DNSExecutor) Name() string {
	return "native/" + e.protocol()
}

// Lookup sends A query with recursion desired, a response is successful when it is NOERROR with answers.
func (e *DNSExecutor) Lookup(ctx context.Context, domain, server string) error {
	m := dns.Msg{}
	m.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	m.RecursionDesired = true
	if e.protocol() == ProtocolDoQ {
		// https://www.rfc-editor.org/rfc/rfc9250#section-4.2.1
		m.Id = 0
	}

	r, err := e.queryFor(server)(ctx, &m)
	if err != nil {
		return err
	}
	if r.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("%w: %s", errUnsuccessfulRcode, dns.RcodeToString[r.Rcode])
	}
	if len(r.Answer) == 0 {
		return errEmptyResponse
	}
	return nil
}

func (e *DNSExecutor) protocol() string {
	if e.Protocol == "" {
		return ProtocolUDP
	}
	return e.Protocol
}

func (e *DNSExecutor) timeout() time.Duration {
	if e.Timeout <= 0 {
		return DefaultProbeTimeout
	}
	return e.Timeout
}

func (e *DNSExecutor) queryFor(server string) queryFunc {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queries == nil {
		e.queries = make(map[string]queryFunc)
	}
	if q, ok := e.queries[server]; ok {
		return q
	}
	var q queryFunc
	switch e.protocol() {
	case ProtocolDoH:
		q = e.dohQuery(server)
	case ProtocolDoQ:
		q = e.doqQuery(server)
	default:
		q = e.dnsQuery(server)
	}
	e.queries[server] = q
	return q
}

func (e *DNSExecutor) address(server, defaultPort string) string {
	port := e.Port
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(server, port)
}

func (e *DNSExecutor) dnsQuery(server string) queryFunc {
	network := UDPTransport
	addr := e.address(server, DefaultPort)
	switch e.protocol() {
	case ProtocolTCP:
		network = TCPTransport
	case ProtocolDoT:
		// https://www.rfc-editor.org/rfc/rfc7858
		network = TLSTransport
		addr = e.address(server, DefaultSecurePort)
	}

	dnsClient := &dns.Client{
		Net:     network,
		Timeout: e.timeout(),
		// nolint:gosec
		TLSConfig: &tls.Config{InsecureSkipVerify: e.Insecure},
	}
	return func(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
		r, _, err := dnsClient.ExchangeContext(ctx, msg, addr)
		return r, err
	}
}

func (e *DNSExecutor) dohQuery(server string) queryFunc {
	host := server
	if e.Port != "" {
		host = net.JoinHostPort(server, e.Port)
	} else if ip := net.ParseIP(server); ip != nil && ip.To4() == nil {
		host = "[" + server + "]"
	}

	var tr http.RoundTripper
	switch e.DohProtocol {
	case HTTP3Proto:
		// nolint:gosec
		tr = &http3.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: e.Insecure}}
	case HTTP2Proto:
		// nolint:gosec
		tr = &http2.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: e.Insecure}}
	case HTTP1Proto:
		fallthrough
	default:
		// nolint:gosec
		tr = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: e.Insecure}}
	}
	c := http.Client{Transport: tr, Timeout: e.timeout()}
	dohClient := doh.NewClient("https://"+host+"/dns-query", doh.WithHTTPClient(&c))

	switch e.DohMethod {
	case GetHTTPMethod:
		return dohClient.SendViaGet
	default:
		return dohClient.SendViaPost
	}
}

func (e *DNSExecutor) doqQuery(server string) queryFunc {
	quicClient := doq.NewClient(e.address(server, DefaultSecurePort),
		// nolint:gosec
		doq.WithTLSConfig(&tls.Config{InsecureSkipVerify: e.Insecure}),
		doq.WithReadTimeout(e.timeout()),
		doq.WithWriteTimeout(e.timeout()),
		doq.WithConnectTimeout(e.timeout()),
	)
	return quicClient.Send
}
