package dnsbench_test

import (
	"crypto/tls"
	"net"

	"github.com/miekg/dns"
	"github.com/tantalor93/dnsrank/pkg/dnsbench"
)

// Server represents simple DNS server.
type Server struct {
	Addr  string
	Host  string
	Port  string
	inner *dns.Server
}

// Close shuts down running DNS server instance.
func (s *Server) Close() {
	_ = s.inner.Shutdown()
}

// NewServer creates and starts new DNS server instance listening on a random loopback port.
func NewServer(network string, tlsConfig *tls.Config, f dns.HandlerFunc) *Server {
	ch := make(chan bool)
	s := &dns.Server{Net: network, Addr: "127.0.0.1:0", TLSConfig: tlsConfig, NotifyStartedFunc: func() { close(ch) }, Handler: f}

	go func() {
		if err := s.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	<-ch
	server := Server{inner: s}
	if network == dnsbench.UDPTransport {
		server.Addr = s.PacketConn.LocalAddr().String()
	} else {
		server.Addr = s.Listener.Addr().String()
	}
	server.Host, server.Port, _ = net.SplitHostPort(server.Addr)
	return &server
}

// answering replies to every query with a single A record.
func answering(w dns.ResponseWriter, r *dns.Msg) {
	ret := new(dns.Msg)
	ret.SetReply(r)
	ret.Answer = append(ret.Answer, A(r.Question[0].Name+" IN A 127.0.0.1"))
	_ = w.WriteMsg(ret)
}

func A(rr string) *dns.A { r, _ := dns.NewRR(rr); return r.(*dns.A) }
