package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ClientIPResolver extracts the client address, trusting forwarded headers
// only from configured proxy networks.
type ClientIPResolver struct {
	trustedProxies []*net.IPNet
}

// NewClientIPResolver trusts loopback and private networks.
func NewClientIPResolver() *ClientIPResolver {
	r := &ClientIPResolver{}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"} {
		_ = r.AddTrustedProxy(cidr)
	}
	return r
}

func (c *ClientIPResolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	c.trustedProxies = append(c.trustedProxies, network)
	return nil
}

// ExtractClientIP returns the first valid X-Forwarded-For or X-Real-IP
// address when the direct peer is trusted, and the peer address otherwise.
func (c *ClientIPResolver) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	parsed := net.ParseIP(directIP)
	if parsed == nil || !c.isTrusted(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (c *ClientIPResolver) isTrusted(ip net.IP) bool {
	for _, network := range c.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
