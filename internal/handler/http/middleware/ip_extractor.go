// Package middleware holds the HTTP-edge helpers that feed the identity
// layer, chiefly client IP extraction for guest quota keys.
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
)

// IPExtractor resolves the client IP that becomes a guest's identity key.
// The choice of extractor decides whether proxy headers are believed, which
// is a quota-integrity question: a spoofable IP is an unlimited quota.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address and ignores all headers.
// This is the secure default for a directly exposed service: the connection
// address cannot be forged by the client.
type RemoteAddrExtractor struct{}

func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return ipFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are
// believed.
type TrustedProxyConfig struct {
	// Enabled gates all header-based extraction. When false the headers
	// are ignored entirely.
	Enabled bool

	// AllowedCIDRs are the proxy ranges allowed to set X-Forwarded-For and
	// X-Real-IP. Single IPs are stored as /32 or /128 prefixes.
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr (an "IP:port" peer address) falls in
// one of the allowed proxy ranges.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := ipFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig reads TRUST_PROXY and TRUSTED_PROXIES from the
// environment. TRUSTED_PROXIES is a comma-separated list of IPs or CIDR
// ranges, for example "10.0.0.1,172.16.0.0/12".
//
// Unlike the rest of the configuration this loader is fail-closed: enabling
// proxy trust with an empty or malformed proxy list is refused, because
// running with a wrong trust boundary silently breaks guest quota identity.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	config := &TrustedProxyConfig{
		Enabled:      os.Getenv("TRUST_PROXY") == "true",
		AllowedCIDRs: []netip.Prefix{},
	}
	if !config.Enabled {
		return config, nil
	}

	proxiesStr := strings.TrimSpace(os.Getenv("TRUSTED_PROXIES"))
	if proxiesStr == "" {
		return nil, fmt.Errorf("TRUST_PROXY is enabled but TRUSTED_PROXIES is empty")
	}

	for _, proxyStr := range strings.Split(proxiesStr, ",") {
		proxyStr = strings.TrimSpace(proxyStr)
		if proxyStr == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(proxyStr)
		if err != nil {
			ip, ipErr := netip.ParseAddr(proxyStr)
			if ipErr != nil {
				return nil, fmt.Errorf("invalid IP or CIDR format '%s': must be valid IP address or CIDR notation (e.g., '192.168.1.1' or '10.0.0.0/8')", proxyStr)
			}
			bits := 32
			if ip.Is6() {
				bits = 128
			}
			prefix = netip.PrefixFrom(ip, bits)
		}
		config.AllowedCIDRs = append(config.AllowedCIDRs, prefix)
	}

	if len(config.AllowedCIDRs) == 0 {
		return nil, fmt.Errorf("TRUST_PROXY is enabled but no valid proxies found in TRUSTED_PROXIES")
	}
	return config, nil
}

// TrustedProxyExtractor believes X-Forwarded-For and X-Real-IP, but only when
// the connecting peer is a configured proxy. Anything else falls back to the
// peer address, so a client cannot rotate its apparent IP (and with it a
// fresh daily guest quota) by sending forged headers directly.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates an extractor for the given trust config.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// ExtractIP resolves the client IP. Header priority behind a trusted proxy:
// first entry of X-Forwarded-For, then X-Real-IP, then the peer address.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return ipFromAddr(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		// 信頼されていない送信元からの転送ヘッダーはなりすましの兆候
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted peer sent X-Forwarded-For, header ignored",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			slog.Warn("untrusted peer sent X-Real-IP, header ignored",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_real_ip", xri))
		}
		return ipFromAddr(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := firstForwardedIP(xff); ip != "" {
			return ip, nil
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String(), nil
		}
	}
	return ipFromAddr(r.RemoteAddr)
}

// ipFromAddr strips the port from an "IP:port" peer address. Bracketed IPv6
// ("[2001:db8::1]:443") and bare addresses without a port both parse.
func ipFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// firstForwardedIP returns the leftmost entry of an X-Forwarded-For list,
// which is the original client when every hop behind it is trusted. An
// unparseable first entry yields "" rather than trusting anything later in
// the chain.
func firstForwardedIP(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
