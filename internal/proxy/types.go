package proxy

import (
	"net"
	"net/url"
	"strconv"
)

// Proxy is one egress HTTP(S) or SOCKS5 proxy.
type Proxy struct {
	Protocol string
	Host     string
	Port     int
	User     string
	Password string
}

func (p Proxy) URL() *url.URL {
	scheme := p.Protocol
	if scheme == "" {
		scheme = "http"
	}
	u := &url.URL{Scheme: scheme, Host: net.JoinHostPort(p.Host, strconv.Itoa(p.Port))}
	if p.User != "" || p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u
}

// Redacted is the proxy address without credentials, safe to log.
func (p Proxy) Redacted() string {
	u := p.URL()
	u.User = nil
	return u.String()
}
