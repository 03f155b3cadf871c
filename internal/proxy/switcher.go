package proxy

import (
	"net/http"
	"net/url"
	"sync/atomic"

	"yt-network-go/internal/config"
	"yt-network-go/internal/logger"
)

// Switcher hands out its proxies round-robin, one per outgoing request. It
// plugs into http.Transport.Proxy.
type Switcher struct {
	urls []*url.URL
	next atomic.Uint64
}

func NewSwitcher(proxies []Proxy) *Switcher {
	s := &Switcher{urls: make([]*url.URL, 0, len(proxies))}
	for _, p := range proxies {
		s.urls = append(s.urls, p.URL())
	}
	return s
}

func (s *Switcher) Len() int {
	if s == nil {
		return 0
	}
	return len(s.urls)
}

func (s *Switcher) ProxyFunc(*http.Request) (*url.URL, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	i := s.next.Add(1) - 1
	return s.urls[i%uint64(len(s.urls))], nil
}

// FromConfig returns nil when no proxy is configured. A list that yields no
// usable entry is logged and ignored so the run goes out directly.
func FromConfig(cfg config.Config) *Switcher {
	p := NewStaticFromConfig(cfg)
	if !p.Configured() {
		return nil
	}
	proxies, err := p.GetProxies()
	if err != nil {
		logger.Warn("proxy list ignored", "err", err)
		return nil
	}
	names := make([]string, 0, len(proxies))
	for _, pr := range proxies {
		names = append(names, pr.Redacted())
	}
	logger.Info("egress proxies enabled", "count", len(proxies), "proxies", names)
	return NewSwitcher(proxies)
}
