package proxy

import (
	"testing"

	"yt-network-go/internal/config"
)

func TestSwitcherRoundRobin(t *testing.T) {
	s := FromConfig(config.Config{ProxyList: "1.1.1.1:1,2.2.2.2:2"})
	if s.Len() != 2 {
		t.Fatalf("Len = %d", s.Len())
	}
	var hosts []string
	for i := 0; i < 3; i++ {
		u, err := s.ProxyFunc(nil)
		if err != nil {
			t.Fatal(err)
		}
		hosts = append(hosts, u.Host)
	}
	want := []string{"1.1.1.1:1", "2.2.2.2:2", "1.1.1.1:1"}
	for i := range want {
		if hosts[i] != want[i] {
			t.Fatalf("hosts = %v, want %v", hosts, want)
		}
	}
}

func TestNilSwitcherGoesDirect(t *testing.T) {
	var s *Switcher
	u, err := s.ProxyFunc(nil)
	if u != nil || err != nil {
		t.Fatalf("got %v, %v", u, err)
	}
}
