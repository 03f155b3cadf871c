package youtube

import (
	"context"
	"strings"

	"yt-network-go/internal/crawler"
	"yt-network-go/internal/logger"
)

// KeyRing is an ordered queue of credentials with a current pointer. Once a
// key is rotated away from it is never used again in the run.
type KeyRing struct {
	keys []string
	cur  int
}

func NewKeyRing(keys []string) (*KeyRing, error) {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, crawler.Error{Kind: crawler.ErrorKindNoCredentials, Platform: platform, Err: ErrNoCredentials}
	}
	return &KeyRing{keys: out}, nil
}

// Current returns the key in use; ok is false once every key was rotated
// away.
func (r *KeyRing) Current() (key string, ok bool) {
	if r == nil || r.cur >= len(r.keys) {
		return "", false
	}
	return r.keys[r.cur], true
}

// Rotate moves to the next key and reports whether one is left.
func (r *KeyRing) Rotate() bool {
	if r == nil {
		return false
	}
	if r.cur < len(r.keys) {
		r.cur++
	}
	return r.cur < len(r.keys)
}

// Remaining counts the current key and the ones after it.
func (r *KeyRing) Remaining() int {
	if r == nil {
		return 0
	}
	return len(r.keys) - r.cur
}

func (r *KeyRing) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Index is the 0-based position of the current key, safe to log.
func (r *KeyRing) Index() int {
	if r == nil {
		return 0
	}
	return r.cur
}

// withRotation runs call with the current key and reissues the same request
// with the next key each time it fails with quota exhaustion.
func withRotation[T any](ctx context.Context, ring *KeyRing, m *crawler.Metrics, call func(context.Context, string) (T, error)) (T, error) {
	var zero T
	for {
		key, ok := ring.Current()
		if !ok {
			return zero, crawler.NewQuotaError(platform, "", "all API keys exhausted", ErrKeysExhausted)
		}
		v, err := call(ctx, key)
		if err == nil || !crawler.IsQuotaExhausted(err) {
			return v, err
		}
		idx := ring.Index()
		if !ring.Rotate() {
			logger.Warn("last api key out of quota", "key_index", idx, "err", err)
			return zero, crawler.NewQuotaError(platform, "", "all API keys exhausted", ErrKeysExhausted)
		}
		m.ObserveRotation()
		logger.Warn("api key out of quota, rotating", "key_index", idx, "next_index", ring.Index(), "remaining", ring.Remaining())
	}
}
