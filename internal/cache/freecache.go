package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
)

// FreeCache is a fixed-size in-process cache; large pages are evicted
// instead of growing the heap during long search runs.
type FreeCache struct {
	c *freecache.Cache
}

func NewFreeCache(sizeMB int) *FreeCache {
	if sizeMB <= 0 {
		sizeMB = 64
	}
	return &FreeCache{c: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (f *FreeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, err := f.c.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (f *FreeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sec := 0
	if ttl > 0 {
		sec = int(ttl / time.Second)
		if sec == 0 {
			sec = 1
		}
	}
	return f.c.Set([]byte(key), value, sec)
}

func (f *FreeCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.c.Del([]byte(key))
	return nil
}

func (f *FreeCache) Close() error {
	f.c.Clear()
	return nil
}
