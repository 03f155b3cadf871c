package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	{
		err := context.Canceled
		if got := KindOf(err); got != ErrorKindCanceled {
			t.Fatalf("canceled got=%s", got)
		}
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
		defer cancel()
		<-ctx.Done()
		if got := KindOf(ctx.Err()); got != ErrorKindTimeout {
			t.Fatalf("deadline got=%s", got)
		}
	}
	{
		err := Error{Kind: ErrorKindInvalidInput, Platform: "youtube", Msg: "bad"}
		if got := KindOf(err); got != ErrorKindInvalidInput {
			t.Fatalf("custom kind got=%s", got)
		}
	}
	{
		err := errors.New("http status=429 body=xxx")
		if got := KindOf(err); got != ErrorKindRateLimited {
			t.Fatalf("429 got=%s", got)
		}
	}
	{
		err := errors.New("http status=403 body=xxx")
		if got := KindOf(err); got != ErrorKindForbidden {
			t.Fatalf("403 got=%s", got)
		}
	}
	{
		err := errors.New("http status=500 body=xxx")
		if got := KindOf(err); got != ErrorKindHTTP {
			t.Fatalf("500 got=%s", got)
		}
	}
	{
		err := fmt.Errorf("page 3: %w", Error{Kind: ErrorKindRateLimited, Platform: "youtube"})
		if got := KindOf(err); got != ErrorKindRateLimited {
			t.Fatalf("wrapped 429 got=%s", got)
		}
	}
	{
		err := fmt.Errorf("fetch replies: %w", NewQuotaError("youtube", "/comments", "quotaExceeded", nil))
		if got := KindOf(err); got != ErrorKindQuotaExhausted {
			t.Fatalf("quota got=%s", got)
		}
		if !IsQuotaExhausted(err) {
			t.Fatalf("IsQuotaExhausted=false")
		}
	}
	{
		err := errors.New("something else")
		if got := KindOf(err); got != ErrorKindUnknown {
			t.Fatalf("unknown got=%s", got)
		}
	}
}

func TestForEachStopsOnQuota(t *testing.T) {
	var visited []int
	res := ForEach(context.Background(), []int{1, 2, 3, 4}, IsQuotaExhausted, func(ctx context.Context, n int) error {
		visited = append(visited, n)
		switch n {
		case 2:
			return errors.New("http status=500")
		case 3:
			return NewQuotaError("youtube", "", "", nil)
		}
		return nil
	})
	if len(visited) != 3 {
		t.Fatalf("visited=%v", visited)
	}
	if res.Processed != 3 || res.Succeeded != 1 || res.Failed != 2 {
		t.Fatalf("res=%+v", res)
	}
	if !IsQuotaExhausted(res.Stopped) {
		t.Fatalf("stopped=%v", res.Stopped)
	}
	if res.FailureKinds[string(ErrorKindHTTP)] != 1 || res.FailureKinds[string(ErrorKindQuotaExhausted)] != 1 {
		t.Fatalf("kinds=%v", res.FailureKinds)
	}
}

func TestShouldRetryStatus(t *testing.T) {
	for _, code := range []int{500, 502, 503, 408} {
		if !ShouldRetryStatus(code) {
			t.Fatalf("%d should retry", code)
		}
	}
	for _, code := range []int{200, 400, 403, 404, 429} {
		if ShouldRetryStatus(code) {
			t.Fatalf("%d should not retry", code)
		}
	}
}

func TestShouldRetryError(t *testing.T) {
	if ShouldRetryError(nil) {
		t.Fatal("nil should not retry")
	}
	if ShouldRetryError(fmt.Errorf("get: %w", context.Canceled)) {
		t.Fatal("canceled should not retry")
	}
	if !ShouldRetryError(errors.New("connection reset by peer")) {
		t.Fatal("transport error should retry")
	}
}
