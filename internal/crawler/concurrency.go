package crawler

import (
	"context"
)

type ItemResult struct {
	Processed    int
	Succeeded    int
	Failed       int
	FailureKinds map[string]int
	// Stopped is set when fn returned an error for which stop reported true;
	// the remaining items were not visited.
	Stopped error
}

// ForEach visits items in order on the caller's goroutine. A failing item is
// counted and skipped unless stop(err) is true, which ends the iteration.
func ForEach[T any](ctx context.Context, items []T, stop func(error) bool, fn func(context.Context, T) error) ItemResult {
	if ctx == nil {
		ctx = context.Background()
	}
	var out ItemResult
	for _, it := range items {
		select {
		case <-ctx.Done():
			out.Stopped = ctx.Err()
			return out
		default:
		}
		out.Processed++
		err := fn(ctx, it)
		if err == nil {
			out.Succeeded++
			continue
		}
		out.Failed++
		out.FailureKinds = mergeFailureKind(out.FailureKinds, KindOf(err))
		if stop != nil && stop(err) {
			out.Stopped = err
			return out
		}
	}
	return out
}

func mergeFailureKind(m map[string]int, kind ErrorKind) map[string]int {
	if kind == "" {
		kind = ErrorKindUnknown
	}
	if m == nil {
		m = make(map[string]int, 1)
	}
	m[string(kind)]++
	return m
}
