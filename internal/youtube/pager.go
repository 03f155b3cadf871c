package youtube

import "context"

// FetchPage loads the page addressed by token and returns its items and the
// next token; an empty next token marks the last page.
type FetchPage[T any] func(ctx context.Context, token string) (items []T, next string, err error)

// Pager walks a cursor-paginated listing. A failed fetch leaves the cursor
// where it was.
type Pager[T any] struct {
	fetch FetchPage[T]
	token string
	done  bool
	pages int
}

func NewPager[T any](fetch FetchPage[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}
	items, next, err := p.fetch(ctx, p.token)
	if err != nil {
		return nil, err
	}
	p.pages++
	p.token = next
	if next == "" {
		p.done = true
	}
	return items, nil
}

func (p *Pager[T]) Done() bool { return p.done }

func (p *Pager[T]) Pages() int { return p.pages }
