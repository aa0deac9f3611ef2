package container

import "github.com/grpc-boot/atom/atomic"

type Handler[T any] func(value T) (handled bool)

// Chain runs handlers in order until one reports the value handled. Use may
// be called while other goroutines run Next.
type Chain[T any] struct {
	items *atomic.Ref[[]Handler[T]]
}

func NewChain[T any](handlers ...Handler[T]) *Chain[T] {
	items := make([]Handler[T], len(handlers))
	copy(items, handlers)

	return &Chain[T]{items: atomic.NewRefOf(items)}
}

func (c *Chain[T]) Use(handler Handler[T]) {
	c.items.FetchUpdate(func(cur *atomic.Handle[[]Handler[T]]) *atomic.Handle[[]Handler[T]] {
		old := *cur.Value()
		items := make([]Handler[T], len(old), len(old)+1)
		copy(items, old)
		return atomic.NewHandle(append(items, handler))
	}).Release()
}

func (c *Chain[T]) Next(value T) (handled bool) {
	h := c.items.Load()
	defer h.Release()

	for _, handler := range *h.Value() {
		if handler(value) {
			return true
		}
	}
	return false
}

func (c *Chain[T]) Len() int {
	h := c.items.Load()
	defer h.Release()

	return len(*h.Value())
}
