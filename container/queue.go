package container

import (
	"github.com/grpc-boot/atom"
	"github.com/grpc-boot/atom/atomic"
	"github.com/grpc-boot/atom/slot"
)

type node[T any] struct {
	value T
	next  slot.Pointer[node[T]]
}

// Queue is an unbounded lock-free FIFO. Nodes are never reused, so a pointer
// that compares equal is the same node and the classic ABA case cannot occur.
type Queue[T any] struct {
	head   slot.Pointer[node[T]]
	tail   slot.Pointer[node[T]]
	length atomic.Int64
}

func NewQueue[T any]() *Queue[T] {
	root := &node[T]{}
	q := &Queue[T]{}
	q.head.Store(root)
	q.tail.Store(root)
	return q
}

func (q *Queue[T]) Push(value T) {
	n := &node[T]{value: value}

	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}

		if next != nil {
			//纠正tail，上一次push可能只完成了链接
			q.tail.CompareAndSwap(tail, next)
			continue
		}

		if tail.next.CompareAndSwap(nil, n) {
			//此处失败会在下一次push或pop时纠正
			q.tail.CompareAndSwap(tail, n)
			q.length.FetchAdd(atom.Incr)
			return
		}
	}
}

func (q *Queue[T]) Pop() (value T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}

		if head == tail {
			if next == nil {
				return value, false
			}
			q.tail.CompareAndSwap(tail, next)
			continue
		}

		value = next.value
		if q.head.CompareAndSwap(head, next) {
			q.length.FetchAdd(atom.Decr)
			return value, true
		}
	}
}

func (q *Queue[T]) Length() int64 {
	return q.length.Load()
}
