package container

import (
	"math"

	"github.com/grpc-boot/atom"
	"github.com/grpc-boot/atom/atomic"

	"golang.org/x/exp/maps"
)

const shardCount = math.MaxUint8 + 1

// Map is a sharded copy-on-write map. Readers load a shard snapshot without
// locking; writers publish a modified copy of one shard with FetchUpdate, so
// a reader never sees a half-applied write.
type Map[K comparable, V any] struct {
	shardList [shardCount]*atomic.Ref[map[K]V]
	length    atomic.Int64
}

func NewMap[K comparable, V any]() *Map[K, V] {
	m := &Map[K, V]{}
	for index := range m.shardList {
		m.shardList[index] = atomic.NewRefOf(make(map[K]V))
	}

	return m
}

func (m *Map[K, V]) shard(key K) *atomic.Ref[map[K]V] {
	//优先使用自定义hash
	return m.shardList[atom.HashOrNumber(key)&math.MaxUint8]
}

func (m *Map[K, V]) Set(key K, value V) {
	var exists bool
	m.shard(key).FetchUpdate(func(cur *atomic.Handle[map[K]V]) *atomic.Handle[map[K]V] {
		items := maps.Clone(*cur.Value())
		_, exists = items[key]
		items[key] = value
		return atomic.NewHandle(items)
	}).Release()

	if !exists {
		m.length.FetchAdd(atom.Incr)
	}
}

func (m *Map[K, V]) Get(key K) (value V, exists bool) {
	h := m.shard(key).Load()
	defer h.Release()

	value, exists = (*h.Value())[key]
	return
}

func (m *Map[K, V]) Exists(key K) (exists bool) {
	_, exists = m.Get(key)
	return
}

func (m *Map[K, V]) Delete(key K) {
	var exists bool
	m.shard(key).FetchUpdate(func(cur *atomic.Handle[map[K]V]) *atomic.Handle[map[K]V] {
		if _, exists = (*cur.Value())[key]; !exists {
			return cur
		}
		items := maps.Clone(*cur.Value())
		delete(items, key)
		return atomic.NewHandle(items)
	}).Release()

	if exists {
		m.length.FetchAdd(atom.Decr)
	}
}

func (m *Map[K, V]) Length() int64 {
	return m.length.Load()
}

// Range calls fn for every entry until fn returns false. Each shard is read
// from one snapshot; writes to other shards during the walk may or may not
// be seen.
func (m *Map[K, V]) Range(fn func(key K, value V) (next bool)) {
	for _, shard := range m.shardList {
		h := shard.Load()
		for key, value := range *h.Value() {
			if !fn(key, value) {
				h.Release()
				return
			}
		}
		h.Release()
	}
}

// Close releases every shard. The map must not be used afterwards.
func (m *Map[K, V]) Close() {
	for _, shard := range m.shardList {
		shard.Close()
	}
}
