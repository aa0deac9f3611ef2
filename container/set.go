package container

//golang空结构不占用空间
var itemExists = struct{}{}

// Set is safe for concurrent use.
// 注意不同类型的同一个值是不同的item，如a int64 = 8 与 b int32 = 8 不是同一个值
type Set[K comparable] struct {
	items *Map[K, struct{}]
}

func NewSet[K comparable](values ...K) *Set[K] {
	set := &Set[K]{items: NewMap[K, struct{}]()}
	if len(values) > 0 {
		set.Add(values...)
	}
	return set
}

func (set *Set[K]) Add(items ...K) {
	for _, item := range items {
		set.items.Set(item, itemExists)
	}
}

func (set *Set[K]) Remove(items ...K) {
	for _, item := range items {
		set.items.Delete(item)
	}
}

func (set *Set[K]) Contains(items ...K) bool {
	for _, item := range items {
		if !set.items.Exists(item) {
			return false
		}
	}
	return true
}

func (set *Set[K]) Empty() bool {
	return set.Size() == 0
}

func (set *Set[K]) Size() int {
	return int(set.items.Length())
}

func (set *Set[K]) Range(fn func(item K) (next bool)) {
	set.items.Range(func(key K, _ struct{}) bool {
		return fn(key)
	})
}
