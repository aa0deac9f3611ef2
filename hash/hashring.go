package hash

import (
	"math"
	"sort"

	"github.com/grpc-boot/atom"
	"github.com/grpc-boot/atom/atomic"

	"github.com/pkg/errors"
)

var ErrNoServer = errors.New("no server")

type Ring interface {
	StoreServers(servers []atom.CanHash)
	Get(key interface{}) (server atom.CanHash, err error)
	AddServer(server atom.CanHash)
	RemoveServer(server atom.CanHash)
	Length() int
	Range(handler func(index int, server atom.CanHash) (handled bool))
}

type Node struct {
	server    atom.CanHash
	hashValue uint32
}

type NodeList []Node

func (n NodeList) Len() int {
	return len(n)
}

func (n NodeList) Less(i, j int) bool {
	return n[i].hashValue < n[j].hashValue
}

func (n NodeList) Swap(i, j int) {
	n[i], n[j] = n[j], n[i]
}

type nodesHandle = atomic.Handle[NodeList]

// DefaultRing publishes an immutable, sorted node list. Lookups read the
// current list without locking; membership changes publish a sorted copy.
type DefaultRing struct {
	nodes *atomic.Ref[NodeList]
}

func NewDefaultRing(servers []atom.CanHash) *DefaultRing {
	ring := &DefaultRing{nodes: atomic.NewRefOf(NodeList{})}
	ring.StoreServers(servers)
	return ring
}

func (h *DefaultRing) StoreServers(servers []atom.CanHash) {
	nodes := make(NodeList, len(servers))

	for index := range servers {
		nodes[index] = Node{
			server:    servers[index],
			hashValue: servers[index].HashCode(),
		}
	}

	sort.Sort(nodes)
	h.nodes.Store(atomic.NewHandle(nodes))
}

func (h *DefaultRing) AddServer(server atom.CanHash) {
	h.nodes.FetchUpdate(func(cur *nodesHandle) *nodesHandle {
		old := *cur.Value()
		nodes := make(NodeList, len(old), len(old)+1)
		copy(nodes, old)
		nodes = append(nodes, Node{
			server:    server,
			hashValue: server.HashCode(),
		})
		sort.Sort(nodes)
		return atomic.NewHandle(nodes)
	}).Release()
}

func (h *DefaultRing) RemoveServer(server atom.CanHash) {
	value := server.HashCode()

	h.nodes.FetchUpdate(func(cur *nodesHandle) *nodesHandle {
		old := *cur.Value()
		index := sort.Search(len(old), func(i int) bool {
			return old[i].hashValue >= value
		})

		if index == len(old) || old[index].hashValue != value {
			return cur
		}

		nodes := make(NodeList, 0, len(old)-1)
		nodes = append(nodes, old[:index]...)
		nodes = append(nodes, old[index+1:]...)
		return atomic.NewHandle(nodes)
	}).Release()
}

func (h *DefaultRing) Get(key interface{}) (server atom.CanHash, err error) {
	handle := h.nodes.Load()
	defer handle.Release()

	nodes := *handle.Value()
	length := len(nodes)
	if length == 0 {
		return nil, ErrNoServer
	}

	if length < 2 {
		return nodes[0].server, nil
	}

	value := atom.HashOrNumber(key)
	index := sort.Search(length, func(i int) bool {
		return nodes[i].hashValue >= value
	})

	if index == length || index == 0 {
		if (value - nodes[length-1].hashValue) < (math.MaxUint32 - value + nodes[0].hashValue) {
			return nodes[length-1].server, nil
		}
		return nodes[0].server, nil
	}

	if (nodes[index].hashValue - value) > (value - nodes[index-1].hashValue) {
		return nodes[index-1].server, nil
	}

	return nodes[index].server, nil
}

func (h *DefaultRing) Length() int {
	handle := h.nodes.Load()
	defer handle.Release()
	return len(*handle.Value())
}

// Range walks one snapshot of the ring in hash order.
func (h *DefaultRing) Range(handler func(index int, server atom.CanHash) (handled bool)) {
	handle := h.nodes.Load()
	defer handle.Release()

	for index, node := range *handle.Value() {
		//标记已处理
		if handler(index, node.server) {
			break
		}
	}
}

func (h *DefaultRing) Close() {
	h.nodes.Close()
}
