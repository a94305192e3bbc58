package tree

// nodeID addresses a node inside a tree's arena.
type nodeID int32

// null is the reserved slot 0 of every arena.
const null nodeID = 0

// arena is a slab of nodes with a free list; slot 0 is never handed out.
type arena[N any] struct {
	nodes []N
	free  []nodeID
}

func newArena[N any](reserved N) arena[N] {
	return arena[N]{nodes: []N{reserved}}
}

func (a *arena[N]) alloc(n N) nodeID {
	if l := len(a.free); l > 0 {
		id := a.free[l-1]
		a.free = a.free[:l-1]
		a.nodes[id] = n
		return id
	}
	a.nodes = append(a.nodes, n)
	return nodeID(len(a.nodes) - 1)
}

func (a *arena[N]) release(id nodeID, zero N) {
	if id == null {
		panic("tree: node 0 is reserved and cannot be released")
	}
	a.nodes[id] = zero
	a.free = append(a.free, id)
}

func (a *arena[N]) at(id nodeID) *N {
	return &a.nodes[id]
}
