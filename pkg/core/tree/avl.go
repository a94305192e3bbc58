package tree

import "golang.org/x/exp/constraints"

type avlNode[T any] struct {
	val         T
	left, right nodeID
	height      int
}

// avl is a height-balanced tree. Every node keeps its own height (leaf 0);
// the reserved node 0 stands for the empty subtree and has height -1.
type avl[T any, K constraints.Ordered] struct {
	mem  arena[avlNode[T]]
	root nodeID
	size int
	key  KeyFunc[T, K]
}

func newAVL[T any, K constraints.Ordered](key KeyFunc[T, K]) *avl[T, K] {
	return &avl[T, K]{
		mem: newArena(avlNode[T]{height: -1}),
		key: key,
	}
}

func (t *avl[T, K]) Kind() Kind { return KindAVL }

func (t *avl[T, K]) Size() int { return t.size }

func (t *avl[T, K]) IsEmpty() bool { return t.size == 0 }

func (t *avl[T, K]) Height() int {
	return t.height(t.root)
}

func (t *avl[T, K]) Insert(v T) bool {
	var inserted bool
	t.root, inserted = t.insert(t.root, v, t.key(v))
	if inserted {
		t.size++
	}
	return inserted
}

func (t *avl[T, K]) insert(n nodeID, v T, k K) (nodeID, bool) {
	if n == null {
		return t.mem.alloc(avlNode[T]{val: v}), true
	}
	var inserted bool
	switch c := compare(k, t.key(t.mem.nodes[n].val)); {
	case c < 0:
		var l nodeID
		l, inserted = t.insert(t.mem.nodes[n].left, v, k)
		t.mem.nodes[n].left = l
	case c > 0:
		var r nodeID
		r, inserted = t.insert(t.mem.nodes[n].right, v, k)
		t.mem.nodes[n].right = r
	default:
		return n, false
	}
	if !inserted {
		return n, false
	}
	t.update(n)
	return t.balance(n), true
}

func (t *avl[T, K]) Remove(v T) bool {
	if t.root == null {
		return false
	}
	var removed bool
	t.root, removed = t.remove(t.root, t.key(v))
	if removed {
		t.size--
	}
	return removed
}

func (t *avl[T, K]) remove(n nodeID, k K) (nodeID, bool) {
	if n == null {
		return null, false
	}
	var removed bool
	nd := t.mem.at(n)
	switch c := compare(k, t.key(nd.val)); {
	case c < 0:
		nd.left, removed = t.remove(nd.left, k)
	case c > 0:
		nd.right, removed = t.remove(nd.right, k)
	default:
		removed = true
		switch {
		case nd.left == null && nd.right == null:
			t.mem.release(n, avlNode[T]{})
			return null, true
		case nd.left == null:
			r := nd.right
			t.mem.release(n, avlNode[T]{})
			return r, true
		case nd.right == null:
			l := nd.left
			t.mem.release(n, avlNode[T]{})
			return l, true
		}
		// two children: take over the in-order successor, then drop it below
		succ := t.min(nd.right)
		nd.val = t.mem.nodes[succ].val
		nd.right, _ = t.remove(nd.right, t.key(nd.val))
	}
	if !removed {
		return n, false
	}
	t.update(n)
	return t.balance(n), true
}

func (t *avl[T, K]) Find(v T) bool {
	k := t.key(v)
	for n := t.root; n != null; {
		nd := &t.mem.nodes[n]
		switch c := compare(k, t.key(nd.val)); {
		case c < 0:
			n = nd.left
		case c > 0:
			n = nd.right
		default:
			return true
		}
	}
	return false
}

func (t *avl[T, K]) Min() (T, bool) {
	if t.root == null {
		var zero T
		return zero, false
	}
	return t.mem.nodes[t.min(t.root)].val, true
}

func (t *avl[T, K]) InOrder(visit func(T)) {
	t.inOrder(t.root, visit)
}

func (t *avl[T, K]) inOrder(n nodeID, visit func(T)) {
	if n == null {
		return
	}
	t.inOrder(t.mem.nodes[n].left, visit)
	visit(t.mem.nodes[n].val)
	t.inOrder(t.mem.nodes[n].right, visit)
}

func (t *avl[T, K]) min(n nodeID) nodeID {
	for t.mem.nodes[n].left != null {
		n = t.mem.nodes[n].left
	}
	return n
}

func (t *avl[T, K]) height(n nodeID) int {
	return t.mem.nodes[n].height
}

func (t *avl[T, K]) balanceFactor(n nodeID) int {
	nd := &t.mem.nodes[n]
	return t.height(nd.left) - t.height(nd.right)
}

func (t *avl[T, K]) update(n nodeID) {
	nd := &t.mem.nodes[n]
	nd.height = max(t.height(nd.left), t.height(nd.right)) + 1
}

func (t *avl[T, K]) balance(n nodeID) nodeID {
	bf := t.balanceFactor(n)
	if bf > 1 {
		// Left-Right
		if t.balanceFactor(t.mem.nodes[n].left) < 0 {
			t.mem.nodes[n].left = t.rotateLeft(t.mem.nodes[n].left)
		}
		return t.rotateRight(n)
	}
	if bf < -1 {
		// Right-Left
		if t.balanceFactor(t.mem.nodes[n].right) > 0 {
			t.mem.nodes[n].right = t.rotateRight(t.mem.nodes[n].right)
		}
		return t.rotateLeft(n)
	}
	return n
}

// rotateLeft lifts the right child of x into its place.
func (t *avl[T, K]) rotateLeft(x nodeID) nodeID {
	y := t.mem.nodes[x].right
	t.mem.nodes[x].right = t.mem.nodes[y].left
	t.mem.nodes[y].left = x
	t.update(x)
	t.update(y)
	return y
}

// rotateRight lifts the left child of y into its place.
func (t *avl[T, K]) rotateRight(y nodeID) nodeID {
	x := t.mem.nodes[y].left
	t.mem.nodes[y].left = t.mem.nodes[x].right
	t.mem.nodes[x].right = y
	t.update(y)
	t.update(x)
	return x
}
