package tree

import "golang.org/x/exp/constraints"

type color bool

const (
	red   color = false
	black color = true
)

type rbNode[T any] struct {
	val                 T
	left, right, parent nodeID
	color               color
}

// redBlack keeps the classic colour invariants. Node 0 of the arena is the
// shared black sentinel: every missing child and the root's parent point at
// it, so rotations and fixups never test for an absent node. Delete may
// write the sentinel's parent link while fixing up; nothing else reads it.
type redBlack[T any, K constraints.Ordered] struct {
	mem  arena[rbNode[T]]
	root nodeID
	size int
	key  KeyFunc[T, K]
}

func newRedBlack[T any, K constraints.Ordered](key KeyFunc[T, K]) *redBlack[T, K] {
	return &redBlack[T, K]{
		mem:  newArena(rbNode[T]{color: black}),
		root: null,
		key:  key,
	}
}

func (t *redBlack[T, K]) Kind() Kind { return KindRedBlack }

func (t *redBlack[T, K]) Size() int { return t.size }

func (t *redBlack[T, K]) IsEmpty() bool { return t.size == 0 }

func (t *redBlack[T, K]) n(id nodeID) *rbNode[T] {
	return &t.mem.nodes[id]
}

func (t *redBlack[T, K]) Height() int {
	return t.height(t.root)
}

func (t *redBlack[T, K]) height(id nodeID) int {
	if id == null {
		return -1
	}
	return max(t.height(t.n(id).left), t.height(t.n(id).right)) + 1
}

func (t *redBlack[T, K]) Insert(v T) bool {
	k := t.key(v)
	parent := null
	cur := t.root
	var c int
	for cur != null {
		parent = cur
		c = compare(k, t.key(t.n(cur).val))
		switch {
		case c < 0:
			cur = t.n(cur).left
		case c > 0:
			cur = t.n(cur).right
		default:
			return false
		}
	}

	z := t.mem.alloc(rbNode[T]{val: v, left: null, right: null, parent: parent, color: red})
	switch {
	case parent == null:
		t.root = z
	case c < 0:
		t.n(parent).left = z
	default:
		t.n(parent).right = z
	}
	t.size++
	t.insertFixup(z)
	return true
}

func (t *redBlack[T, K]) insertFixup(z nodeID) {
	for t.n(t.n(z).parent).color == red {
		p := t.n(z).parent
		g := t.n(p).parent
		if p == t.n(g).left {
			uncle := t.n(g).right
			if t.n(uncle).color == red {
				t.n(p).color = black
				t.n(uncle).color = black
				t.n(g).color = red
				z = g
				continue
			}
			if z == t.n(p).right {
				z = p
				t.rotateLeft(z)
				p = t.n(z).parent
				g = t.n(p).parent
			}
			t.n(p).color = black
			t.n(g).color = red
			t.rotateRight(g)
		} else {
			uncle := t.n(g).left
			if t.n(uncle).color == red {
				t.n(p).color = black
				t.n(uncle).color = black
				t.n(g).color = red
				z = g
				continue
			}
			if z == t.n(p).left {
				z = p
				t.rotateRight(z)
				p = t.n(z).parent
				g = t.n(p).parent
			}
			t.n(p).color = black
			t.n(g).color = red
			t.rotateLeft(g)
		}
	}
	t.n(t.root).color = black
}

func (t *redBlack[T, K]) Remove(v T) bool {
	z := t.find(t.key(v))
	if z == null {
		return false
	}

	y := z
	yColor := t.n(y).color
	var x nodeID
	switch {
	case t.n(z).left == null:
		x = t.n(z).right
		t.transplant(z, x)
	case t.n(z).right == null:
		x = t.n(z).left
		t.transplant(z, x)
	default:
		y = t.minimum(t.n(z).right)
		yColor = t.n(y).color
		x = t.n(y).right
		if t.n(y).parent == z {
			t.n(x).parent = y
		} else {
			t.transplant(y, t.n(y).right)
			t.n(y).right = t.n(z).right
			t.n(t.n(y).right).parent = y
		}
		t.transplant(z, y)
		t.n(y).left = t.n(z).left
		t.n(t.n(y).left).parent = y
		t.n(y).color = t.n(z).color
	}
	if yColor == black {
		t.deleteFixup(x)
	}

	t.mem.release(z, rbNode[T]{})
	t.size--
	// the sentinel must stay a parentless black leaf between operations
	*t.n(null) = rbNode[T]{color: black}
	if t.root == null {
		t.mem = newArena(rbNode[T]{color: black})
	}
	return true
}

func (t *redBlack[T, K]) transplant(u, v nodeID) {
	up := t.n(u).parent
	switch {
	case up == null:
		t.root = v
	case u == t.n(up).left:
		t.n(up).left = v
	default:
		t.n(up).right = v
	}
	t.n(v).parent = up
}

func (t *redBlack[T, K]) deleteFixup(x nodeID) {
	for x != t.root && t.n(x).color == black {
		p := t.n(x).parent
		if x == t.n(p).left {
			w := t.n(p).right
			if t.n(w).color == red {
				t.n(w).color = black
				t.n(p).color = red
				t.rotateLeft(p)
				w = t.n(p).right
			}
			if t.n(t.n(w).left).color == black && t.n(t.n(w).right).color == black {
				t.n(w).color = red
				x = p
				continue
			}
			if t.n(t.n(w).right).color == black {
				t.n(t.n(w).left).color = black
				t.n(w).color = red
				t.rotateRight(w)
				w = t.n(p).right
			}
			t.n(w).color = t.n(p).color
			t.n(p).color = black
			t.n(t.n(w).right).color = black
			t.rotateLeft(p)
			x = t.root
		} else {
			w := t.n(p).left
			if t.n(w).color == red {
				t.n(w).color = black
				t.n(p).color = red
				t.rotateRight(p)
				w = t.n(p).left
			}
			if t.n(t.n(w).right).color == black && t.n(t.n(w).left).color == black {
				t.n(w).color = red
				x = p
				continue
			}
			if t.n(t.n(w).left).color == black {
				t.n(t.n(w).right).color = black
				t.n(w).color = red
				t.rotateLeft(w)
				w = t.n(p).left
			}
			t.n(w).color = t.n(p).color
			t.n(p).color = black
			t.n(t.n(w).left).color = black
			t.rotateRight(p)
			x = t.root
		}
	}
	t.n(x).color = black
}

func (t *redBlack[T, K]) rotateLeft(x nodeID) {
	y := t.n(x).right
	t.n(x).right = t.n(y).left
	if t.n(y).left != null {
		t.n(t.n(y).left).parent = x
	}
	t.n(y).parent = t.n(x).parent
	switch xp := t.n(x).parent; {
	case xp == null:
		t.root = y
	case x == t.n(xp).left:
		t.n(xp).left = y
	default:
		t.n(xp).right = y
	}
	t.n(y).left = x
	t.n(x).parent = y
}

func (t *redBlack[T, K]) rotateRight(y nodeID) {
	x := t.n(y).left
	t.n(y).left = t.n(x).right
	if t.n(x).right != null {
		t.n(t.n(x).right).parent = y
	}
	t.n(x).parent = t.n(y).parent
	switch yp := t.n(y).parent; {
	case yp == null:
		t.root = x
	case y == t.n(yp).right:
		t.n(yp).right = x
	default:
		t.n(yp).left = x
	}
	t.n(x).right = y
	t.n(y).parent = x
}

func (t *redBlack[T, K]) find(k K) nodeID {
	cur := t.root
	for cur != null {
		switch c := compare(k, t.key(t.n(cur).val)); {
		case c < 0:
			cur = t.n(cur).left
		case c > 0:
			cur = t.n(cur).right
		default:
			return cur
		}
	}
	return null
}

func (t *redBlack[T, K]) Find(v T) bool {
	return t.find(t.key(v)) != null
}

func (t *redBlack[T, K]) minimum(id nodeID) nodeID {
	for t.n(id).left != null {
		id = t.n(id).left
	}
	return id
}

func (t *redBlack[T, K]) Min() (T, bool) {
	if t.root == null {
		var zero T
		return zero, false
	}
	return t.n(t.minimum(t.root)).val, true
}

func (t *redBlack[T, K]) InOrder(visit func(T)) {
	t.inOrder(t.root, visit)
}

func (t *redBlack[T, K]) inOrder(id nodeID, visit func(T)) {
	if id == null {
		return
	}
	t.inOrder(t.n(id).left, visit)
	visit(t.n(id).val)
	t.inOrder(t.n(id).right, visit)
}
