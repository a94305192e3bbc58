package tree

import "fmt"

type verifier interface {
	verify() error
}

// Verify checks the structural invariants of bt: ordering and element count
// for both variants, heights and balance factors for AVL, colours and
// black-height for Red-Black.
func Verify[T any](bt BalancedTree[T]) error {
	if v, ok := bt.(verifier); ok {
		return v.verify()
	}
	return fmt.Errorf("tree: %T cannot be verified", bt)
}

func (t *avl[T, K]) verify() error {
	count := 0
	var prev *K
	var walk func(n nodeID) (int, error)
	walk = func(n nodeID) (int, error) {
		if n == null {
			return -1, nil
		}
		nd := t.mem.nodes[n]
		lh, err := walk(nd.left)
		if err != nil {
			return 0, err
		}
		k := t.key(nd.val)
		if prev != nil && compare(*prev, k) >= 0 {
			return 0, fmt.Errorf("avl: keys out of order at %v", k)
		}
		prev = &k
		count++
		rh, err := walk(nd.right)
		if err != nil {
			return 0, err
		}
		h := max(lh, rh) + 1
		if h != nd.height {
			return 0, fmt.Errorf("avl: node %v stores height %d, actual %d", k, nd.height, h)
		}
		if bf := lh - rh; bf > 1 || bf < -1 {
			return 0, fmt.Errorf("avl: node %v has balance factor %d", k, bf)
		}
		return h, nil
	}
	if _, err := walk(t.root); err != nil {
		return err
	}
	if count != t.size {
		return fmt.Errorf("avl: counted %d nodes, size says %d", count, t.size)
	}
	return nil
}

func (t *redBlack[T, K]) verify() error {
	if t.n(null).color != black {
		return fmt.Errorf("rb: sentinel is not black")
	}
	if t.root == null {
		if t.size != 0 {
			return fmt.Errorf("rb: empty tree with size %d", t.size)
		}
		return nil
	}
	if t.n(t.root).color != black {
		return fmt.Errorf("rb: root is red")
	}
	if t.n(t.root).parent != null {
		return fmt.Errorf("rb: root has a parent")
	}
	count := 0
	var prev *K
	var walk func(id nodeID) (int, error)
	walk = func(id nodeID) (int, error) {
		if id == null {
			return 1, nil
		}
		nd := t.mem.nodes[id]
		for _, child := range []nodeID{nd.left, nd.right} {
			if child == null {
				continue
			}
			if t.n(child).parent != id {
				return 0, fmt.Errorf("rb: broken parent link under %v", t.key(nd.val))
			}
			if nd.color == red && t.n(child).color == red {
				return 0, fmt.Errorf("rb: red node %v has a red child", t.key(nd.val))
			}
		}
		lb, err := walk(nd.left)
		if err != nil {
			return 0, err
		}
		k := t.key(nd.val)
		if prev != nil && compare(*prev, k) >= 0 {
			return 0, fmt.Errorf("rb: keys out of order at %v", k)
		}
		prev = &k
		count++
		rb, err := walk(nd.right)
		if err != nil {
			return 0, err
		}
		if lb != rb {
			return 0, fmt.Errorf("rb: black-height mismatch at %v (%d vs %d)", k, lb, rb)
		}
		if nd.color == black {
			lb++
		}
		return lb, nil
	}
	if _, err := walk(t.root); err != nil {
		return err
	}
	if count != t.size {
		return fmt.Errorf("rb: counted %d nodes, size says %d", count, t.size)
	}
	return nil
}
