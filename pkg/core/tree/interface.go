// Package tree implements the two balanced binary search trees that back the
// heavyweight buckets of the hybrid index.
//
// Both variants order their elements by a key extracted from each value and
// treat an insert whose key is already present as a silent no-op: the first
// value stored under a key wins and later ones are dropped. Nodes live in a
// per-tree arena and reference each other by index, index 0 being reserved
// for the empty subtree (AVL) or the shared black sentinel (Red-Black).
package tree

import "golang.org/x/exp/constraints"

// Kind tags the concrete variant behind a BalancedTree.
type Kind int

const (
	KindAVL Kind = iota
	KindRedBlack
)

func (k Kind) String() string {
	switch k {
	case KindAVL:
		return "AVL"
	case KindRedBlack:
		return "RedBlack"
	}
	return "Unknown"
}

// BalancedTree is the capability set shared by the AVL and Red-Black variants.
type BalancedTree[T any] interface {
	// Insert adds v and reports whether it was stored. A value whose key is
	// already present is dropped.
	Insert(v T) bool
	// Remove deletes the element whose key equals v's key.
	Remove(v T) bool
	// Find reports whether an element with v's key is present.
	Find(v T) bool
	// Height is -1 for an empty tree, otherwise the longest root-to-leaf edge count.
	Height() int
	Size() int
	IsEmpty() bool
	// Min returns the first element in key order.
	Min() (T, bool)
	// InOrder visits every element once in ascending key order.
	InOrder(visit func(T))
	Kind() Kind
}

// KeyFunc extracts the ordering key of a value.
type KeyFunc[T any, K constraints.Ordered] func(T) K

// NewAVL returns an empty AVL tree ordered by key.
func NewAVL[T any, K constraints.Ordered](key KeyFunc[T, K]) BalancedTree[T] {
	return newAVL(key)
}

// NewRedBlack returns an empty Red-Black tree ordered by key.
func NewRedBlack[T any, K constraints.Ordered](key KeyFunc[T, K]) BalancedTree[T] {
	return newRedBlack(key)
}

// Rebuild copies src into a fresh tree of the requested kind, preserving order.
func Rebuild[T any, K constraints.Ordered](src BalancedTree[T], kind Kind, key KeyFunc[T, K]) BalancedTree[T] {
	var dst BalancedTree[T]
	if kind == KindRedBlack {
		dst = NewRedBlack(key)
	} else {
		dst = NewAVL(key)
	}
	src.InOrder(func(v T) {
		dst.Insert(v)
	})
	return dst
}

func compare[K constraints.Ordered](a, b K) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
