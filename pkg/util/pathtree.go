package util

import "slices"

type (
	// PathTree indexes values by hierarchical string paths
	PathTree[T any] struct {
		root *pathTreeNode[T]
	}

	// PathVisitor receives each stored path and value during Walk
	PathVisitor[T any] func(path []string, v T)

	pathTreeNode[T any] struct {
		value    T
		hasValue bool
		children map[string]*pathTreeNode[T]
	}
)

// NewPathTree creates a new hierarchical path index
func NewPathTree[T any]() *PathTree[T] {
	return &PathTree[T]{root: newPathTreeNode[T]()}
}

// Insert stores a value at the exact path
func (t *PathTree[T]) Insert(path []string, v T) {
	cur := t.root
	for _, p := range path {
		next, ok := cur.children[p]
		if !ok {
			next = newPathTreeNode[T]()
			cur.children[p] = next
		}
		cur = next
	}
	cur.value = v
	cur.hasValue = true
}

// Get returns the value stored at the exact path
func (t *PathTree[T]) Get(path []string) (T, bool) {
	n := t.node(path)
	if n == nil || !n.hasValue {
		var zero T
		return zero, false
	}
	return n.value, true
}

// HasPrefix reports whether any value is stored at or below the path
func (t *PathTree[T]) HasPrefix(path []string) bool {
	return t.node(path) != nil
}

// Walk visits every stored value in lexical path order
func (t *PathTree[T]) Walk(fn PathVisitor[T]) {
	t.root.walk(nil, fn)
}

func (t *PathTree[T]) node(path []string) *pathTreeNode[T] {
	cur := t.root
	for _, p := range path {
		next, ok := cur.children[p]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func newPathTreeNode[T any]() *pathTreeNode[T] {
	return &pathTreeNode[T]{children: map[string]*pathTreeNode[T]{}}
}

func (n *pathTreeNode[T]) walk(prefix []string, fn PathVisitor[T]) {
	if n.hasValue {
		fn(slices.Clone(prefix), n.value)
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n.children[k].walk(append(prefix, k), fn)
	}
}
