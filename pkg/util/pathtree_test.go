package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/kubetour/pkg/util"
)

func TestPathTreeGet(t *testing.T) {
	tree := util.NewPathTree[string]()
	tree.Insert([]string{"spec", "replicas"}, "controller-manager")
	tree.Insert([]string{"spec", "template", "spec"}, "kubelet")

	v, ok := tree.Get([]string{"spec", "replicas"})
	assert.True(t, ok)
	assert.Equal(t, "controller-manager", v)

	_, ok = tree.Get([]string{"spec"})
	assert.False(t, ok)

	_, ok = tree.Get([]string{"status"})
	assert.False(t, ok)
}

func TestPathTreeHasPrefix(t *testing.T) {
	tree := util.NewPathTree[int]()
	tree.Insert([]string{"a", "b", "c"}, 1)

	assert.True(t, tree.HasPrefix([]string{"a"}))
	assert.True(t, tree.HasPrefix([]string{"a", "b"}))
	assert.True(t, tree.HasPrefix([]string{"a", "b", "c"}))
	assert.False(t, tree.HasPrefix([]string{"a", "x"}))
}

func TestPathTreeWalkOrder(t *testing.T) {
	tree := util.NewPathTree[int]()
	tree.Insert([]string{"spec", "selector"}, 2)
	tree.Insert([]string{"metadata", "labels"}, 1)
	tree.Insert([]string{"spec", "replicas"}, 3)
	tree.Insert(nil, 0)

	var paths [][]string
	var vals []int
	tree.Walk(func(path []string, v int) {
		paths = append(paths, path)
		vals = append(vals, v)
	})

	assert.Equal(t, []int{0, 1, 3, 2}, vals)
	assert.Equal(t, []string{"metadata", "labels"}, paths[1])
	assert.Equal(t, []string{"spec", "replicas"}, paths[2])
	assert.Equal(t, []string{"spec", "selector"}, paths[3])
}

func TestPathTreeOverwrite(t *testing.T) {
	tree := util.NewPathTree[int]()
	tree.Insert([]string{"k"}, 1)
	tree.Insert([]string{"k"}, 2)

	v, ok := tree.Get([]string{"k"})
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
