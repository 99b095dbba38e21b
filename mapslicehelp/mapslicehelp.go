package mapslicehelp

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/exp/constraints"
)

func LastElement[T any](elements []T) *T {
	length := len(elements)
	if length > 0 {
		return &elements[length-1]
	}
	return nil
}

func OrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	l := make([]K, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		l[i] = p.Key
		i++
	}
	return l
}

func OrderedMapValues[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []V {
	l := make([]V, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		l[i] = p.Value
		i++
	}
	return l
}

// StableOrder returns the indexes of s in ascending order of their values.
// Equal values keep their original relative order.
func StableOrder[T constraints.Ordered](s []T) []int {
	idx := make([]int, len(s))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s[idx[a]] < s[idx[b]]
	})
	return idx
}

// Permute returns a new slice with r[i] = s[order[i]].
func Permute[T any](s []T, order []int) []T {
	r := make([]T, len(order))
	for i, j := range order {
		r[i] = s[j]
	}
	return r
}

func IsIdentity(order []int) bool {
	for i, j := range order {
		if i != j {
			return false
		}
	}
	return true
}
