package rtree

import "github.com/aukilabs/raido/geom"

// Iter is a lazy depth-first traversal of the items whose bounding box
// a ray crosses. It visits no more of the tree than the caller pulls,
// so asking for the first candidate of a miss-heavy ray touches only
// the subtrees the ray enters.
//
// An Iter is single use and must be fully discarded if the tree is
// mutated: it holds pointers into the tree's nodes.
type Iter[T Mbr] struct {
	ray   geom.Ray
	stack []*node[T]
	leaf  []entry[T]
}

// Query begins a candidate traversal for the given ray. The traversal
// is exhaustive over candidates but prunes every subtree whose box the
// ray misses.
func (t *RTree[T]) Query(ray geom.Ray) *Iter[T] {
	it := &Iter[T]{ray: ray}
	if t.root != nil {
		it.stack = append(it.stack, t.root)
	}
	return it
}

// Next returns a pointer to the next item whose cached bounding box the
// ray crosses, or false when the traversal is exhausted. Exhaustion is
// final. The returned pointer aliases tree storage and stays valid only
// until the tree is next mutated.
//
// A crossed bounding box does not mean the ray hits the item itself.
// Callers needing exact hits run their own precise test on the
// candidates.
func (it *Iter[T]) Next() (*T, bool) {
	for {
		for len(it.leaf) > 0 {
			e := &it.leaf[0]
			it.leaf = it.leaf[1:]
			if e.bbox.Intersects(it.ray) {
				return &e.item, true
			}
		}

		if len(it.stack) == 0 {
			return nil, false
		}

		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if n.leaf {
			it.leaf = n.entries
			continue
		}
		for _, child := range n.children {
			if child.bbox.Intersects(it.ray) {
				it.stack = append(it.stack, child)
			}
		}
	}
}
