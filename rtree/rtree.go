// Package rtree implements a dynamic R-tree: a height-balanced tree of
// nested axis-aligned bounding boxes that answers "which stored items
// might this ray hit?" without testing every item. Items are inserted
// one at a time and routed to a leaf by the choose-subtree heuristic;
// a leaf pushed past capacity is redistributed by Guttman's quadratic
// split, and splits propagate upward, growing a new root when they
// reach it. Queries traverse lazily and yield candidates whose cached
// bounding box the ray crosses.
package rtree

import "github.com/aukilabs/raido/geom"

// NodeSize is the maximum number of entries or child nodes a node holds
// at rest. An insertion that would push a node past this bound splits
// the node instead.
const NodeSize = 64

// Mbr is the sole capability the index requires from stored items:
// produce the minimum axis-aligned box bounding the item. An item must
// not change its bounds after insertion, or the tree's nesting
// invariant silently breaks.
type Mbr interface {
	Mbr() geom.BBox
}

// insertResult reports what an insertion did to a node. Overflow is
// routine control flow, not an error: the caller places the returned
// sibling.
type insertResult int

const (
	// The item was absorbed and the node's box did not change.
	insertFit insertResult = iota

	// The item was absorbed and the node's box grew.
	insertExpanded

	// The node was full and split in two. The node itself holds the
	// left group; the right group travels upward as a new sibling.
	insertOverflowed
)

// entry pairs a stored item with a cached copy of its bounding box, so
// traversals and split computations never call Mbr again.
type entry[T Mbr] struct {
	bbox geom.BBox
	item T
}

func newEntry[T Mbr](item T) entry[T] {
	return entry[T]{bbox: item.Mbr(), item: item}
}

func (e entry[T]) bounds() geom.BBox {
	return e.bbox
}

// node is either a leaf holding entries or an interior node holding
// child nodes. Its bbox always equals the union of its contents once an
// operation returns.
type node[T Mbr] struct {
	bbox     geom.BBox
	leaf     bool
	entries  []entry[T]
	children []*node[T]
}

func newLeaf[T Mbr](item T) *node[T] {
	e := newEntry(item)
	return &node[T]{
		bbox:    e.bbox,
		leaf:    true,
		entries: []entry[T]{e},
	}
}

func (n *node[T]) bounds() geom.BBox {
	return n.bbox
}

func (n *node[T]) shallowLen() int {
	if n.leaf {
		return len(n.entries)
	}
	return len(n.children)
}

func (n *node[T]) deepLen() int {
	if n.leaf {
		return len(n.entries)
	}
	total := 0
	for _, c := range n.children {
		total += c.deepLen()
	}
	return total
}

func (n *node[T]) recomputeBounds() {
	bounds := geom.Empty()
	if n.leaf {
		for _, e := range n.entries {
			bounds = bounds.Union(e.bbox)
		}
	} else {
		for _, c := range n.children {
			bounds = bounds.Union(c.bbox)
		}
	}
	n.bbox = bounds
}

// insert routes the entry down to a leaf and reports the outcome. When
// the returned result is insertOverflowed, the node has already mutated
// into the left half of its split and the returned sibling is the right
// half, which the caller must adopt.
func (n *node[T]) insert(e entry[T]) (insertResult, *node[T]) {
	if n.leaf {
		return n.insertEntry(e)
	}

	idx := chooseSubtree(e.bbox, n.children)
	res, sibling := n.children[idx].insert(e)

	switch res {
	case insertFit:
		return insertFit, nil

	case insertExpanded:
		old := n.bbox
		n.recomputeBounds()
		if n.bbox == old {
			return insertFit, nil
		}
		return insertExpanded, nil

	default:
		n.children = append(n.children, sibling)
		n.recomputeBounds()
		if len(n.children) > NodeSize {
			return insertOverflowed, n.split()
		}
		return insertExpanded, nil
	}
}

// insertEntry appends to a leaf. A full leaf is redistributed over its
// current entries plus the triggering one, so capacity is never
// exceeded in place.
func (n *node[T]) insertEntry(e entry[T]) (insertResult, *node[T]) {
	if len(n.entries) >= NodeSize {
		lbox, lefts, rbox, rights := quadSplit(append(n.entries, e))
		n.bbox = lbox
		n.entries = lefts
		return insertOverflowed, &node[T]{bbox: rbox, leaf: true, entries: rights}
	}

	old := n.bbox
	n.bbox = n.bbox.Union(e.bbox)
	n.entries = append(n.entries, e)
	if n.bbox == old {
		return insertFit, nil
	}
	return insertExpanded, nil
}

// split divides an over-capacity interior node's children in two. The
// node keeps the left group; the right group is returned.
func (n *node[T]) split() *node[T] {
	lbox, lefts, rbox, rights := quadSplit(n.children)
	n.bbox = lbox
	n.children = lefts
	return &node[T]{bbox: rbox, children: rights}
}

// RTree is a spatial index over items providing the Mbr capability. The
// zero value is an empty tree ready for use.
//
// The tree has no internal locking: insertions require exclusive
// access, and the tree must not be mutated while a query iterator
// obtained from it is still in use.
type RTree[T Mbr] struct {
	root *node[T]
	size int
}

// New returns an empty tree.
func New[T Mbr]() *RTree[T] {
	return &RTree[T]{}
}

// Insert adds an item to the index. It never fails: a full node along
// the insertion path splits, and a split that reaches the root grows
// the tree by one level with the two halves as the new root's children.
func (t *RTree[T]) Insert(item T) {
	t.size++

	if t.root == nil {
		t.root = newLeaf(item)
		return
	}

	res, sibling := t.root.insert(newEntry(item))
	if res != insertOverflowed {
		return
	}

	left := t.root
	t.root = &node[T]{
		bbox:     left.bbox.Union(sibling.bbox),
		children: []*node[T]{left, sibling},
	}
}

// Len returns the number of stored items.
func (t *RTree[T]) Len() int {
	return t.size
}

// Bounds returns the box covering every stored item. An empty tree
// returns geom.Empty().
func (t *RTree[T]) Bounds() geom.BBox {
	if t.root == nil {
		return geom.Empty()
	}
	return t.root.bbox
}

// Stats describes the shape of the tree.
type Stats struct {
	Items  int `json:"items"`
	Nodes  int `json:"nodes"`
	Leaves int `json:"leaves"`
	Height int `json:"height"`
}

// Stats walks the tree and reports its current shape. Height is zero
// for an empty tree and one for a tree whose root is a leaf.
func (t *RTree[T]) Stats() Stats {
	s := Stats{Items: t.size}
	if t.root != nil {
		t.root.collectStats(1, &s)
	}
	return s
}

func (n *node[T]) collectStats(depth int, s *Stats) {
	s.Nodes++
	if depth > s.Height {
		s.Height = depth
	}
	if n.leaf {
		s.Leaves++
		return
	}
	for _, c := range n.children {
		c.collectStats(depth+1, s)
	}
}
