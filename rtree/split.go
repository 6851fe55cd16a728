package rtree

import (
	"math"

	"github.com/aukilabs/raido/geom"
)

// bounded abstracts over the two kinds of things the heuristics route
// and redistribute: leaf entries and child nodes.
type bounded interface {
	bounds() geom.BBox
}

// chooseSubtree picks which candidate a box should descend into: the
// smallest candidate already containing the box, or, when none does,
// the candidate whose volume grows least from absorbing it. The first
// candidate encountered wins ties. Volume comparisons against NaN are
// meaningless, so a NaN is a fatal invariant violation rather than a
// silently misplaced item.
func chooseSubtree[B bounded](target geom.BBox, candidates []B) int {
	if len(candidates) == 0 {
		panic("rtree: choosing a subtree requires at least one candidate")
	}

	best := -1
	bestVolume := math.MaxFloat64

	for i, c := range candidates {
		b := c.bounds()
		volume := b.Volume()
		if math.IsNaN(volume) {
			panic("rtree: volume must not be NaN")
		}
		if b.Contains(target) && volume < bestVolume {
			best = i
			bestVolume = volume
		}
	}
	if best >= 0 {
		return best
	}

	bestGrowth := math.MaxFloat64
	for i, c := range candidates {
		b := c.bounds()
		growth := b.Union(target).Volume() - b.Volume()
		if math.IsNaN(growth) {
			panic("rtree: volume must not be NaN")
		}
		if growth < bestGrowth {
			best = i
			bestGrowth = growth
		}
	}
	if best < 0 {
		panic("rtree: no subtree selected")
	}
	return best
}

// pickSeeds returns the indexes of the pair of items that would waste
// the most volume if grouped together, where waste is the volume of the
// pair's union minus the volume of each item. Every unordered pair is
// examined and the first maximal pair in index order wins, so the
// result is deterministic for a given input order.
func pickSeeds[B bounded](items []B) (int, int) {
	if len(items) < 2 {
		panic("rtree: picking split seeds requires at least two items")
	}

	seedA, seedB := -1, -1
	maxWaste := math.Inf(-1)

	for i := 0; i < len(items); i++ {
		boxI := items[i].bounds()
		volI := boxI.Volume()

		for j := i + 1; j < len(items); j++ {
			boxJ := items[j].bounds()
			waste := boxI.Union(boxJ).Volume() - volI - boxJ.Volume()
			if math.IsNaN(waste) {
				panic("rtree: volume must not be NaN")
			}
			if waste > maxWaste {
				maxWaste = waste
				seedA, seedB = i, j
			}
		}
	}

	if seedA < 0 {
		panic("rtree: no split seeds selected")
	}
	return seedA, seedB
}

// quadSplit redistributes an over-capacity node's contents into two
// groups. Each group is seeded with one of the two most wasteful-to-
// pair items, so neither group can end up empty, and the remaining
// items are then assigned in input order to the group whose box expands
// least. An expansion tie goes to the group currently holding fewer
// items, and a tie of ties goes to the left group.
//
// It returns the left group and the right group, each with its bounding
// box, which together hold exactly the input items.
func quadSplit[B bounded](items []B) (geom.BBox, []B, geom.BBox, []B) {
	seedA, seedB := pickSeeds(items)

	lbox := items[seedA].bounds()
	rbox := items[seedB].bounds()

	lefts := make([]B, 0, len(items))
	rights := make([]B, 0, len(items))
	lefts = append(lefts, items[seedA])
	rights = append(rights, items[seedB])

	for i, item := range items {
		if i == seedA || i == seedB {
			continue
		}

		ibox := item.bounds()
		lGrowth := lbox.Union(ibox).Volume() - lbox.Volume()
		rGrowth := rbox.Union(ibox).Volume() - rbox.Volume()
		if math.IsNaN(lGrowth) || math.IsNaN(rGrowth) {
			panic("rtree: volume must not be NaN")
		}

		toLeft := lGrowth < rGrowth
		if lGrowth == rGrowth {
			toLeft = len(lefts) <= len(rights)
		}

		if toLeft {
			lbox = lbox.Union(ibox)
			lefts = append(lefts, item)
		} else {
			rbox = rbox.Union(ibox)
			rights = append(rights, item)
		}
	}

	return lbox, lefts, rbox, rights
}
