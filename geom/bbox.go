package geom

import "math"

// Axis identifies one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// BBox is an axis-aligned bounding box spanning Min to Max. Boxes are
// immutable values: every operation returns a new box. A valid box has
// Min <= Max on every axis; a box built by unioning nothing (see Empty)
// violates this on purpose and callers must treat it as containing no
// space.
type BBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Empty returns the box that acts as the identity element under Union:
// minimums start at +Inf and maximums at -Inf, so the first real union
// replaces them wholesale.
func Empty() BBox {
	return BBox{
		Min: Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// PointBounds returns the smallest box that encompasses both points.
func PointBounds(p1, p2 Vec3) BBox {
	return BBox{Min: p1.Min(p2), Max: p1.Max(p2)}
}

// BoundsOf returns the smallest box that encompasses every given box.
// Called with no arguments it returns Empty().
func BoundsOf(boxes ...BBox) BBox {
	bounds := Empty()
	for _, b := range boxes {
		bounds = bounds.Union(b)
	}
	return bounds
}

// Union returns the smallest box encompassing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// UnionPoint returns the smallest box encompassing b and the point p.
func (b BBox) UnionPoint(p Vec3) BBox {
	return BBox{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Intersects reports whether the ray's forward half-line passes through
// the box. It is a slab test: each axis narrows the parametric interval
// [tMin, tMax], picking the near and far face with the ray's cached sign
// bit and scaling by the cached reciprocal so no division happens per
// test. Hits strictly behind the origin do not count.
func (b BBox) Intersects(r Ray) bool {
	o := r.Origin

	minBound, maxBound := b.Max, b.Min
	if r.Signs[0] {
		minBound, maxBound = b.Min, b.Max
	}
	tMin := (minBound.X - o.X) * r.InverseDir.X
	tMax := (maxBound.X - o.X) * r.InverseDir.X

	minBound, maxBound = b.Max, b.Min
	if r.Signs[1] {
		minBound, maxBound = b.Min, b.Max
	}
	tyMin := (minBound.Y - o.Y) * r.InverseDir.Y
	tyMax := (maxBound.Y - o.Y) * r.InverseDir.Y

	if tMin > tyMax || tyMin > tMax {
		return false
	}
	if tyMin > tMin {
		tMin = tyMin
	}
	if tyMax < tMax {
		tMax = tyMax
	}

	minBound, maxBound = b.Max, b.Min
	if r.Signs[2] {
		minBound, maxBound = b.Min, b.Max
	}
	tzMin := (minBound.Z - o.Z) * r.InverseDir.Z
	tzMax := (maxBound.Z - o.Z) * r.InverseDir.Z

	if tMin > tzMax || tzMin > tMax {
		return false
	}
	if tzMin > tMin {
		tMin = tzMin
	}
	if tzMax < tMax {
		tMax = tzMax
	}

	return tMin < math.Inf(1) && tMax > 0
}

// Overlaps reports whether the two boxes share space. Touching faces
// count as overlap.
func (b BBox) Overlaps(o BBox) bool {
	x := b.Max.X >= o.Min.X && b.Min.X <= o.Max.X
	y := b.Max.Y >= o.Min.Y && b.Min.Y <= o.Max.Y
	z := b.Max.Z >= o.Min.Z && b.Min.Z <= o.Max.Z

	return x && y && z
}

// Inside reports whether the point lies within the box, faces included.
func (b BBox) Inside(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Contains reports whether o is nested inside b, faces included.
func (b BBox) Contains(o BBox) bool {
	return o.Min.X >= b.Min.X &&
		o.Min.Y >= b.Min.Y &&
		o.Min.Z >= b.Min.Z &&
		o.Max.X <= b.Max.X &&
		o.Max.Y <= b.Max.Y &&
		o.Max.Z <= b.Max.Z
}

// Expand pads every face outward by delta. A negative delta shrinks the
// box.
func (b BBox) Expand(delta float64) BBox {
	return BBox{
		Min: b.Min.SubScalar(delta),
		Max: b.Max.AddScalar(delta),
	}
}

// MaxExtent returns the axis along which the box is widest. X wins ties
// against the other two axes, Y wins ties against Z.
func (b BBox) MaxExtent() Axis {
	diag := b.Max.Sub(b.Min)
	switch {
	case diag.X >= diag.Y && diag.X >= diag.Z:
		return AxisX
	case diag.Y >= diag.Z:
		return AxisY
	default:
		return AxisZ
	}
}

// Lerp maps box-relative parametric coordinates to a world-space point.
// (0,0,0) is the minimum corner, (1,1,1) the maximum.
func (b BBox) Lerp(tx, ty, tz float64) Vec3 {
	diag := b.Max.Sub(b.Min)
	return Vec3{
		X: b.Min.X + diag.X*tx,
		Y: b.Min.Y + diag.Y*ty,
		Z: b.Min.Z + diag.Z*tz,
	}
}

// Offset is the inverse of Lerp: it maps a world-space point to its
// parametric position relative to the minimum corner.
func (b BBox) Offset(p Vec3) Vec3 {
	diag := b.Max.Sub(b.Min)
	return Vec3{
		X: (p.X - b.Min.X) / diag.X,
		Y: (p.Y - b.Min.Y) / diag.Y,
		Z: (p.Z - b.Min.Z) / diag.Z,
	}
}

func (b BBox) XLen() float64 {
	return b.Max.X - b.Min.X
}

func (b BBox) YLen() float64 {
	return b.Max.Y - b.Min.Y
}

func (b BBox) ZLen() float64 {
	return b.Max.Z - b.Min.Z
}

// Diagonal returns the vector from the minimum to the maximum corner.
func (b BBox) Diagonal() Vec3 {
	return b.Max.Sub(b.Min)
}

// Volume is the product of the three side lengths. It is negative when
// the box is degenerate on an odd number of axes, so comparisons over
// volumes must account for that.
func (b BBox) Volume() float64 {
	return (b.Max.X - b.Min.X) *
		(b.Max.Y - b.Min.Y) *
		(b.Max.Z - b.Min.Z)
}
