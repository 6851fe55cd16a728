package geom

// Ray is a half-line starting at Origin and extending along Direction.
// The reciprocal direction and its sign bits are computed once at
// construction so that repeated box intersection tests multiply instead
// of divide and never re-branch on the direction's sign.
type Ray struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`

	// InverseDir holds 1/Direction per component. Components of a
	// zero-direction axis become ±Inf, which the slab test relies on.
	InverseDir Vec3 `json:"-"`

	// Signs[i] is true when InverseDir's i-th component is positive.
	Signs [3]bool `json:"-"`
}

// NewRay builds a ray from an origin and a direction. The direction does
// not need to be normalized and may have zero components.
func NewRay(origin, direction Vec3) Ray {
	inv := Vec3{
		X: 1 / direction.X,
		Y: 1 / direction.Y,
		Z: 1 / direction.Z,
	}

	return Ray{
		Origin:     origin,
		Direction:  direction,
		InverseDir: inv,
		Signs:      [3]bool{inv.X > 0, inv.Y > 0, inv.Z > 0},
	}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
