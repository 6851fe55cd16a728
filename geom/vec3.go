package geom

import "math"

// Vec3 is a 3D vector or point with float64 components. It is a plain
// value type: operations return new vectors and equality is the exact
// per-component comparison provided by ==.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// AddScalar offsets every component by s.
func (v Vec3) AddScalar(s float64) Vec3 {
	return Vec3{v.X + s, v.Y + s, v.Z + s}
}

// SubScalar offsets every component by -s.
func (v Vec3) SubScalar(s float64) Vec3 {
	return Vec3{v.X - s, v.Y - s, v.Z - s}
}

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Div(s float64) Vec3 {
	return Vec3{v.X / s, v.Y / s, v.Z / s}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSq())
}

func (v Vec3) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Unit returns the vector scaled to length 1.
func (v Vec3) Unit() Vec3 {
	return v.Div(v.Len())
}

// Min returns the component-wise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

// Max returns the component-wise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z)}
}

// Lerp interpolates component-wise between v and o. alpha 0 returns v,
// alpha 1 returns o.
func (v Vec3) Lerp(o Vec3, alpha float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*alpha,
		Y: v.Y + (o.Y-v.Y)*alpha,
		Z: v.Z + (o.Z-v.Z)*alpha,
	}
}

// Clamp limits every component to the [min, max] interval.
func (v Vec3) Clamp(min, max float64) Vec3 {
	return Vec3{
		X: math.Min(math.Max(v.X, min), max),
		Y: math.Min(math.Max(v.Y, min), max),
		Z: math.Min(math.Max(v.Z, min), max),
	}
}

// Reflect mirrors v around the surface normal n. Both vectors are
// expected to be unit length.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return n.Scale(2 * n.Dot(v)).Sub(v)
}

// Refract bends v through a surface with normal n and refractive index
// ior. inside flags a ray leaving the object rather than entering it.
// The second return value is false on total internal reflection, in
// which case no refracted vector exists.
func (v Vec3) Refract(n Vec3, ior float64, inside bool) (Vec3, bool) {
	n1, n2, nDotV, nn := 1.0, ior, n.Dot(v), n
	if inside {
		n1, n2, nDotV, nn = ior, 1.0, -n.Dot(v), n.Neg()
	}

	ratio := n1 / n2
	disc := 1 - ratio*ratio*(1-nDotV*nDotV)
	if disc < 0 {
		return Vec3{}, false
	}
	return v.Scale(-ratio).Add(nn.Scale(ratio*nDotV - math.Sqrt(disc))), true
}
