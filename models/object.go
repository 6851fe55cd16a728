package models

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/raido/geom"
	"github.com/aukilabs/raido/wire"
)

// Shape is a solid an object carries: it reports the minimum
// axis-aligned box bounding it and describes itself for the wire.
type Shape interface {
	Mbr() geom.BBox
	Spec() wire.ShapeSpec
}

// Sphere is a ball described by its center and radius.
type Sphere struct {
	Center geom.Vec3
	Radius float64
}

func NewSphere(center geom.Vec3, radius float64) (Sphere, error) {
	if radius <= 0 {
		return Sphere{}, errors.New("sphere radius must be above zero").
			WithTag("radius", radius)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

func (s Sphere) Mbr() geom.BBox {
	return geom.BBox{
		Min: s.Center.SubScalar(s.Radius),
		Max: s.Center.AddScalar(s.Radius),
	}
}

func (s Sphere) Spec() wire.ShapeSpec {
	center := s.Center
	return wire.ShapeSpec{
		Kind:   wire.ShapeKindSphere,
		Center: &center,
		Radius: s.Radius,
	}
}

// Box is a rectangular solid aligned with the axes.
type Box struct {
	Min geom.Vec3
	Max geom.Vec3
}

func NewBox(min, max geom.Vec3) (Box, error) {
	if max.X < min.X || max.Y < min.Y || max.Z < min.Z {
		return Box{}, errors.New("box corners are inverted").
			WithTag("min", min).
			WithTag("max", max)
	}
	return Box{Min: min, Max: max}, nil
}

func (b Box) Mbr() geom.BBox {
	return geom.BBox{Min: b.Min, Max: b.Max}
}

func (b Box) Spec() wire.ShapeSpec {
	min, max := b.Min, b.Max
	return wire.ShapeSpec{
		Kind: wire.ShapeKindBox,
		Min:  &min,
		Max:  &max,
	}
}

// ShapeFromSpec validates a wire shape and returns the solid it
// describes.
func ShapeFromSpec(spec wire.ShapeSpec) (Shape, error) {
	switch spec.Kind {
	case wire.ShapeKindSphere:
		if spec.Center == nil {
			return nil, errors.New("sphere has no center")
		}
		return NewSphere(*spec.Center, spec.Radius)

	case wire.ShapeKindBox:
		if spec.Min == nil || spec.Max == nil {
			return nil, errors.New("box has no corners")
		}
		return NewBox(*spec.Min, *spec.Max)

	default:
		return nil, errors.New("unknown shape kind").
			WithTag("kind", spec.Kind)
	}
}

// Object is a stored scene item: an identity wrapped around a shape.
// Once added to a scene its shape must not change, since the scene
// indexes the bounds the shape reported at insertion.
type Object struct {
	ID    uint32
	Shape Shape
}

func (o *Object) Mbr() geom.BBox {
	return o.Shape.Mbr()
}

func (o *Object) Snapshot() wire.ObjectSnapshot {
	return wire.ObjectSnapshot{
		ID:     o.ID,
		Shape:  o.Shape.Spec(),
		Bounds: o.Shape.Mbr(),
	}
}

func ObjectsToSnapshots(objects []*Object) []wire.ObjectSnapshot {
	res := make([]wire.ObjectSnapshot, len(objects))
	for i, o := range objects {
		res[i] = o.Snapshot()
	}
	return res
}
