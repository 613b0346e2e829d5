package zone

import (
	"fmt"
	"strings"
)

// Type classifies what a zone allows.
type Type string

const (
	// TypeRed is a forbidden zone.
	TypeRed Type = "red"
	// TypeGreen is available for safe flights.
	TypeGreen Type = "green"
	// TypeParent owns other zones.
	TypeParent Type = "parent"

	// DefaultType is used when no type is given.
	DefaultType = TypeGreen
)

// ParseType converts user input into a zone Type. Empty input yields DefaultType.
func ParseType(s string) (Type, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultType, true
	}

	switch t := Type(s); t {
	case TypeRed, TypeGreen, TypeParent:
		return t, true
	default:
		return "", false
	}
}

// Valid reports whether t is a known zone type.
func (t Type) Valid() bool {
	return t == TypeRed || t == TypeGreen || t == TypeParent
}

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// Coord is the set of numeric types a point coordinate may use.
type Coord interface {
	~int16 | ~int32 | ~int64 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Point3D is a point in space.
type Point3D[C Coord] struct {
	X C
	Y C
	Z C
}

// NewPoint returns a point with the given coordinates.
func NewPoint[C Coord](x, y, z C) Point3D[C] {
	return Point3D[C]{X: x, Y: y, Z: z}
}

// String implements fmt.Stringer.
func (p Point3D[C]) String() string {
	return fmt.Sprintf("(%v, %v, %v)", p.X, p.Y, p.Z)
}

// Box3D is an axis-aligned box spanned by two corners.
// The corners are kept exactly as given; no min/max ordering is applied.
type Box3D[C Coord] struct {
	Point1 Point3D[C]
	Point2 Point3D[C]
}

// NewBox returns a box spanned by the two points.
func NewBox[C Coord](point1, point2 Point3D[C]) Box3D[C] {
	return Box3D[C]{Point1: point1, Point2: point2}
}

// Zone is a catalogued region.
type Zone[C Coord] struct {
	// ID is the sequential identifier assigned by the registry.
	ID uint32
	// Type is the classification of the zone.
	Type Type
	// BoundingBox is the region covered by the zone.
	BoundingBox Box3D[C]
}

// New returns a zone with the given identifier, type and box.
func New[C Coord](id uint32, zoneType Type, box Box3D[C]) Zone[C] {
	return Zone[C]{
		ID:          id,
		Type:        zoneType,
		BoundingBox: box,
	}
}

// Is reports whether the zone has the given type.
func (z Zone[C]) Is(zoneType Type) bool {
	return z.Type == zoneType
}
