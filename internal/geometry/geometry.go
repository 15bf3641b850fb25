// Package geometry derives a renderable primitive-shape description
// from a character state. The mapping is a pure function: the same
// state always yields the identical description.
package geometry

// PrimitiveKind identifies the base shape of a primitive.
type PrimitiveKind string

const (
	KindBox      PrimitiveKind = "box"
	KindSphere   PrimitiveKind = "sphere"
	KindCapsule  PrimitiveKind = "capsule"
	KindCylinder PrimitiveKind = "cylinder"
)

// Vec3 is a point or size in model space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Material holds the PBR parameters shared by skin primitives.
type Material struct {
	Color     string  `json:"color"`
	Roughness float64 `json:"roughness"`
	Metalness float64 `json:"metalness"`
}

// Primitive is one shape in the description. Size applies to boxes;
// Radius to spheres; Radius and Length to capsules and cylinders.
// Rotation is Euler angles in radians.
type Primitive struct {
	Name     string        `json:"name"`
	Kind     PrimitiveKind `json:"kind"`
	Position Vec3          `json:"position"`
	Rotation Vec3          `json:"rotation"`
	Size     Vec3          `json:"size,omitempty"`
	Radius   float64       `json:"radius,omitempty"`
	Length   float64       `json:"length,omitempty"`
	Material Material      `json:"material"`
	Debug    bool          `json:"debug,omitempty"`
}

// Description is the complete primitive list for one character.
type Description struct {
	Primitives []Primitive `json:"primitives"`
}

// SkeletonCount returns the number of debug armature primitives.
func (d Description) SkeletonCount() int {
	n := 0
	for _, p := range d.Primitives {
		if p.Debug {
			n++
		}
	}
	return n
}
