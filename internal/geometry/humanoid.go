package geometry

import (
	"math"

	"github.com/avatarforge/api/internal/model"
)

// Fixed coefficients of the placeholder humanoid. Limb radii grow with
// muscle mass, lateral offsets with width, everything vertical with
// height. The head radius is fixed; only its position scales.
const (
	torsoBaseWidth  = 0.5
	torsoBaseHeight = 0.8
	torsoBaseDepth  = 0.3
	torsoCenterY    = 1.2

	headRadius  = 0.25
	headCenterY = 1.8

	armBaseRadius = 0.08
	armBaseLength = 0.6
	armOffsetX    = 0.4
	armCenterY    = 1.4

	legBaseRadius = 0.1
	legBaseLength = 0.8
	legOffsetX    = 0.15
	legCenterY    = 0.4

	boneRadius   = 0.01
	boneColor    = "#ef4444"
	spineLength  = 2.0
	shoulderSpan = 1.0
	hipSpan      = 0.4
	// Armature subgroup sits one unit above the pelvis origin.
	armatureY     = 1.0
	bridgeOffsetY = 0.4
)

// BuildHumanoid maps a character state to the fixed-topology humanoid:
// one torso box, one head sphere, two arm capsules, two leg capsules,
// and, when ShowSkeleton is set, three debug armature cylinders. The
// armature never affects the skin primitives' layout.
func BuildHumanoid(s model.CharacterState) Description {
	skin := Material{
		Color:     s.SkinColor,
		Roughness: s.Roughness,
		Metalness: s.Metalness,
	}

	h, w, m := s.Height, s.Width, s.MuscleMass

	prims := []Primitive{
		{
			Name:     "torso",
			Kind:     KindBox,
			Position: Vec3{Y: torsoCenterY * h},
			Size: Vec3{
				X: torsoBaseWidth * w,
				Y: torsoBaseHeight * h,
				Z: torsoBaseDepth * s.Depth,
			},
			Material: skin,
		},
		{
			Name:     "head",
			Kind:     KindSphere,
			Position: Vec3{Y: headCenterY * h},
			Radius:   headRadius,
			Material: skin,
		},
		{
			Name:     "arm_right",
			Kind:     KindCapsule,
			Position: Vec3{X: armOffsetX * w, Y: armCenterY * h},
			Radius:   armBaseRadius * (1 + m),
			Length:   armBaseLength * h,
			Material: skin,
		},
		{
			Name:     "arm_left",
			Kind:     KindCapsule,
			Position: Vec3{X: -armOffsetX * w, Y: armCenterY * h},
			Radius:   armBaseRadius * (1 + m),
			Length:   armBaseLength * h,
			Material: skin,
		},
		{
			Name:     "leg_right",
			Kind:     KindCapsule,
			Position: Vec3{X: legOffsetX * w, Y: legCenterY * h},
			Radius:   legBaseRadius * (1 + m),
			Length:   legBaseLength * h,
			Material: skin,
		},
		{
			Name:     "leg_left",
			Kind:     KindCapsule,
			Position: Vec3{X: -legOffsetX * w, Y: legCenterY * h},
			Radius:   legBaseRadius * (1 + m),
			Length:   legBaseLength * h,
			Material: skin,
		},
	}

	if s.ShowSkeleton {
		bone := Material{Color: boneColor}
		prims = append(prims,
			Primitive{
				Name:     "bone_spine",
				Kind:     KindCylinder,
				Position: Vec3{Y: armatureY},
				Radius:   boneRadius,
				Length:   spineLength * h,
				Material: bone,
				Debug:    true,
			},
			Primitive{
				Name:     "bone_shoulder",
				Kind:     KindCylinder,
				Position: Vec3{Y: armatureY + bridgeOffsetY*h},
				Rotation: Vec3{Z: math.Pi / 2},
				Radius:   boneRadius,
				Length:   shoulderSpan * w,
				Material: bone,
				Debug:    true,
			},
			Primitive{
				Name:     "bone_hip",
				Kind:     KindCylinder,
				Position: Vec3{Y: armatureY - bridgeOffsetY*h},
				Rotation: Vec3{Z: math.Pi / 2},
				Radius:   boneRadius,
				Length:   hipSpan * w,
				Material: bone,
				Debug:    true,
			},
		)
	}

	return Description{Primitives: prims}
}
