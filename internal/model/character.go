package model

import (
	"fmt"
	"regexp"
)

// Field ranges. Every numeric field is clamped into its closed interval
// at the mutation boundary; nothing out of range is ever stored.
const (
	HeightMin = 0.5
	HeightMax = 2.5
	WidthMin  = 0.5
	WidthMax  = 2.5
	DepthMin  = 0.5
	DepthMax  = 1.5
	MuscleMin = 0.0
	MuscleMax = 1.0
	PBRMin    = 0.0
	PBRMax    = 1.0
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidHexColor reports whether s is a #rrggbb hex color.
func ValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// CharacterState is the full set of sliders and toggles describing one
// character's body and material appearance. Values are treated as
// immutable: every mutation goes through Merge and produces a new
// instance.
type CharacterState struct {
	// Sculpt
	Height     float64 `json:"height"`
	Width      float64 `json:"width"`
	Depth      float64 `json:"depth"`
	MuscleMass float64 `json:"muscleMass"`

	// Paint
	SkinColor string  `json:"skinColor"`
	Roughness float64 `json:"roughness"`
	Metalness float64 `json:"metalness"`

	// Rig
	ShowSkeleton bool `json:"showSkeleton"`
	Pose         Pose `json:"pose"`

	// Metadata
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CharacterPatch is a partial update. Nil fields leave the base value
// unchanged.
type CharacterPatch struct {
	Height     *float64 `json:"height,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Depth      *float64 `json:"depth,omitempty"`
	MuscleMass *float64 `json:"muscleMass,omitempty"`

	SkinColor *string  `json:"skinColor,omitempty" validate:"omitempty,hexcolor"`
	Roughness *float64 `json:"roughness,omitempty"`
	Metalness *float64 `json:"metalness,omitempty"`

	ShowSkeleton *bool `json:"showSkeleton,omitempty"`
	Pose         *Pose `json:"pose,omitempty" validate:"omitempty,oneof=A-Pose T-Pose Action"`

	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DefaultCharacter returns the canonical initial state.
func DefaultCharacter() CharacterState {
	return CharacterState{
		Height:       1.0,
		Width:        1.0,
		Depth:        1.0,
		MuscleMass:   0.2,
		SkinColor:    "#c68642",
		Roughness:    0.5,
		Metalness:    0.1,
		ShowSkeleton: false,
		Pose:         PoseA,
		Name:         "New Avatar",
		Description:  "A standard humanoid model.",
	}
}

// Merge returns a new state with each present patch field overriding the
// base, clamping every numeric field into its declared range. The base
// is never mutated. An invalid pose in the patch keeps the base pose;
// Validate is how callers learn about such violations.
func Merge(base CharacterState, patch CharacterPatch) CharacterState {
	out := base

	if patch.Height != nil {
		out.Height = clamp(*patch.Height, HeightMin, HeightMax)
	}
	if patch.Width != nil {
		out.Width = clamp(*patch.Width, WidthMin, WidthMax)
	}
	if patch.Depth != nil {
		out.Depth = clamp(*patch.Depth, DepthMin, DepthMax)
	}
	if patch.MuscleMass != nil {
		out.MuscleMass = clamp(*patch.MuscleMass, MuscleMin, MuscleMax)
	}
	if patch.SkinColor != nil {
		out.SkinColor = *patch.SkinColor
	}
	if patch.Roughness != nil {
		out.Roughness = clamp(*patch.Roughness, PBRMin, PBRMax)
	}
	if patch.Metalness != nil {
		out.Metalness = clamp(*patch.Metalness, PBRMin, PBRMax)
	}
	if patch.ShowSkeleton != nil {
		out.ShowSkeleton = *patch.ShowSkeleton
	}
	if patch.Pose != nil && validPose(*patch.Pose) {
		out.Pose = *patch.Pose
	}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}

	return out
}

// Violation describes one field outside its declared range or enum.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate reports every range or enum constraint the state violates.
// It is used at trust boundaries, after merging external output; the
// caller decides whether to clamp, reject, or surface a warning.
func Validate(s CharacterState) []Violation {
	var vs []Violation

	checkRange := func(field string, v, min, max float64) {
		if v < min || v > max {
			vs = append(vs, Violation{
				Field:   field,
				Message: fmt.Sprintf("%g outside [%g, %g]", v, min, max),
			})
		}
	}

	checkRange("height", s.Height, HeightMin, HeightMax)
	checkRange("width", s.Width, WidthMin, WidthMax)
	checkRange("depth", s.Depth, DepthMin, DepthMax)
	checkRange("muscleMass", s.MuscleMass, MuscleMin, MuscleMax)
	checkRange("roughness", s.Roughness, PBRMin, PBRMax)
	checkRange("metalness", s.Metalness, PBRMin, PBRMax)

	if !ValidHexColor(s.SkinColor) {
		vs = append(vs, Violation{Field: "skinColor", Message: "not a #rrggbb hex color"})
	}
	if !validPose(s.Pose) {
		vs = append(vs, Violation{Field: "pose", Message: fmt.Sprintf("unknown pose %q", s.Pose)})
	}

	return vs
}

func validPose(p Pose) bool {
	for _, v := range ValidPoses {
		if p == v {
			return true
		}
	}
	return false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
