package riotwave

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Default body dimensions, matching a Bedrock player.
const (
	DefaultEyeHeight  = 1.62
	DefaultHeadHeight = 1.4
)

// DefaultBox is the player-sized collision box relative to the feet.
var DefaultBox = cube.Box(-0.3, 0, -0.3, 0.3, 1.8, 0.3)

// Body is the spatial state of an actor. Player bodies follow the client's
// movement; every other body is driven by the simulation.
type Body struct {
	Position mgl64.Vec3
	Rotation cube.Rotation
	Velocity mgl64.Vec3

	// Box is relative to Position.
	Box cube.BBox

	EyeHeight float64
	// HeadHeight is the height above Position from which a hit counts as a
	// head hit.
	HeadHeight float64
}

// WorldBox returns the collision box in world space.
func (b *Body) WorldBox() cube.BBox {
	return b.Box.Translate(b.Position)
}

// Eye returns the world position of the actor's eyes.
func (b *Body) Eye() mgl64.Vec3 {
	return b.Position.Add(mgl64.Vec3{0, b.EyeHeight, 0})
}

// Center returns the centre of the world-space box.
func (b *Body) Center() mgl64.Vec3 {
	box := b.WorldBox()
	return box.Min().Add(box.Max()).Mul(0.5)
}

// Forward returns the unit view direction.
func (b *Body) Forward() mgl64.Vec3 {
	return Direction(b.Rotation)
}

// Direction converts a yaw/pitch rotation in degrees to a unit vector.
// Yaw 0 faces +Z, positive pitch looks down.
func Direction(rot cube.Rotation) mgl64.Vec3 {
	yaw, pitch := mgl64.DegToRad(rot.Yaw()), mgl64.DegToRad(rot.Pitch())
	return mgl64.Vec3{
		-math.Sin(yaw) * math.Cos(pitch),
		-math.Sin(pitch),
		math.Cos(yaw) * math.Cos(pitch),
	}
}

// LookAt returns the rotation that faces from towards to.
func LookAt(from, to mgl64.Vec3) cube.Rotation {
	d := to.Sub(from)
	horizontal := math.Hypot(d.X(), d.Z())
	yaw := mgl64.RadToDeg(math.Atan2(-d.X(), d.Z()))
	pitch := mgl64.RadToDeg(-math.Atan2(d.Y(), horizontal))
	return cube.Rotation{yaw, pitch}
}

// newBody builds a body from spawn config, filling in defaults.
func newBody(cfg ActorConfig) *Body {
	b := &Body{
		Position:   cfg.Position,
		Rotation:   cfg.Rotation,
		Box:        cfg.Box,
		EyeHeight:  cfg.EyeHeight,
		HeadHeight: DefaultHeadHeight,
	}
	if b.Box == (cube.BBox{}) {
		b.Box = DefaultBox
	}
	if b.EyeHeight == 0 {
		b.EyeHeight = DefaultEyeHeight
	}
	if h := b.Box.Max().Y(); h < DefaultBox.Max().Y() {
		b.HeadHeight = h * (DefaultHeadHeight / DefaultBox.Max().Y())
	}
	return b
}
