// Package hitscan casts instant rays through actor bodies and the block
// world.
package hitscan

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/block/cube/trace"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
)

// DefaultRange is the trace length used when a weapon does not set one.
const DefaultRange = 100.0

// Region is the part of a body a ray struck.
type Region uint8

const (
	RegionNone Region = iota
	RegionBody
	RegionHead
)

func (r Region) String() string {
	switch r {
	case RegionBody:
		return "body"
	case RegionHead:
		return "head"
	default:
		return "none"
	}
}

// Hit is the result of a trace. A hit that is not Blocking ran the full
// length: Position is the end of the segment and Fraction is 1.
type Hit struct {
	// Actor is the damage-capable actor struck, nil for blocks and misses.
	Actor    *riotwave.Actor
	Block    cube.Pos
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Region   Region
	Blocking bool
	// Fraction is the distance along the segment in [0, 1].
	Fraction float64
}

// Intersect tests the segment from start to end against box. It returns the
// entry point, the outward normal of the face entered and the fraction along
// the segment. A segment starting inside the box hits at fraction 0 with a
// zero normal.
func Intersect(box cube.BBox, start, end mgl64.Vec3) (pos, normal mgl64.Vec3, fraction float64, ok bool) {
	if box.Vec3Within(start) {
		return start, mgl64.Vec3{}, 0, true
	}
	res, ok := trace.BBoxIntercept(box, start, end)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, 0, false
	}
	pos = res.Position()
	if l := end.Sub(start).Len(); l > 0 {
		fraction = pos.Sub(start).Len() / l
	}
	return pos, cube.Pos{}.Side(res.Face()).Vec3(), fraction, true
}

// Tracer finds the first blocking hit along a segment.
type Tracer interface {
	Trace(f *riotwave.Frame, start, end mgl64.Vec3, ignore *riotwave.Actor) (Hit, bool)
}

// ActorTracer hits living, damage-capable actors with a Body.
type ActorTracer struct{}

// Trace implements Tracer.
func (ActorTracer) Trace(f *riotwave.Frame, start, end mgl64.Vec3, ignore *riotwave.Actor) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, a := range f.Manager.Actors() {
		if a == ignore || !combat.Alive(a) {
			continue
		}
		body := riotwave.Get[riotwave.Body](a)
		if body == nil {
			continue
		}
		pos, normal, frac, ok := Intersect(body.WorldBox(), start, end)
		if !ok || (found && frac >= best.Fraction) {
			continue
		}
		region := RegionBody
		if pos.Y() >= body.Position.Y()+body.HeadHeight {
			region = RegionHead
		}
		best = Hit{Actor: a, Position: pos, Normal: normal, Region: region, Blocking: true, Fraction: frac}
		found = true
	}
	return best, found
}

// BlockTracer hits solid blocks, walking the voxels the segment crosses.
type BlockTracer struct{}

// Trace implements Tracer.
func (BlockTracer) Trace(f *riotwave.Frame, start, end mgl64.Vec3, _ *riotwave.Actor) (Hit, bool) {
	if start == end {
		return Hit{}, false
	}
	var (
		hit   Hit
		found bool
	)
	trace.TraverseBlocks(start, end, func(pos cube.Pos) bool {
		if !f.Engine.Solid(pos) {
			return true
		}
		p, normal, frac, ok := Intersect(cube.Box(0, 0, 0, 1, 1, 1).Translate(pos.Vec3()), start, end)
		if !ok {
			// Grazed a corner the traversal rounded into.
			return true
		}
		hit = Hit{Block: pos, Position: p, Normal: normal, Blocking: true, Fraction: frac}
		found = true
		return false
	})
	return hit, found
}

// World combines tracers and keeps the nearest hit.
type World struct {
	Tracers []Tracer
}

// Default traces actors and blocks.
var Default = World{Tracers: []Tracer{ActorTracer{}, BlockTracer{}}}

// Trace implements Tracer.
func (w World) Trace(f *riotwave.Frame, start, end mgl64.Vec3, ignore *riotwave.Actor) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, t := range w.Tracers {
		hit, ok := t.Trace(f, start, end, ignore)
		if ok && (!found || hit.Fraction < best.Fraction) {
			best, found = hit, true
		}
	}
	return best, found
}

// Ray traces from start along dir for maxRange blocks. Without a blocking
// hit the returned Hit ends at the terminal point.
func Ray(f *riotwave.Frame, t Tracer, start, dir mgl64.Vec3, maxRange float64, ignore *riotwave.Actor) Hit {
	if maxRange <= 0 {
		maxRange = DefaultRange
	}
	if dir.Len() == 0 {
		return Hit{Position: start, Fraction: 1}
	}
	end := start.Add(dir.Normalize().Mul(maxRange))
	if hit, ok := t.Trace(f, start, end, ignore); ok {
		return hit
	}
	return Hit{Position: end, Fraction: 1}
}
