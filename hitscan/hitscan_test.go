package hitscan

import (
	"math"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/enginetest"
)

func near(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-9)
}

func TestIntersect(t *testing.T) {
	box := cube.Box(0, 0, 0, 1, 1, 1)
	tests := []struct {
		name       string
		start, end mgl64.Vec3
		wantOK     bool
		wantPos    mgl64.Vec3
		wantNormal mgl64.Vec3
		wantFrac   float64
	}{
		{
			name: "through min x face", start: mgl64.Vec3{-1, 0.5, 0.5}, end: mgl64.Vec3{3, 0.5, 0.5},
			wantOK: true, wantPos: mgl64.Vec3{0, 0.5, 0.5}, wantNormal: mgl64.Vec3{-1, 0, 0}, wantFrac: 0.25,
		},
		{
			name: "through max y face", start: mgl64.Vec3{0.5, 3, 0.5}, end: mgl64.Vec3{0.5, -1, 0.5},
			wantOK: true, wantPos: mgl64.Vec3{0.5, 1, 0.5}, wantNormal: mgl64.Vec3{0, 1, 0}, wantFrac: 0.5,
		},
		{
			name: "diagonal into min z face", start: mgl64.Vec3{0, 0.5, -1}, end: mgl64.Vec3{1, 0.5, 1},
			wantOK: true, wantPos: mgl64.Vec3{0.5, 0.5, 0}, wantNormal: mgl64.Vec3{0, 0, -1}, wantFrac: 0.5,
		},
		{
			name: "starting inside", start: mgl64.Vec3{0.5, 0.5, 0.5}, end: mgl64.Vec3{5, 0.5, 0.5},
			wantOK: true, wantPos: mgl64.Vec3{0.5, 0.5, 0.5}, wantFrac: 0,
		},
		{
			name: "parallel miss", start: mgl64.Vec3{-1, 2, 0.5}, end: mgl64.Vec3{3, 2, 0.5},
		},
		{
			name: "stops short", start: mgl64.Vec3{-3, 0.5, 0.5}, end: mgl64.Vec3{-1, 0.5, 0.5},
		},
		{
			name: "diagonal miss", start: mgl64.Vec3{-1, 2, 0.5}, end: mgl64.Vec3{2, -2, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, normal, frac, ok := Intersect(box, tt.start, tt.end)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if !near(pos, tt.wantPos) {
				t.Errorf("expected pos %v, got %v", tt.wantPos, pos)
			}
			if !near(normal, tt.wantNormal) {
				t.Errorf("expected normal %v, got %v", tt.wantNormal, normal)
			}
			if math.Abs(frac-tt.wantFrac) > 1e-9 {
				t.Errorf("expected fraction %v, got %v", tt.wantFrac, frac)
			}
		})
	}
}

func newWorld(t *testing.T) (*riotwave.Frame, *enginetest.Engine, *riotwave.Actor, *riotwave.Actor) {
	t.Helper()
	m := riotwave.NewBuilder().Init()
	shooter := m.Spawn(riotwave.ActorConfig{Name: "shooter", Kind: riotwave.KindPlayer})
	riotwave.Add(shooter, combat.NewHealth(100))
	target := m.Spawn(riotwave.ActorConfig{Name: "target", Kind: riotwave.KindEnemy, Position: mgl64.Vec3{0, 0, 5}})
	riotwave.Add(target, combat.NewHealth(100))
	eng := enginetest.New()
	return m.Frame(eng), eng, shooter, target
}

func TestActorTracerRegions(t *testing.T) {
	f, _, shooter, target := newWorld(t)

	hit, ok := ActorTracer{}.Trace(f, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 10}, shooter)
	if !ok || hit.Actor != target {
		t.Fatalf("expected to hit target, got %+v", hit)
	}
	if hit.Region != RegionBody {
		t.Errorf("expected body hit, got %v", hit.Region)
	}
	if math.Abs(hit.Position.Z()-4.7) > 1e-9 {
		t.Errorf("expected entry at z=4.7, got %v", hit.Position.Z())
	}

	hit, ok = ActorTracer{}.Trace(f, mgl64.Vec3{0, 1.6, 0}, mgl64.Vec3{0, 1.6, 10}, shooter)
	if !ok || hit.Region != RegionHead {
		t.Errorf("expected head hit, got %+v", hit)
	}
}

func TestActorTracerSkipsShooterAndDead(t *testing.T) {
	f, _, shooter, target := newWorld(t)

	// Ray starts inside the shooter's own box.
	hit, ok := ActorTracer{}.Trace(f, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 10}, shooter)
	if !ok || hit.Actor == shooter {
		t.Fatalf("expected the shooter to be ignored, got %+v", hit)
	}

	riotwave.Get[combat.Health](target).Current = 0
	if _, ok := (ActorTracer{}).Trace(f, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 10}, shooter); ok {
		t.Error("expected dead actors not to block")
	}
}

func TestBlockTracer(t *testing.T) {
	f, eng, _, _ := newWorld(t)
	eng.SetSolid(cube.Pos{0, 1, 3})

	hit, ok := BlockTracer{}.Trace(f, mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{0.5, 1.5, 10.5}, nil)
	if !ok {
		t.Fatal("expected to hit the block")
	}
	if hit.Block != (cube.Pos{0, 1, 3}) || hit.Actor != nil {
		t.Errorf("unexpected hit %+v", hit)
	}
	if !near(hit.Position, mgl64.Vec3{0.5, 1.5, 3}) || !near(hit.Normal, mgl64.Vec3{0, 0, -1}) {
		t.Errorf("expected entry on the north face, got %v normal %v", hit.Position, hit.Normal)
	}

	if _, ok := (BlockTracer{}).Trace(f, mgl64.Vec3{0.5, 5.5, 0.5}, mgl64.Vec3{0.5, 5.5, 10.5}, nil); ok {
		t.Error("expected open air not to block")
	}
}

func TestWorldKeepsNearest(t *testing.T) {
	f, eng, shooter, target := newWorld(t)

	start, dir := mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}
	hit := Ray(f, Default, start, dir, 100, shooter)
	if hit.Actor != target {
		t.Fatalf("expected target hit without blocks, got %+v", hit)
	}

	eng.SetSolid(cube.Pos{0, 1, 2})
	hit = Ray(f, Default, start, dir, 100, shooter)
	if hit.Actor != nil || hit.Block != (cube.Pos{0, 1, 2}) {
		t.Errorf("expected the wall to block the shot, got %+v", hit)
	}
}

func TestRayMiss(t *testing.T) {
	f, _, shooter, _ := newWorld(t)

	hit := Ray(f, Default, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, 0, shooter)
	if hit.Blocking || hit.Fraction != 1 {
		t.Errorf("expected a miss, got %+v", hit)
	}
	if !near(hit.Position, mgl64.Vec3{DefaultRange, 1, 0}) {
		t.Errorf("expected terminal point at default range, got %v", hit.Position)
	}
}
