// Package weapon implements weapon handling: equipping a weapon and firing
// hitscan shots with their damage and effects.
//
// Handling is the weapon-capable capability: only actors carrying it can pick
// weapons up.
package weapon

import (
	"errors"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/hitscan"
)

var (
	// ErrNoHandling is returned when the actor cannot handle weapons at all.
	ErrNoHandling = errors.New("weapon: actor cannot handle weapons")
	// ErrUnarmed is returned when firing without an equipped weapon.
	ErrUnarmed = errors.New("weapon: no weapon equipped")
	// ErrCoolingDown is returned when firing faster than the fire interval.
	ErrCoolingDown = errors.New("weapon: still cooling down")
)

// Handling is the weapon handling component of an actor. It is created
// together with the actor and starts unarmed.
type Handling struct {
	props    Properties
	equipped bool
	lastShot time.Time
	shots    int

	// Tracer defaults to hitscan.Default.
	Tracer hitscan.Tracer
}

// NewHandling returns an unarmed weapon handler.
func NewHandling() *Handling {
	return &Handling{}
}

// Initialize replaces the weapon configuration.
func (h *Handling) Initialize(props Properties) {
	h.props = props
}

// Properties returns the current weapon configuration.
func (h *Handling) Properties() Properties {
	return h.props
}

// Equipped reports whether a weapon is attached.
func (h *Handling) Equipped() bool {
	return h.equipped
}

// Shots returns how many shots were fired.
func (h *Handling) Shots() int {
	return h.shots
}

// Equip takes over props, puts the weapon item in the actor's hand and
// dispatches EventEquipped. The weapon is attached once; later equips swap
// the configuration and the held item.
func (h *Handling) Equip(f *riotwave.Frame, a *riotwave.Actor, props Properties) {
	first := !h.equipped
	h.Initialize(props)
	h.equipped = true
	h.lastShot = time.Time{}

	if props.Item != nil {
		f.Engine.Puppet(a).Hold(props.Item)
	}
	riotwave.Dispatch(f, a, &EventEquipped{Weapon: props.Name, First: first})
}

// SocketPosition returns the world position of the configured socket for a
// body. Offsets are relative to the eye: right, up, forward.
func (h *Handling) SocketPosition(body *riotwave.Body) mgl64.Vec3 {
	forward := body.Forward()
	flat := riotwave.Direction(cube.Rotation{body.Rotation.Yaw(), 0})
	right := flat.Cross(mgl64.Vec3{0, 1, 0})
	off := h.props.SocketOffset
	return body.Eye().
		Add(right.Mul(off[0])).
		Add(mgl64.Vec3{0, off[1], 0}).
		Add(forward.Mul(off[2]))
}

// Shot describes one fired shot.
type Shot struct {
	Origin mgl64.Vec3
	Socket mgl64.Vec3
	Hit    hitscan.Hit
	// Damage is the damage dealt, 0 on a miss.
	Damage float64
}

// Fire fires the actor's weapon: plays the fire sound, swings the arm, traces
// from the eye along the view direction and applies damage to a
// damage-capable actor struck. Effects are spawned whether or not anything
// was hit.
func Fire(f *riotwave.Frame, a *riotwave.Actor) (Shot, error) {
	h := riotwave.Get[Handling](a)
	if h == nil {
		return Shot{}, ErrNoHandling
	}
	if !h.equipped {
		return Shot{}, ErrUnarmed
	}
	if !h.lastShot.IsZero() && f.Now.Sub(h.lastShot) < h.props.FireInterval {
		return Shot{}, ErrCoolingDown
	}
	h.lastShot = f.Now
	h.shots++

	body := riotwave.MustGet[riotwave.Body](a)
	fx.Play(f.Engine, body.Position, h.props.FireSound)
	f.Engine.Puppet(a).SwingArm()

	tracer := h.Tracer
	if tracer == nil {
		tracer = hitscan.Default
	}
	shot := Shot{Origin: body.Eye(), Socket: h.SocketPosition(body)}
	shot.Hit = hitscan.Ray(f, tracer, shot.Origin, body.Forward(), h.props.Range, a)

	if target := shot.Hit.Actor; target != nil && riotwave.Has[combat.Health](target) {
		combat.BulletHit(f, target, shot.Hit.Position)
		h.spawnEffects(f, shot)

		damage := h.props.Damage
		headshot := shot.Hit.Region == hitscan.RegionHead
		if headshot {
			damage *= h.props.HeadshotMultiplier
		}
		dealt, err := combat.ApplyDamage(f, target, damage, combat.Source{Attacker: a, Kind: combat.KindBullet, Headshot: headshot})
		if err != nil && !errors.Is(err, combat.ErrAlreadyDead) {
			return shot, err
		}
		shot.Damage = dealt
	} else {
		h.spawnEffects(f, shot)
	}

	riotwave.Dispatch(f, a, &EventFired{Shot: shot})
	return shot, nil
}

// spawnEffects shows the muzzle flash at the socket, the impact particle on
// a blocking hit and a beam from the socket to where the shot ended.
func (h *Handling) spawnEffects(f *riotwave.Frame, shot Shot) {
	fx.Show(f.Engine, shot.Socket, h.props.MuzzleFlash)
	if shot.Hit.Blocking {
		fx.Show(f.Engine, shot.Hit.Position, h.props.Impact)
	}
	fx.Beam(f.Engine, shot.Socket, shot.Hit.Position, h.props.Beam)
}

// EventEquipped is dispatched when an actor equips a weapon. First is set the
// first time the actor is armed.
type EventEquipped struct {
	Weapon string
	First  bool
}

// EventFired is dispatched after every shot.
type EventFired struct {
	Shot Shot
}
