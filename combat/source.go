package combat

import (
	"github.com/df-mc/dragonfly/server/world"

	"github.com/oriumgames/riotwave"
)

// Kind is what dealt damage.
type Kind uint8

const (
	KindBullet Kind = iota
	KindMelee
	KindEnvironment
)

func (k Kind) String() string {
	switch k {
	case KindBullet:
		return "bullet"
	case KindMelee:
		return "melee"
	case KindEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Source describes a damage application.
type Source struct {
	// Attacker is nil for environment damage.
	Attacker *riotwave.Actor
	Kind     Kind
	Headshot bool
}

// DragonflySource carries a Source through Dragonfly's damage pipeline so the
// engine plays hurt feedback without applying its own damage rules.
type DragonflySource struct {
	Source Source
}

var _ world.DamageSource = DragonflySource{}

func (DragonflySource) ReducedByArmour() bool     { return false }
func (DragonflySource) ReducedByResistance() bool { return false }
func (DragonflySource) Fire() bool                { return false }
func (DragonflySource) IgnoreTotem() bool         { return true }

// EventDamaged is dispatched to an actor that took non-lethal damage.
type EventDamaged struct {
	Amount    float64
	Remaining float64
	Source    Source
}

// EventDeath is dispatched once to an actor whose health reached 0.
type EventDeath struct {
	Source Source
}

// EventRevive is dispatched to an actor restored to full health.
type EventRevive struct{}
