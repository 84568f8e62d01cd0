package riotwave

import (
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
)

// Bundle groups related handlers, loops, commands and resources together.
// Bundles are registered with the builder and keep gameplay features apart.
type Bundle struct {
	name string

	handlers  []any
	loops     []loopRegistration
	commands  []cmd.Command
	resources []any

	postInitHooks []func(*Manager)
}

// loopRegistration holds a loop system registration.
type loopRegistration struct {
	system   System
	interval time.Duration
	stage    Stage
}

// NewBundle creates a new bundle with the given name.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Resource registers a resource, available to everything through
// Resource[T]. Resources must be pointers.
func (b *Bundle) Resource(res any) *Bundle {
	b.resources = append(b.resources, res)
	return b
}

// PostInit registers a hook run once the manager is fully built.
func (b *Bundle) PostInit(hook func(*Manager)) *Bundle {
	b.postInitHooks = append(b.postInitHooks, hook)
	return b
}

// Build returns a callback function that returns this bundle.
// This allows for cleaner inline bundle initialization:
//
//	bund := riotwave.NewBundle("combat").
//	    Handler(&DeathHandler{}).
//	    Build()
//
//	mngr := riotwave.NewBuilder().
//	    Bundle(bund).
//	    Init()
func (b *Bundle) Build() func(*Manager) *Bundle {
	return func(*Manager) *Bundle {
		return b
	}
}

// Command registers a Dragonfly command for this bundle.
func (b *Bundle) Command(command cmd.Command) *Bundle {
	b.commands = append(b.commands, command)
	return b
}

// Handler registers a handler. Handlers are pointers to structs with event
// methods of the form
//
//	func (h *H) HandleX(f *Frame, a *Actor, e *EventX)
func (b *Bundle) Handler(h any) *Bundle {
	b.handlers = append(b.handlers, h)
	return b
}

// Loop registers a loop system that runs at fixed intervals.
// Interval of 0 means the loop runs every tick.
func (b *Bundle) Loop(sys System, interval time.Duration, stage Stage) *Bundle {
	b.loops = append(b.loops, loopRegistration{
		system:   sys,
		interval: interval,
		stage:    stage,
	})
	return b
}

// build registers the bundle's content with m.
func (b *Bundle) build(m *Manager) error {
	for _, h := range b.handlers {
		if err := m.registerHandler(h); err != nil {
			return err
		}
	}
	for _, reg := range b.loops {
		m.scheduler.addLoop(reg.system, reg.interval, reg.stage)
	}
	for _, c := range b.commands {
		cmd.Register(c)
	}
	return nil
}
