package riotwave

import (
	"log/slog"
	"time"
)

// Builder configures the gameplay layer before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bundles   []func(*Manager) *Bundle
	resources []any
	log       *slog.Logger
	tickRate  time.Duration
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bundle adds a bundle to the builder.
func (b *Builder) Bundle(callback func(*Manager) *Bundle) *Builder {
	b.bundles = append(b.bundles, callback)
	return b
}

// Resource adds a global resource available to all bundles.
func (b *Builder) Resource(res any) *Builder {
	b.resources = append(b.resources, res)
	return b
}

// Logger sets the logger used by the manager. Defaults to slog.Default().
func (b *Builder) Logger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// TickRate sets the scheduler tick interval. Defaults to DefaultTickRate.
func (b *Builder) TickRate(d time.Duration) *Builder {
	b.tickRate = d
	return b
}

// Init builds the manager. The scheduler is not running until
// Manager.Start is called; tests drive it through Manager.Tick instead.
func (b *Builder) Init() *Manager {
	m := newManager(b.log, b.tickRate)

	var hooks []func(*Manager)
	for _, f := range b.bundles {
		bund := f(m)
		m.bundles = append(m.bundles, bund)
		hooks = append(hooks, bund.postInitHooks...)
	}

	for _, res := range b.resources {
		m.addResource(res)
	}
	for _, bundle := range m.bundles {
		for _, res := range bundle.resources {
			m.addResource(res)
		}
	}

	if err := m.build(); err != nil {
		panic("riotwave: failed to build systems: " + err.Error())
	}

	for _, hook := range hooks {
		hook(m)
	}
	return m
}
