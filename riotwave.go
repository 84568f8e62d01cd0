// Package riotwave provides the actor/component layer the RiotWave shooter
// gameplay is built on. It runs on top of a Dragonfly server.
//
// The layer provides:
//   - Actor abstraction for players, enemies and pickups
//   - Component-based data storage per actor, doubling as a capability registry
//   - Events dispatched to handler methods by signature
//   - A frame-driven scheduler for loops and one-shot timers
//   - An Engine seam so gameplay can run headless in tests
//
// # Quick Start
//
//	bundle := riotwave.NewBundle("combat").
//	    Handler(&DeathHandler{}).
//	    Loop(&RegenLoop{}, time.Second, riotwave.Update)
//
//	mngr := riotwave.NewBuilder().
//	    Bundle(bundle.Build()).
//	    Init()
//	mngr.Start(srv.World())
//
//	for p := range srv.Accept() {
//	    a := mngr.Spawn(riotwave.ActorConfig{Kind: riotwave.KindPlayer, Name: p.Name(), Handle: p.H()})
//	    riotwave.Add(a, &Health{Current: 100, Max: 100})
//	    p.Handle(riotwave.NewHandler(a))
//	}
//
// # Components
//
// Components are plain Go structs attached to actors:
//
//	riotwave.Add(a, &Health{100, 100})
//	health := riotwave.Get[Health](a)
//	riotwave.Remove[Health](a)
//
// Whether an actor carries a component is how gameplay code asks whether it
// supports a capability, e.g. Has[weapon.Handling] for "can hold weapons".
//
// # Handlers and loops
//
// Handlers receive events through methods of the form
//
//	func (h *DeathHandler) HandleDeath(f *riotwave.Frame, a *riotwave.Actor, e *combat.EventDeath)
//
// Loops implement System and run once per matching actor per interval.
// Both may declare With[T] and Without[T] fields to filter actors:
//
//	type RegenLoop struct {
//	    _ riotwave.With[Health]
//	    _ riotwave.Without[Dead]
//	}
package riotwave

// Version is the RiotWave gameplay layer version.
const Version = "0.3.0"
