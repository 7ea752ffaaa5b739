package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/sirupsen/logrus"
)

var ErrMissingCollaborator = errors.New("controller: missing collaborator")

// SceneManager reloads the active scene.
type SceneManager interface {
	ReloadCurrentScene()
}

// InputSource samples the actions of the current frame.
type InputSource interface {
	Poll(in *component.Input)
}

// PhysicsHost steps bodies and answers queries about their colliders.
type PhysicsHost interface {
	ecs.System
	PhysicsQuery
}

type PlayerControllerDeps struct {
	Input   InputSource
	Physics PhysicsHost
	Scenes  SceneManager
	Scanner *InteractionScanner
	Log     logrus.FieldLogger
}

// PlayerControllerSystem drives the controlled bodies. Update is the frame
// tick and FixedUpdate the physics tick.
type PlayerControllerSystem struct {
	input   InputSource
	physics PhysicsHost
	scenes  SceneManager
	scanner *InteractionScanner
	log     logrus.FieldLogger

	movement    *MovementSystem
	look        *LookSystem
	interaction *InteractionSystem
	carry       *CarrySystem
	crosshair   *CrosshairSystem
}

func NewPlayerControllerSystem(deps PlayerControllerDeps) (*PlayerControllerSystem, error) {
	switch {
	case deps.Input == nil:
		return nil, fmt.Errorf("%w: input source", ErrMissingCollaborator)
	case deps.Physics == nil:
		return nil, fmt.Errorf("%w: physics", ErrMissingCollaborator)
	case deps.Scenes == nil:
		return nil, fmt.Errorf("%w: scene manager", ErrMissingCollaborator)
	case deps.Scanner == nil || deps.Scanner.Registry() == nil:
		return nil, fmt.Errorf("%w: interaction scanner", ErrMissingCollaborator)
	}
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &PlayerControllerSystem{
		input:       deps.Input,
		physics:     deps.Physics,
		scenes:      deps.Scenes,
		scanner:     deps.Scanner,
		log:         log,
		movement:    NewMovementSystem(log),
		look:        NewLookSystem(),
		interaction: NewInteractionSystem(deps.Scanner),
		carry:       NewCarrySystem(),
		crosshair:   NewCrosshairSystem(),
	}, nil
}

// actor is the component set of a controlled body.
type actor struct {
	entity    ecs.Entity
	input     *component.Input
	cfg       *component.MovementConfig
	state     *component.MovementState
	body      *component.RigidBody
	transform *component.Transform
	collider  *component.Collider
}

func forEachActor(w *ecs.World, fn func(a actor)) {
	ecs.ForEach4(w, component.InputComponent.Kind(), component.MovementConfigComponent.Kind(), component.MovementStateComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, in *component.Input, cfg *component.MovementConfig, st *component.MovementState, rb *component.RigidBody) {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return
		}
		c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
		if !ok {
			return
		}
		fn(actor{entity: e, input: in, cfg: cfg, state: st, body: rb, transform: t, collider: c})
	})
}

// Update runs the frame tick: input, look, interact, jump latch, crouch and
// the crosshair fade, in that order.
func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if p == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.InputComponent.Kind(), func(_ ecs.Entity, _ *component.PlayerTag, in *component.Input) {
		p.input.Poll(in)
	})

	p.look.Update(w)

	forEachActor(w, func(a actor) {
		if a.input.InteractPressed {
			p.interact(w, a)
		}
		if a.input.JumpPressed {
			p.latchJump(a)
		}
		if a.input.CrouchPressed {
			p.crouch(w, a)
		}
		if a.input.ReloadPressed {
			p.log.WithField("entity", a.entity).Info("controller: reload requested")
			p.scenes.ReloadCurrentScene()
		}
	})

	p.crosshair.Update(w)
}

// FixedUpdate runs the physics tick: velocity and pending jumps, the physics
// step, ground reconciliation, ledge detection, the interaction scan, carried
// objects and the kill height check.
func (p *PlayerControllerSystem) FixedUpdate(w *ecs.World) {
	if p == nil || w == nil {
		return
	}

	p.movement.Update(w)
	p.physics.Update(w)
	p.reconcileGround(w)
	forEachActor(w, func(a actor) { p.checkLedge(w, a) })
	p.interaction.Update(w)
	p.carry.Update(w)
	forEachActor(w, p.checkKillHeight)
}

type fixedStep struct {
	controller *PlayerControllerSystem
}

func (f fixedStep) Update(w *ecs.World) {
	f.controller.FixedUpdate(w)
}

// Physics exposes FixedUpdate as a system for a fixed-step scheduler.
func (p *PlayerControllerSystem) Physics() ecs.System {
	return fixedStep{controller: p}
}

func (p *PlayerControllerSystem) interact(w *ecs.World, a actor) {
	origin, forward, ok := eyeOf(w, a.entity)
	if !ok {
		return
	}
	target, found := p.scanner.Scan(w, a.entity, origin, forward, a.cfg)
	if !found {
		p.log.WithField("entity", a.entity).Info("controller: nothing to interact with")
		return
	}
	if err := p.scanner.Registry().Dispatch(w, a.entity, target, p.log); err != nil {
		p.log.WithError(err).WithField("entity", a.entity).Warn("controller: interaction failed")
	}
}

func (p *PlayerControllerSystem) latchJump(a actor) {
	if a.state.Tag != component.Grounded || a.state.Crouched {
		p.log.WithField("entity", a.entity).
			WithField("state", a.state.Tag).
			WithField("crouched", a.state.Crouched).
			Debug("controller: jump rejected")
		return
	}
	a.state.Tag = component.Airborne
	a.state.JumpPending = true
}

func (p *PlayerControllerSystem) crouch(w *ecs.World, a actor) {
	if a.state.Tag != component.Grounded {
		p.log.WithField("entity", a.entity).Debug("controller: crouch rejected while airborne")
		return
	}
	look, ok := ecs.Get(w, a.entity, component.LookComponent.Kind())
	if !ok {
		return
	}
	ToggleCrouch(a.state, look, a.cfg)
}

// reconcileGround lands a body only when a collision is confirmed by ground
// under its feet.
func (p *PlayerControllerSystem) reconcileGround(w *ecs.World) {
	for _, evt := range ecs.Drain[CollisionEvent](w) {
		st, ok := ecs.Get(w, evt.Entity, component.MovementStateComponent.Kind())
		if !ok {
			continue
		}
		cfg, ok := ecs.Get(w, evt.Entity, component.MovementConfigComponent.Kind())
		if !ok {
			continue
		}
		t, ok := ecs.Get(w, evt.Entity, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		c, ok := ecs.Get(w, evt.Entity, component.ColliderComponent.Kind())
		if !ok {
			continue
		}

		contacts := GroundContacts(p.physics, cfg, feetOf(c.Bounds(t.Position)))
		if len(contacts) == 0 {
			p.log.WithField("entity", evt.Entity).WithField("other", evt.Other).Debug("controller: collision without ground contact ignored")
			continue
		}
		if st.Tag != component.Grounded {
			p.log.WithField("entity", evt.Entity).Debug("controller: landed")
		}
		st.Tag = component.Grounded
	}
}

// checkLedge drops a grounded body that walked off an edge into the air.
func (p *PlayerControllerSystem) checkLedge(w *ecs.World, a actor) {
	dist, hit := DistanceToGround(p.physics, a.cfg, a.collider.Bounds(a.transform.Position))
	if probe, ok := ecs.Get(w, a.entity, component.GroundProbeComponent.Kind()); ok {
		*probe = component.GroundProbe{Distance: dist, Hit: hit}
	}
	if a.state.Tag != component.Grounded || a.body.Velocity[1] >= 0 {
		return
	}
	if hit && dist <= a.cfg.LedgeDropDistance {
		return
	}
	a.state.Tag = component.Airborne
	p.log.WithField("entity", a.entity).Debug("controller: left the ground")
}

func (p *PlayerControllerSystem) checkKillHeight(a actor) {
	if a.transform.Position[1] > a.cfg.KillHeight {
		a.state.BelowKillHeight = false
		return
	}
	if a.state.BelowKillHeight {
		return
	}
	a.state.BelowKillHeight = true
	p.log.WithField("entity", a.entity).WithField("y", a.transform.Position[1]).Info("controller: below kill height, reloading scene")
	p.scenes.ReloadCurrentScene()
}
