package system

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/sirupsen/logrus"
)

type MoveKind uint8

const (
	MoveIdle MoveKind = iota
	MoveWalk
	MoveSprint
)

func (k MoveKind) String() string {
	switch k {
	case MoveWalk:
		return "walk"
	case MoveSprint:
		return "sprint"
	}
	return "idle"
}

// MovementEvent classifies the movement of a tick and carries the FOV the
// view should blend toward.
type MovementEvent struct {
	Entity    ecs.Entity
	Kind      MoveKind
	TargetFOV float32
}

// MoveInput is the planar move axis (x right, y forward) plus the sprint
// modifier. The axis length is at most 1.
type MoveInput struct {
	Axis   mgl32.Vec2
	Sprint bool
}

// ComputeVelocity returns the body velocity for the next physics step. The
// vertical component of current is always carried through, and a zero axis
// leaves current untouched.
func ComputeVelocity(in MoveInput, cfg *component.MovementConfig, st component.MovementState, current mgl32.Vec3, facing mgl32.Quat, dt float32) (mgl32.Vec3, MovementEvent) {
	if in.Axis.Len() == 0 {
		return current, MovementEvent{Kind: MoveIdle, TargetFOV: cfg.BaseFOV}
	}
	axis := in.Axis
	if axis.Len() > 1 {
		axis = axis.Normalize()
	}

	direction := facing.Rotate(mgl32.Vec3{axis[0], 0, axis[1]})
	target := direction.Mul(cfg.Speed)

	evt := MovementEvent{Kind: MoveWalk, TargetFOV: cfg.WalkFOV}
	if in.Sprint && !st.Crouched && direction.Dot(common.FacingForward(facing)) >= cfg.SprintMinForwardDot {
		target = target.Mul(cfg.SprintMultiplier)
		evt = MovementEvent{Kind: MoveSprint, TargetFOV: cfg.SprintFOV}
	}
	if st.Crouched {
		target = target.Mul(cfg.CrouchMultiplier)
	}

	if st.Tag == component.Airborne {
		t := common.Clamp01(cfg.AirSmoothing * dt)
		target = common.LerpVec3(common.Horizontal(current), target.Mul(cfg.AirControl), t)
	}

	target[1] = current[1]
	return target, evt
}

// ApplyImpulse changes the body velocity by impulse / mass.
func ApplyImpulse(body *component.RigidBody, impulse mgl32.Vec3) {
	if body == nil {
		return
	}
	mass := body.Mass
	if mass <= 0 {
		mass = 1
	}
	body.Velocity = body.Velocity.Add(impulse.Mul(1 / mass))
}

// Jump puts the body in the air and pushes it up. Callers gate it.
func Jump(body *component.RigidBody, st *component.MovementState, cfg *component.MovementConfig) {
	st.Tag = component.Airborne
	ApplyImpulse(body, common.Up.Mul(cfg.JumpForce))
}

// ToggleCrouch flips the crouch flag and lowers or restores the camera.
func ToggleCrouch(st *component.MovementState, look *component.Look, cfg *component.MovementConfig) {
	if st.Crouched {
		look.CameraOffset = look.StandingOffset
		st.Crouched = false
		return
	}
	look.StandingOffset = look.CameraOffset
	look.CameraOffset = look.StandingOffset.Sub(common.Up.Mul(cfg.CrouchCameraOffset))
	st.Crouched = true
}

// MovementSystem writes the velocity of every controlled body and applies
// jumps latched since the previous physics tick.
type MovementSystem struct {
	log logrus.FieldLogger
}

func NewMovementSystem(log logrus.FieldLogger) *MovementSystem {
	return &MovementSystem{log: log}
}

func (m *MovementSystem) Update(w *ecs.World) {
	if m == nil || w == nil {
		return
	}
	dt := w.Delta()

	ecs.ForEach4(w, component.InputComponent.Kind(), component.MovementConfigComponent.Kind(), component.MovementStateComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, in *component.Input, cfg *component.MovementConfig, st *component.MovementState, rb *component.RigidBody) {
		facing := mgl32.QuatIdent()
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			facing = t.Rotation
		}

		velocity, evt := ComputeVelocity(MoveInput{Axis: in.Move, Sprint: in.SprintHeld}, cfg, *st, rb.Velocity, facing, dt)
		rb.Velocity = velocity
		evt.Entity = e
		ecs.Publish(w, evt)

		if st.JumpPending {
			st.JumpPending = false
			Jump(rb, st, cfg)
			m.log.WithField("entity", e).Debug("movement: jump impulse applied")
		}
	})
}
