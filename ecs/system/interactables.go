package system

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
)

var errMissingState = errors.New("missing interactable state")

// restingSpeed is the speed under which a thrown pickup counts as settled.
const restingSpeed float32 = 0.05

// RegisterBuiltinInteractions installs the door, pickup and colour box
// behaviours on r.
func RegisterBuiltinInteractions(r *InteractionRegistry) {
	r.Register(component.InteractDoor, ToggleDoor)
	r.Register(component.InteractPickup, UsePickup)
	r.Register(component.InteractColorBox, CycleColorBox)
}

// ToggleDoor slides the door between its closed and open positions.
func ToggleDoor(ctx InteractionContext) error {
	w, e := ctx.World, ctx.Target
	door, ok := ecs.Get(w, e, component.DoorComponent.Kind())
	if !ok {
		return errMissingState
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return errMissingState
	}

	door.Open = !door.Open
	t.Position = door.ClosedPos
	prompt := door.ClosedPrompt
	if door.Open {
		t.Position = door.OpenPos
		prompt = door.OpenPrompt
	}
	if it, ok := ecs.Get(w, e, component.InteractableComponent.Kind()); ok && prompt != "" {
		it.Prompt = prompt
	}
	ctx.Log.WithField("entity", e).WithField("open", door.Open).Info("door toggled")
	return nil
}

// UsePickup picks a resting pickup up, or throws the one being carried.
func UsePickup(ctx InteractionContext) error {
	w, e := ctx.World, ctx.Target
	p, ok := ecs.Get(w, e, component.PickupComponent.Kind())
	if !ok {
		return errMissingState
	}
	rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind())
	if !ok {
		return errMissingState
	}
	collider, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok {
		return errMissingState
	}

	if p.State != component.PickupCarried {
		p.State = component.PickupCarried
		p.Carrier = uint64(ctx.Actor)
		rb.Kinematic = true
		rb.Velocity = mgl32.Vec3{}
		collider.Solid = false
		if it, ok := ecs.Get(w, e, component.InteractableComponent.Kind()); ok {
			p.SwapPrompt(it)
		}
		ctx.Log.WithField("entity", e).Info("pickup carried")
		return nil
	}

	p.State = component.PickupThrown
	p.Carrier = 0
	rb.Kinematic = false
	collider.Solid = true
	if it, ok := ecs.Get(w, e, component.InteractableComponent.Kind()); ok {
		p.SwapPrompt(it)
	}
	impulse := float32(0)
	if cfg, ok := ecs.Get(w, ctx.Actor, component.MovementConfigComponent.Kind()); ok {
		impulse = cfg.ThrowImpulse
	}
	if _, forward, ok := eyeOf(w, ctx.Actor); ok {
		ApplyImpulse(rb, forward.Mul(impulse))
	}
	if actorBody, ok := ecs.Get(w, ctx.Actor, component.RigidBodyComponent.Kind()); ok {
		rb.Velocity = rb.Velocity.Add(common.Horizontal(actorBody.Velocity))
	}
	ctx.Log.WithField("entity", e).Info("pickup thrown")
	return nil
}

// CycleColorBox advances the box to the next colour of its palette.
func CycleColorBox(ctx InteractionContext) error {
	w, e := ctx.World, ctx.Target
	box, ok := ecs.Get(w, e, component.ColorBoxComponent.Kind())
	if !ok || len(box.Palette) == 0 {
		return errMissingState
	}
	box.Index = (box.Index + 1) % len(box.Palette)
	if r, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
		r.Color = box.Palette[box.Index]
	}
	ctx.Log.WithField("entity", e).WithField("index", box.Index).Debug("color box cycled")
	return nil
}

// CarrySystem keeps carried pickups in front of their carrier and settles
// thrown ones.
type CarrySystem struct{}

func NewCarrySystem() *CarrySystem {
	return &CarrySystem{}
}

func (s *CarrySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach3(w, component.PickupComponent.Kind(), component.TransformComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, p *component.Pickup, t *component.Transform, rb *component.RigidBody) {
		switch p.State {
		case component.PickupCarried:
			carrier := ecs.Entity(p.Carrier)
			origin, forward, ok := eyeOf(w, carrier)
			if !ok {
				p.State = component.PickupThrown
				rb.Kinematic = false
				if c, ok := ecs.Get(w, e, component.ColliderComponent.Kind()); ok {
					c.Solid = true
				}
				return
			}
			distance := float32(1.5)
			if cfg, ok := ecs.Get(w, carrier, component.MovementConfigComponent.Kind()); ok && cfg.CarryDistance > 0 {
				distance = cfg.CarryDistance
			}
			t.Position = origin.Add(forward.Mul(distance))
		case component.PickupThrown:
			if rb.Velocity.Len() < restingSpeed {
				p.State = component.PickupResting
			}
		}
	})
}
