package system

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/sirupsen/logrus"
)

// InteractionContext is handed to the handler of the interactable being used.
type InteractionContext struct {
	World  *ecs.World
	Actor  ecs.Entity
	Target ecs.Entity
	Log    logrus.FieldLogger
}

type InteractionHandler func(ctx InteractionContext) error

// InteractionRegistry resolves the behaviour of an Interactable from its kind.
type InteractionRegistry struct {
	handlers map[component.InteractKind]InteractionHandler
}

func NewInteractionRegistry() *InteractionRegistry {
	return &InteractionRegistry{handlers: make(map[component.InteractKind]InteractionHandler)}
}

// Register sets the handler for kind, replacing any previous one.
func (r *InteractionRegistry) Register(kind component.InteractKind, h InteractionHandler) {
	if r == nil || h == nil {
		return
	}
	r.handlers[kind] = h
}

// Resolve returns the handler for e. It fails when e is not interactable or
// nothing handles its kind.
func (r *InteractionRegistry) Resolve(w *ecs.World, e ecs.Entity) (InteractionHandler, *component.Interactable, bool) {
	if r == nil {
		return nil, nil, false
	}
	it, ok := ecs.Get(w, e, component.InteractableComponent.Kind())
	if !ok {
		return nil, nil, false
	}
	h, ok := r.handlers[it.Kind]
	if !ok {
		return nil, nil, false
	}
	return h, it, true
}

// Dispatch runs the handler of target on behalf of actor.
func (r *InteractionRegistry) Dispatch(w *ecs.World, actor, target ecs.Entity, log logrus.FieldLogger) error {
	h, it, ok := r.Resolve(w, target)
	if !ok {
		return fmt.Errorf("interaction: entity %s has no handler", target)
	}
	if err := h(InteractionContext{World: w, Actor: actor, Target: target, Log: log}); err != nil {
		return fmt.Errorf("interaction: %s %s: %w", it.Kind, target, err)
	}
	return nil
}

// InteractionScanner finds the interactable under the view of an actor and
// keeps the actor's crosshair and prompt in step with the result.
type InteractionScanner struct {
	query    PhysicsQuery
	registry *InteractionRegistry
}

func NewInteractionScanner(query PhysicsQuery, registry *InteractionRegistry) *InteractionScanner {
	return &InteractionScanner{query: query, registry: registry}
}

func (s *InteractionScanner) Registry() *InteractionRegistry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Scan casts from origin along forward within reach. A hit on something
// without a registered behaviour counts as a miss.
func (s *InteractionScanner) Scan(w *ecs.World, actor ecs.Entity, origin, forward mgl32.Vec3, cfg *component.MovementConfig) (ecs.Entity, bool) {
	var (
		target ecs.Entity
		found  bool
		prompt string
	)
	if hit, ok := s.query.Raycast(origin, forward, cfg.InteractionReach, cfg.InteractableMask); ok {
		if _, it, ok := s.registry.Resolve(w, hit.Entity); ok {
			target, found, prompt = hit.Entity, true, it.Prompt
		}
	}

	if res, ok := ecs.Get(w, actor, component.InteractionTargetComponent.Kind()); ok {
		*res = component.InteractionTarget{Entity: uint64(target), Valid: found}
	}
	if c, ok := ecs.Get(w, actor, component.CrosshairComponent.Kind()); ok {
		state := component.CrosshairBase
		if found {
			state = component.CrosshairCanInteract
		}
		SetCrosshairState(c, cfg, state, w.Time())
	}
	if p, ok := ecs.Get(w, actor, component.PromptComponent.Kind()); ok {
		*p = component.Prompt{Visible: found, Text: prompt}
	}
	return target, found
}

// eyeOf returns the camera position and forward vector of e.
func eyeOf(w *ecs.World, e ecs.Entity) (mgl32.Vec3, mgl32.Vec3, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	look, ok := ecs.Get(w, e, component.LookComponent.Kind())
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return t.Position.Add(look.CameraOffset), common.FacingForward(look.CameraRotation), true
}

// InteractionSystem rescans for every actor with a view each physics tick.
type InteractionSystem struct {
	scanner *InteractionScanner
}

func NewInteractionSystem(scanner *InteractionScanner) *InteractionSystem {
	return &InteractionSystem{scanner: scanner}
}

func (s *InteractionSystem) Update(w *ecs.World) {
	if s == nil || s.scanner == nil || w == nil {
		return
	}
	ecs.ForEach2(w, component.MovementConfigComponent.Kind(), component.LookComponent.Kind(), func(e ecs.Entity, cfg *component.MovementConfig, _ *component.Look) {
		origin, forward, ok := eyeOf(w, e)
		if !ok {
			return
		}
		s.scanner.Scan(w, e, origin, forward, cfg)
	})
}
