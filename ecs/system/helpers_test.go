package system

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	layerDefault common.Layer = 1 << iota
	layerGround
	layerInteractable
	layerPlayer
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
)

func testConfig() *component.MovementConfig {
	return &component.MovementConfig{
		Speed:                 7,
		JumpForce:             350,
		AirControl:            0.8,
		SprintMultiplier:      1.5,
		CrouchMultiplier:      0.5,
		AirSmoothing:          10,
		SprintMinForwardDot:   1e-3,
		LedgeDropDistance:     0.3,
		GroundCheckHalfExtent: mgl32.Vec3{0.3, 0.1, 0.3},
		GroundMask:            layerGround.Mask(),
		InteractableMask:      layerInteractable.Mask(),
		InteractionReach:      3,
		LookSensitivity:       0.1,
		BaseFOV:               60,
		WalkFOV:               65,
		SprintFOV:             75,
		FOVSmoothing:          8,
		FOVFollowsMovement:    true,
		CrouchCameraOffset:    0.5,
		EyeHeight:             1.6,
		KillHeight:            -10,
		Mass:                  70,
		ColliderHalfExtents:   mgl32.Vec3{0.3, 0.9, 0.3},
		CrosshairBase:         white,
		CrosshairInteract:     green,
		CrosshairFade:         0.2,
		CarryDistance:         1.5,
		ThrowImpulse:          5,
	}
}

func nullLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func mustAdd[T any](t *testing.T, w *ecs.World, e ecs.Entity, kind component.ComponentKind[T], v *T) {
	t.Helper()
	if err := ecs.Add(w, e, kind, v); err != nil {
		t.Fatalf("add component: %v", err)
	}
}

// addPlayer creates a controlled body whose transform sits at its feet.
func addPlayer(t *testing.T, w *ecs.World, cfg *component.MovementConfig, feet mgl32.Vec3) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	mustAdd(t, w, e, component.InputComponent.Kind(), &component.Input{})
	mustAdd(t, w, e, component.MovementConfigComponent.Kind(), cfg)
	mustAdd(t, w, e, component.MovementStateComponent.Kind(), &component.MovementState{Tag: component.Grounded})
	mustAdd(t, w, e, component.TransformComponent.Kind(), &component.Transform{Position: feet, Rotation: mgl32.QuatIdent()})
	mustAdd(t, w, e, component.ColliderComponent.Kind(), &component.Collider{
		HalfExtents: cfg.ColliderHalfExtents,
		Offset:      mgl32.Vec3{0, cfg.ColliderHalfExtents[1], 0},
		Layer:       layerPlayer,
		Solid:       true,
	})
	mustAdd(t, w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Mass:          cfg.Mass,
		UseGravity:    true,
		CollisionMask: layerDefault.Mask() | layerGround.Mask() | layerInteractable.Mask(),
	})
	mustAdd(t, w, e, component.LookComponent.Kind(), &component.Look{
		FOV:            cfg.BaseFOV,
		TargetFOV:      cfg.BaseFOV,
		CameraOffset:   mgl32.Vec3{0, cfg.EyeHeight, 0},
		CameraRotation: mgl32.QuatIdent(),
	})
	mustAdd(t, w, e, component.CrosshairComponent.Kind(), &component.Crosshair{Displayed: cfg.CrosshairBase})
	mustAdd(t, w, e, component.PromptComponent.Kind(), &component.Prompt{})
	mustAdd(t, w, e, component.InteractionTargetComponent.Kind(), &component.InteractionTarget{})
	mustAdd(t, w, e, component.GroundProbeComponent.Kind(), &component.GroundProbe{})
	return e
}

// addBox creates a static box centred on center.
func addBox(t *testing.T, w *ecs.World, center, half mgl32.Vec3, layer common.Layer) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	mustAdd(t, w, e, component.TransformComponent.Kind(), &component.Transform{Position: center, Rotation: mgl32.QuatIdent()})
	mustAdd(t, w, e, component.ColliderComponent.Kind(), &component.Collider{HalfExtents: half, Layer: layer, Solid: true})
	mustAdd(t, w, e, component.RenderableComponent.Kind(), &component.Renderable{Color: white})
	return e
}

func addFloor(t *testing.T, w *ecs.World) ecs.Entity {
	return addBox(t, w, mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{10, 0.5, 10}, layerGround)
}

type fakeInput struct {
	next component.Input
}

// Poll hands out the queued actions once; held values stay.
func (f *fakeInput) Poll(in *component.Input) {
	*in = f.next
	f.next.JumpPressed = false
	f.next.CrouchPressed = false
	f.next.InteractPressed = false
	f.next.ReloadPressed = false
	f.next.Look = mgl32.Vec2{}
}

type countingScenes struct {
	reloads int
}

func (c *countingScenes) ReloadCurrentScene() {
	c.reloads++
}

type harness struct {
	w       *ecs.World
	ctrl    *PlayerControllerSystem
	input   *fakeInput
	scenes  *countingScenes
	physics *PhysicsSystem
	hook    *test.Hook
	cfg     *component.MovementConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, hook := nullLogger()
	physics := NewPhysicsSystem(log)
	registry := NewInteractionRegistry()
	RegisterBuiltinInteractions(registry)
	h := &harness{
		w:       ecs.NewWorld(),
		input:   &fakeInput{},
		scenes:  &countingScenes{},
		physics: physics,
		hook:    hook,
		cfg:     testConfig(),
	}
	ctrl, err := NewPlayerControllerSystem(PlayerControllerDeps{
		Input:   h.input,
		Physics: physics,
		Scenes:  h.scenes,
		Scanner: NewInteractionScanner(physics, registry),
		Log:     log,
	})
	if err != nil {
		t.Fatalf("NewPlayerControllerSystem: %v", err)
	}
	h.ctrl = ctrl
	return h
}

func (h *harness) frame(dt float32) {
	h.w.Advance(dt)
	h.ctrl.Update(h.w)
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.w.SetDelta(common.FixedStep)
		h.ctrl.FixedUpdate(h.w)
	}
}

func getOrFail[T any](t *testing.T, w *ecs.World, e ecs.Entity, kind component.ComponentKind[T]) *T {
	t.Helper()
	v, ok := ecs.Get(w, e, kind)
	if !ok {
		t.Fatalf("entity %v missing component", e)
	}
	return v
}

func approx(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1e-3
}

func approxVec3(a, b mgl32.Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}
