package system

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
)

type scanFixture struct {
	w       *ecs.World
	player  ecs.Entity
	scanner *InteractionScanner
	physics *PhysicsSystem
	cfg     *component.MovementConfig
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	log, _ := nullLogger()
	w := ecs.NewWorld()
	cfg := testConfig()
	physics := NewPhysicsSystem(log)
	registry := NewInteractionRegistry()
	RegisterBuiltinInteractions(registry)
	return &scanFixture{
		w:       w,
		player:  addPlayer(t, w, cfg, mgl32.Vec3{}),
		scanner: NewInteractionScanner(physics, registry),
		physics: physics,
		cfg:     cfg,
	}
}

func (f *scanFixture) scan() (ecs.Entity, bool) {
	f.physics.Sync(f.w)
	origin, forward, _ := eyeOf(f.w, f.player)
	return f.scanner.Scan(f.w, f.player, origin, forward, f.cfg)
}

func addDoor(t *testing.T, w *ecs.World, at mgl32.Vec3) ecs.Entity {
	t.Helper()
	e := addBox(t, w, at, mgl32.Vec3{0.5, 1, 0.1}, layerInteractable)
	mustAdd(t, w, e, component.InteractableComponent.Kind(), &component.Interactable{Kind: component.InteractDoor, Prompt: "Open"})
	mustAdd(t, w, e, component.DoorComponent.Kind(), &component.Door{
		ClosedPos:    at,
		OpenPos:      at.Add(mgl32.Vec3{0, 3, 0}),
		OpenPrompt:   "Close",
		ClosedPrompt: "Open",
	})
	return e
}

func TestScanHit(t *testing.T) {
	f := newScanFixture(t)
	door := addDoor(t, f.w, mgl32.Vec3{0, 1.6, 2})

	target, ok := f.scan()
	if !ok || target != door {
		t.Fatalf("expected door %v, got %v %v", door, target, ok)
	}

	res := getOrFail(t, f.w, f.player, component.InteractionTargetComponent.Kind())
	if !res.Valid || ecs.Entity(res.Entity) != door {
		t.Fatalf("expected recorded target, got %+v", res)
	}
	prompt := getOrFail(t, f.w, f.player, component.PromptComponent.Kind())
	if !prompt.Visible || prompt.Text != "Open" {
		t.Fatalf("expected visible prompt, got %+v", prompt)
	}
	c := getOrFail(t, f.w, f.player, component.CrosshairComponent.Kind())
	if c.Transition == nil || c.Transition.Target != component.CrosshairCanInteract {
		t.Fatalf("expected fade toward can_interact, got %+v", c)
	}
}

func TestScanMiss(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, w *ecs.World)
	}{
		{"empty", func(*testing.T, *ecs.World) {}},
		{"plain_wall", func(t *testing.T, w *ecs.World) {
			addBox(t, w, mgl32.Vec3{0, 1.6, 2}, mgl32.Vec3{1, 1, 0.1}, layerDefault)
		}},
		{"interactable_layer_without_behaviour", func(t *testing.T, w *ecs.World) {
			addBox(t, w, mgl32.Vec3{0, 1.6, 2}, mgl32.Vec3{1, 1, 0.1}, layerInteractable)
		}},
		{"beyond_reach", func(t *testing.T, w *ecs.World) {
			addDoor(t, w, mgl32.Vec3{0, 1.6, 5})
		}},
		{"behind", func(t *testing.T, w *ecs.World) {
			addDoor(t, w, mgl32.Vec3{0, 1.6, -2})
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newScanFixture(t)
			c.setup(t, f.w)

			if target, ok := f.scan(); ok {
				t.Fatalf("expected miss, got %v", target)
			}
			res := getOrFail(t, f.w, f.player, component.InteractionTargetComponent.Kind())
			if res.Valid {
				t.Fatalf("expected no target, got %+v", res)
			}
			prompt := getOrFail(t, f.w, f.player, component.PromptComponent.Kind())
			if prompt.Visible {
				t.Fatalf("expected hidden prompt")
			}
			ch := getOrFail(t, f.w, f.player, component.CrosshairComponent.Kind())
			if ch.State != component.CrosshairBase || ch.Transition != nil {
				t.Fatalf("expected untouched base crosshair, got %+v", ch)
			}
		})
	}
}

func TestScanLosesTarget(t *testing.T) {
	f := newScanFixture(t)
	door := addDoor(t, f.w, mgl32.Vec3{0, 1.6, 2})
	if _, ok := f.scan(); !ok {
		t.Fatalf("expected hit")
	}

	ecs.DestroyEntity(f.w, door)
	if _, ok := f.scan(); ok {
		t.Fatalf("expected miss after the door is gone")
	}
	c := getOrFail(t, f.w, f.player, component.CrosshairComponent.Kind())
	if c.Transition == nil || c.Transition.Target != component.CrosshairBase {
		t.Fatalf("expected fade back to base, got %+v", c.Transition)
	}
}

func TestInteractionRegistry(t *testing.T) {
	log, _ := nullLogger()
	w := ecs.NewWorld()
	r := NewInteractionRegistry()
	boom := errors.New("boom")
	r.Register(component.InteractColorBox, func(InteractionContext) error { return boom })
	r.Register(component.InteractDoor, nil)

	box := ecs.CreateEntity(w)
	mustAdd(t, w, box, component.InteractableComponent.Kind(), &component.Interactable{Kind: component.InteractColorBox})
	door := ecs.CreateEntity(w)
	mustAdd(t, w, door, component.InteractableComponent.Kind(), &component.Interactable{Kind: component.InteractDoor})
	plain := ecs.CreateEntity(w)

	if err := r.Dispatch(w, plain, box, log); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
	if _, _, ok := r.Resolve(w, door); ok {
		t.Fatalf("expected nil handler to be ignored")
	}
	if err := r.Dispatch(w, box, plain, log); err == nil {
		t.Fatalf("expected error for an entity without behaviour")
	}
}
