package system

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/sirupsen/logrus/hooks/test"
)

func hasLog(hook *test.Hook, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func TestNewPlayerControllerSystemRequiresCollaborators(t *testing.T) {
	log, _ := nullLogger()
	physics := NewPhysicsSystem(log)
	scanner := NewInteractionScanner(physics, NewInteractionRegistry())
	full := PlayerControllerDeps{
		Input:   &fakeInput{},
		Physics: physics,
		Scenes:  &countingScenes{},
		Scanner: scanner,
		Log:     log,
	}

	cases := []struct {
		name   string
		mutate func(*PlayerControllerDeps)
	}{
		{"input", func(d *PlayerControllerDeps) { d.Input = nil }},
		{"physics", func(d *PlayerControllerDeps) { d.Physics = nil }},
		{"scenes", func(d *PlayerControllerDeps) { d.Scenes = nil }},
		{"scanner", func(d *PlayerControllerDeps) { d.Scanner = nil }},
		{"registry", func(d *PlayerControllerDeps) { d.Scanner = NewInteractionScanner(physics, nil) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			deps := full
			c.mutate(&deps)
			if _, err := NewPlayerControllerSystem(deps); !errors.Is(err, ErrMissingCollaborator) {
				t.Fatalf("expected ErrMissingCollaborator, got %v", err)
			}
		})
	}

	t.Run("nil_logger_falls_back", func(t *testing.T) {
		deps := full
		deps.Log = nil
		if _, err := NewPlayerControllerSystem(deps); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestControllerJumpCycle(t *testing.T) {
	h := newHarness(t)
	addFloor(t, h.w)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
	tr := getOrFail(t, h.w, p, component.TransformComponent.Kind())
	h.tick(1)

	h.input.next.JumpPressed = true
	h.frame(1.0 / 60)
	if st.Tag != component.Airborne || !st.JumpPending {
		t.Fatalf("expected latched jump, got %+v", st)
	}

	h.tick(1)
	if st.JumpPending || tr.Position[1] <= 0 {
		t.Fatalf("expected the jump to lift off, got %+v at %v", st, tr.Position)
	}
	h.tick(10)
	if st.Tag != component.Airborne {
		t.Fatalf("expected to stay airborne mid-jump, got %v", st.Tag)
	}

	h.tick(100)
	if st.Tag != component.Grounded || !approx(tr.Position[1], 0) {
		t.Fatalf("expected to land, got %v at %v", st.Tag, tr.Position)
	}
}

func TestControllerJumpRejected(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*component.MovementState)
	}{
		{"airborne", func(st *component.MovementState) { st.Tag = component.Airborne }},
		{"crouched", func(st *component.MovementState) { st.Crouched = true }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t)
			p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{0, 5, 0})
			st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
			c.setup(st)
			before := *st

			h.input.next.JumpPressed = true
			h.frame(1.0 / 60)

			if *st != before {
				t.Fatalf("expected state untouched, got %+v", st)
			}
			if !hasLog(h.hook, "controller: jump rejected") {
				t.Fatalf("expected rejection to be logged")
			}
		})
	}
}

func TestControllerCrouch(t *testing.T) {
	h := newHarness(t)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
	look := getOrFail(t, h.w, p, component.LookComponent.Kind())
	standing := look.CameraOffset

	st.Tag = component.Airborne
	h.input.next.CrouchPressed = true
	h.frame(1.0 / 60)
	if st.Crouched || look.CameraOffset != standing {
		t.Fatalf("expected crouch ignored in the air")
	}
	if !hasLog(h.hook, "controller: crouch rejected while airborne") {
		t.Fatalf("expected rejection to be logged")
	}

	st.Tag = component.Grounded
	h.input.next.CrouchPressed = true
	h.frame(1.0 / 60)
	if !st.Crouched || !approx(look.CameraOffset[1], standing[1]-h.cfg.CrouchCameraOffset) {
		t.Fatalf("expected crouch, got %+v offset %v", st, look.CameraOffset)
	}

	h.input.next.CrouchPressed = true
	h.frame(1.0 / 60)
	if st.Crouched || look.CameraOffset != standing {
		t.Fatalf("expected stand up to %v, got %v", standing, look.CameraOffset)
	}
}

func TestControllerWallDoesNotGround(t *testing.T) {
	h := newHarness(t)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{0, 5, 0})
	addBox(t, h.w, mgl32.Vec3{1, 5, 0}, mgl32.Vec3{0.5, 3, 3}, layerDefault)
	st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
	st.Tag = component.Airborne
	getOrFail(t, h.w, p, component.RigidBodyComponent.Kind()).Velocity = mgl32.Vec3{5, 0, 0}

	h.tick(5)

	if st.Tag != component.Airborne {
		t.Fatalf("expected to stay airborne against a wall, got %v", st.Tag)
	}
	if !hasLog(h.hook, "controller: collision without ground contact ignored") {
		t.Fatalf("expected the wall contact to be logged and ignored")
	}
}

func TestControllerLedge(t *testing.T) {
	cases := []struct {
		name  string
		feet  mgl32.Vec3
		floor bool
		want  component.MovementTag
	}{
		{"standing_on_floor", mgl32.Vec3{}, true, component.Grounded},
		{"nothing_below", mgl32.Vec3{0, 3, 0}, false, component.Airborne},
		{"drop_too_far", mgl32.Vec3{0, 2, 0}, true, component.Airborne},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t)
			if c.floor {
				addFloor(t, h.w)
			}
			p := addPlayer(t, h.w, h.cfg, c.feet)
			h.tick(10)

			st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
			if st.Tag != c.want {
				t.Fatalf("expected %v, got %v", c.want, st.Tag)
			}
			probe := getOrFail(t, h.w, p, component.GroundProbeComponent.Kind())
			if probe.Hit != c.floor {
				t.Fatalf("expected probe hit=%v, got %+v", c.floor, probe)
			}
		})
	}
}

func TestControllerWalksOffEdge(t *testing.T) {
	h := newHarness(t)
	addBox(t, h.w, mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{1, 0.5, 1}, layerGround)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
	h.tick(1)

	h.input.next.Move = mgl32.Vec2{0, 1}
	h.frame(1.0 / 60)
	h.tick(25)

	if st.Tag != component.Airborne {
		t.Fatalf("expected to fall off the platform, got %v", st.Tag)
	}
	tr := getOrFail(t, h.w, p, component.TransformComponent.Kind())
	if tr.Position[1] >= 0 {
		t.Fatalf("expected to be falling, got %v", tr.Position)
	}
}

func TestControllerWalk(t *testing.T) {
	h := newHarness(t)
	addFloor(t, h.w)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	h.tick(1)

	h.input.next.Move = mgl32.Vec2{0, 1}
	h.frame(1.0 / 60)
	h.tick(50)

	tr := getOrFail(t, h.w, p, component.TransformComponent.Kind())
	if d := tr.Position[2] - h.cfg.Speed; d > 0.01 || d < -0.01 {
		t.Fatalf("expected one second of walking to cover %v, got %v", h.cfg.Speed, tr.Position)
	}
	look := getOrFail(t, h.w, p, component.LookComponent.Kind())
	h.frame(10)
	if look.FOV != h.cfg.WalkFOV {
		t.Fatalf("expected walk fov, got %v", look.FOV)
	}
}

func TestControllerKillHeight(t *testing.T) {
	h := newHarness(t)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{0, -9.9, 0})
	tr := getOrFail(t, h.w, p, component.TransformComponent.Kind())
	getOrFail(t, h.w, p, component.MovementStateComponent.Kind()).Tag = component.Airborne

	h.tick(30)
	if h.scenes.reloads != 1 {
		t.Fatalf("expected exactly one reload per crossing, got %d", h.scenes.reloads)
	}

	tr.Position = mgl32.Vec3{0, 0, 0}
	h.tick(1)
	tr.Position = mgl32.Vec3{0, -20, 0}
	h.tick(3)
	if h.scenes.reloads != 2 {
		t.Fatalf("expected a second reload after re-arming, got %d", h.scenes.reloads)
	}
}

func TestControllerReloadRequest(t *testing.T) {
	h := newHarness(t)
	addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	h.input.next.ReloadPressed = true
	h.frame(1.0 / 60)
	h.frame(1.0 / 60)
	if h.scenes.reloads != 1 {
		t.Fatalf("expected one reload, got %d", h.scenes.reloads)
	}
}

func TestControllerInteract(t *testing.T) {
	h := newHarness(t)
	addFloor(t, h.w)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	door := addDoor(t, h.w, mgl32.Vec3{0, 1.6, 2})
	h.tick(1)

	h.frame(1)
	c := getOrFail(t, h.w, p, component.CrosshairComponent.Kind())
	if c.State != component.CrosshairCanInteract || c.Displayed != h.cfg.CrosshairInteract {
		t.Fatalf("expected crosshair to settle on can_interact, got %+v", c)
	}

	h.input.next.InteractPressed = true
	h.frame(1.0 / 60)
	if !getOrFail(t, h.w, door, component.DoorComponent.Kind()).Open {
		t.Fatalf("expected door to open")
	}

	h.tick(1)
	h.frame(1)
	if c.State != component.CrosshairBase {
		t.Fatalf("expected crosshair back to base once the door moved away, got %v", c.State)
	}
}

func TestControllerInteractMiss(t *testing.T) {
	h := newHarness(t)
	addFloor(t, h.w)
	addPlayer(t, h.w, h.cfg, mgl32.Vec3{})
	h.tick(1)

	h.input.next.InteractPressed = true
	h.frame(1.0 / 60)
	if !hasLog(h.hook, "controller: nothing to interact with") {
		t.Fatalf("expected miss to be logged")
	}
}

func TestControllerPhysicsAdapter(t *testing.T) {
	h := newHarness(t)
	addFloor(t, h.w)
	p := addPlayer(t, h.w, h.cfg, mgl32.Vec3{0, 1, 0})

	sched := ecs.NewScheduler(h.ctrl.Physics())
	for i := 0; i < 100; i++ {
		h.w.SetDelta(common.FixedStep)
		sched.Update(h.w)
	}

	st := getOrFail(t, h.w, p, component.MovementStateComponent.Kind())
	tr := getOrFail(t, h.w, p, component.TransformComponent.Kind())
	if st.Tag != component.Grounded || !approx(tr.Position[1], 0) {
		t.Fatalf("expected to settle on the floor, got %v at %v", st.Tag, tr.Position)
	}
}
