package main

import (
	"fmt"
	"path/filepath"

	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/milk9111/fpcontroller/ecs/entity"
	"github.com/milk9111/fpcontroller/ecs/system"
	"github.com/milk9111/fpcontroller/prefabs"
	"github.com/sirupsen/logrus"
)

// maxFixedSteps bounds the physics ticks run in one frame. Time beyond it is
// dropped so a stall does not snowball.
const maxFixedSteps = 5

// session owns the active scene world and the systems that outlive it.
// Reloading swaps the world and resets the systems holding per-entity state.
type session struct {
	log       logrus.FieldLogger
	sceneName string

	layers *common.Layers
	cfg    *component.MovementConfig

	physics    *system.PhysicsSystem
	scripts    *system.ScriptInteractions
	controller *system.PlayerControllerSystem
	fixed      *ecs.Scheduler

	world       *ecs.World
	player      ecs.Entity
	accumulator float32
}

func newSession(sceneName string, input system.InputSource, log logrus.FieldLogger) (*session, error) {
	s := &session{
		log:       log,
		sceneName: sceneName,
		physics:   system.NewPhysicsSystem(log),
	}
	if err := s.reloadConfig(); err != nil {
		return nil, err
	}

	registry := system.NewInteractionRegistry()
	system.RegisterBuiltinInteractions(registry)
	s.scripts = system.NewScriptInteractions(prefabs.LoadScript, registry)

	controller, err := system.NewPlayerControllerSystem(system.PlayerControllerDeps{
		Input:   input,
		Physics: s.physics,
		Scenes:  s,
		Scanner: system.NewInteractionScanner(s.physics, registry),
		Log:     log,
	})
	if err != nil {
		return nil, err
	}
	s.controller = controller
	s.fixed = ecs.NewScheduler(controller.Physics())

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReloadCurrentScene queues a reload for the end of the current frame.
func (s *session) ReloadCurrentScene() {
	if s.world == nil {
		return
	}
	if _, ok := ecs.First(s.world, component.ReloadRequestComponent.Kind()); ok {
		return
	}
	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{Reason: "requested"})
}

func (s *session) reloadConfig() error {
	layers, err := prefabs.LoadLayers()
	if err != nil {
		return fmt.Errorf("load layers: %w", err)
	}
	cfg, err := prefabs.LoadMovementConfig(layers)
	if err != nil {
		return fmt.Errorf("load player config: %w", err)
	}
	s.layers, s.cfg = layers, cfg
	return nil
}

// load builds the scene into a fresh world. The current world stays active
// when anything fails.
func (s *session) load() error {
	scene, err := prefabs.LoadScene(s.sceneName)
	if err != nil {
		return err
	}
	w := ecs.NewWorld()
	player, err := entity.LoadScene(w, scene, s.layers, s.cfg)
	if err != nil {
		return err
	}

	s.physics.Reset()
	s.scripts.Reset()
	s.world = w
	s.player = player
	s.accumulator = 0

	s.log.WithFields(logrus.Fields{
		"scene":    scene.Name,
		"entities": len(ecs.Entities(w)),
	}).Info("scene loaded")
	return nil
}

// step runs one frame of dt seconds: the frame tick once, then as many fixed
// ticks as the accumulated time allows. A queued reload runs last.
func (s *session) step(dt float32) {
	s.world.Advance(dt)
	s.controller.Update(s.world)

	s.accumulator += dt
	steps := 0
	for s.accumulator >= common.FixedStep && steps < maxFixedSteps {
		s.world.SetDelta(common.FixedStep)
		s.fixed.Update(s.world)
		s.accumulator -= common.FixedStep
		steps++
	}
	if steps == maxFixedSteps && s.accumulator >= common.FixedStep {
		s.log.WithField("dropped", s.accumulator).Debug("session: fixed step backlog dropped")
		s.accumulator = 0
	}
	s.world.SetDelta(dt)

	if e, ok := ecs.First(s.world, component.ReloadRequestComponent.Kind()); ok {
		ecs.DestroyEntity(s.world, e)
		if err := s.load(); err != nil {
			s.log.WithError(err).Error("session: reload failed, keeping current scene")
		}
	}
}

// fileChanged reacts to an edited prefab or script. Player and layer specs
// also refresh the movement config.
func (s *session) fileChanged(path string) {
	switch filepath.Base(path) {
	case "player.yaml", "layers.yaml":
		if err := s.reloadConfig(); err != nil {
			s.log.WithError(err).WithField("path", path).Error("session: config reload failed")
			return
		}
	}
	s.log.WithField("path", path).Info("session: prefab changed")
	s.ReloadCurrentScene()
}

// playerComponents returns the player's input and transform when the player
// is alive.
func (s *session) playerComponents() (*component.Input, *component.Transform, *component.Look, bool) {
	in, ok := ecs.Get(s.world, s.player, component.InputComponent.Kind())
	if !ok {
		return nil, nil, nil, false
	}
	t, ok := ecs.Get(s.world, s.player, component.TransformComponent.Kind())
	if !ok {
		return nil, nil, nil, false
	}
	look, ok := ecs.Get(s.world, s.player, component.LookComponent.Kind())
	if !ok {
		return nil, nil, nil, false
	}
	return in, t, look, true
}

// pose returns the player pose as a scene spawn.
func (s *session) pose() (prefabs.SpawnSpec, bool) {
	_, t, look, ok := s.playerComponents()
	if !ok {
		return prefabs.SpawnSpec{}, false
	}
	return prefabs.SpawnSpec{
		Position: prefabs.Vec3Spec(t.Position),
		Yaw:      look.Yaw,
		Pitch:    look.Pitch,
	}, true
}
