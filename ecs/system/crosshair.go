package system

import (
	"image/color"

	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
)

func crosshairColor(cfg *component.MovementConfig, state component.CrosshairState) color.NRGBA {
	if state == component.CrosshairCanInteract {
		return cfg.CrosshairInteract
	}
	return cfg.CrosshairBase
}

// SetCrosshairState starts a fade of c toward target. It returns false when
// nothing changed: target is already the committed state with no fade
// running, or the running fade already heads there. A fade toward another
// state is replaced and the new one starts from the colour on screen.
func SetCrosshairState(c *component.Crosshair, cfg *component.MovementConfig, target component.CrosshairState, now float64) bool {
	if c.Transition == nil && c.State == target {
		return false
	}
	if c.Transition != nil && c.Transition.Target == target {
		return false
	}

	c.Transition = &component.CrosshairTransition{
		From:     c.Displayed,
		To:       crosshairColor(cfg, target),
		Target:   target,
		Start:    now,
		Duration: cfg.CrosshairFade,
	}
	return true
}

// AdvanceCrosshair moves the displayed colour along the running fade and
// commits the target state once the fade has elapsed.
func AdvanceCrosshair(c *component.Crosshair, now float64) {
	tr := c.Transition
	if tr == nil {
		return
	}
	t := float32(1)
	if tr.Duration > 0 {
		t = common.Clamp01(float32(now-tr.Start) / tr.Duration)
	}
	c.Displayed = common.LerpColor(tr.From, tr.To, t)
	if t >= 1 {
		c.State = tr.Target
		c.Transition = nil
	}
}

// CrosshairSystem polls the crosshair fade every frame.
type CrosshairSystem struct{}

func NewCrosshairSystem() *CrosshairSystem {
	return &CrosshairSystem{}
}

func (s *CrosshairSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	now := w.Time()
	ecs.ForEach(w, component.CrosshairComponent.Kind(), func(_ ecs.Entity, c *component.Crosshair) {
		AdvanceCrosshair(c, now)
	})
}
