package main

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	// mapScale is the pixels per metre of the top-down view.
	mapScale      = 24
	crosshairSize = 8
)

var skyColor = color.NRGBA{R: 0x1b, G: 0x1f, B: 0x2a, A: 0xff}

// HUD draws the prompt, the crosshair and a top-down view of the scene
// around the player. The debug overlay is drawn on top when enabled.
type HUD struct {
	ui     *ebitenui.UI
	prompt *widget.Text
}

func NewHUD() *HUD {
	// Create a text.Face from the built-in basic font so we can show labels
	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	prompt := widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	// Keep the prompt a little below the crosshair.
	panel := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&widget.Insets{Bottom: 120}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionEnd}),
		),
	)
	panel.AddChild(prompt)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &HUD{
		ui:     &ebitenui.UI{Container: root},
		prompt: prompt,
	}
}

// Update copies the player's prompt into the label.
func (h *HUD) Update(w *ecs.World, player ecs.Entity) {
	label := ""
	if p, ok := ecs.Get(w, player, component.PromptComponent.Kind()); ok && p.Visible {
		label = p.Text
	}
	h.prompt.Label = label
	h.ui.Update()
}

func (h *HUD) Draw(screen *ebiten.Image, w *ecs.World, player ecs.Entity, debug bool) {
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	drawMap(screen, w, player, t.Position)

	if c, ok := ecs.Get(w, player, component.CrosshairComponent.Kind()); ok {
		drawCrosshair(screen, c.Displayed)
	}

	h.ui.Draw(screen)

	if debug {
		drawDebug(screen, w, player)
	}
}

func drawCrosshair(screen *ebiten.Image, c color.NRGBA) {
	cx := float32(screen.Bounds().Dx()) / 2
	cy := float32(screen.Bounds().Dy()) / 2
	vector.StrokeLine(screen, cx-crosshairSize, cy, cx+crosshairSize, cy, 2, c, true)
	vector.StrokeLine(screen, cx, cy-crosshairSize, cx, cy+crosshairSize, 2, c, true)
}

// drawMap renders colliders seen from above, centred on origin with +Z up
// the screen. Lower boxes are drawn first.
func drawMap(screen *ebiten.Image, w *ecs.World, player ecs.Entity, origin [3]float32) {
	cx := float32(screen.Bounds().Dx()) / 2
	cy := float32(screen.Bounds().Dy()) / 2

	type box struct {
		x, y, wdt, hgt float32
		top            float32
		fill           color.Color
	}
	var boxes []box
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		if e == player {
			return
		}
		b := c.Bounds(t.Position)
		fill := color.Color(colornames.Dimgray)
		if r, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
			fill = r.Color
		}
		boxes = append(boxes, box{
			x:    cx + (b.Min()[0]-origin[0])*mapScale,
			y:    cy - (b.Max()[2]-origin[2])*mapScale,
			wdt:  (b.Max()[0] - b.Min()[0]) * mapScale,
			hgt:  (b.Max()[2] - b.Min()[2]) * mapScale,
			top:  b.Max()[1],
			fill: fill,
		})
	})
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].top < boxes[j].top })

	for _, b := range boxes {
		vector.FillRect(screen, b.x, b.y, b.wdt, b.hgt, b.fill, false)
		vector.StrokeRect(screen, b.x, b.y, b.wdt, b.hgt, 1.0, colornames.Black, false)
	}

	c, ok := ecs.Get(w, player, component.ColliderComponent.Kind())
	if !ok {
		return
	}
	half := c.HalfExtents
	vector.FillRect(screen, cx-half[0]*mapScale, cy-half[2]*mapScale, 2*half[0]*mapScale, 2*half[2]*mapScale, colornames.Crimson, false)

	if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
		f := common.FacingForward(t.Rotation)
		vector.StrokeLine(screen, cx, cy, cx+f[0]*mapScale, cy-f[2]*mapScale, 3, colornames.Lightgrey, true)
	}
}

func drawDebug(screen *ebiten.Image, w *ecs.World, player ecs.Entity) {
	st, _ := ecs.Get(w, player, component.MovementStateComponent.Kind())
	rb, _ := ecs.Get(w, player, component.RigidBodyComponent.Kind())
	look, _ := ecs.Get(w, player, component.LookComponent.Kind())
	probe, _ := ecs.Get(w, player, component.GroundProbeComponent.Kind())
	t, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	if st == nil || rb == nil || look == nil || t == nil {
		return
	}

	ground := "none"
	if probe != nil && probe.Hit {
		ground = fmt.Sprintf("%.2f", probe.Distance)
	}
	text := fmt.Sprintf(
		"FPS: %.1f  TPS: %.1f\nstate: %s  crouched: %v\npos: %.2f %.2f %.2f\nspeed: %.2f  vy: %.2f\nyaw: %.1f  pitch: %.1f  fov: %.1f\nground: %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		st.Tag, st.Crouched,
		t.Position[0], t.Position[1], t.Position[2],
		common.Horizontal(rb.Velocity).Len(), rb.Velocity[1],
		look.Yaw, look.Pitch, look.FOV,
		ground,
	)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}
