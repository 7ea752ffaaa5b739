package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fpcontroller/ecs/component"
)

const (
	stickDeadzone = 0.2
	// stickLookScale converts a fully deflected right stick into the mouse
	// pixels it stands in for each frame.
	stickLookScale = 12
)

// ebitenInput samples keyboard, mouse and the first gamepad. Mouse look is the
// cursor motion since the previous poll.
type ebitenInput struct {
	lastX, lastY int
	primed       bool
	// captured is false while the cursor is released; look input is ignored.
	captured bool
}

func newEbitenInput() *ebitenInput {
	return &ebitenInput{captured: true}
}

// SetCaptured tells the sampler whether the cursor is currently captured.
func (i *ebitenInput) SetCaptured(captured bool) {
	i.captured = captured
	i.primed = false
}

func (i *ebitenInput) Poll(in *component.Input) {
	if in == nil {
		return
	}

	var move mgl32.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		move[0] -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		move[0] += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		move[1] += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		move[1] -= 1
	}

	jumpPressed := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	sprint := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	crouchPressed := inpututil.IsKeyJustPressed(ebiten.KeyC) || inpututil.IsKeyJustPressed(ebiten.KeyControlLeft)
	interactPressed := inpututil.IsKeyJustPressed(ebiten.KeyE) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)

	var look mgl32.Vec2
	x, y := ebiten.CursorPosition()
	if i.captured && i.primed {
		// screen y grows downward, look y grows upward
		look = mgl32.Vec2{float32(x - i.lastX), float32(i.lastY - y)}
	}
	i.lastX, i.lastY = x, y
	i.primed = true

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			move = mgl32.Vec2{float32(lx), float32(-ly)}
		}

		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			look = look.Add(mgl32.Vec2{float32(rx), float32(-ry)}.Mul(stickLookScale))
		}

		jumpPressed = jumpPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		sprint = sprint || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftStick)
		crouchPressed = crouchPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightRight)
		interactPressed = interactPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
	}

	if move.Len() > 1 {
		move = move.Normalize()
	}

	in.Move = move
	in.Look = look
	in.JumpPressed = jumpPressed
	in.SprintHeld = sprint
	in.CrouchPressed = crouchPressed
	in.InteractPressed = interactPressed
	in.ReloadPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	in.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF3)
	in.SnapshotPressed = inpututil.IsKeyJustPressed(ebiten.KeyF6)
}
