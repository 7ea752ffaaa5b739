package component

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

type InteractKind uint8

const (
	InteractDoor InteractKind = iota + 1
	InteractPickup
	InteractColorBox
	InteractScript
)

func (k InteractKind) String() string {
	switch k {
	case InteractDoor:
		return "door"
	case InteractPickup:
		return "pickup"
	case InteractColorBox:
		return "color_box"
	case InteractScript:
		return "script"
	}
	return "unknown"
}

// Interactable marks an entity the player can act on. The behaviour is
// resolved from Kind.
type Interactable struct {
	Kind   InteractKind
	Prompt string
}

var InteractableComponent = NewComponent[Interactable]()

// InteractionTarget is the interactable under the view this tick, if any.
type InteractionTarget struct {
	Entity uint64
	Valid  bool
}

var InteractionTargetComponent = NewComponent[InteractionTarget]()

// Door slides between its closed and open positions.
type Door struct {
	Open         bool
	ClosedPos    mgl32.Vec3
	OpenPos      mgl32.Vec3
	OpenPrompt   string
	ClosedPrompt string
}

var DoorComponent = NewComponent[Door]()

type PickupState uint8

const (
	PickupResting PickupState = iota
	PickupCarried
	PickupThrown
)

// Pickup can be carried in front of the view and thrown.
type Pickup struct {
	State       PickupState
	Carrier     uint64
	CarryPrompt string
	restPrompt  string
}

// SwapPrompt exchanges the interactable prompt between the resting and the
// carried text.
func (p *Pickup) SwapPrompt(it *Interactable) {
	if it == nil {
		return
	}
	if p.State == PickupCarried {
		p.restPrompt = it.Prompt
		if p.CarryPrompt != "" {
			it.Prompt = p.CarryPrompt
		}
		return
	}
	if p.restPrompt != "" {
		it.Prompt = p.restPrompt
	}
}

var PickupComponent = NewComponent[Pickup]()

// ColorBox cycles through Palette each interaction.
type ColorBox struct {
	Palette []color.NRGBA
	Index   int
}

var ColorBoxComponent = NewComponent[ColorBox]()

// Script runs the interact function of a tengo script.
type Script struct {
	Path string
}

var ScriptComponent = NewComponent[Script]()
