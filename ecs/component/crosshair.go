package component

import "image/color"

type CrosshairState uint8

const (
	CrosshairBase CrosshairState = iota
	CrosshairCanInteract
)

func (s CrosshairState) String() string {
	if s == CrosshairCanInteract {
		return "can_interact"
	}
	return "base"
}

// CrosshairTransition is an in-flight colour fade toward Target.
type CrosshairTransition struct {
	From     color.NRGBA
	To       color.NRGBA
	Target   CrosshairState
	Start    float64
	Duration float32
}

// Crosshair keeps the committed State separate from the colour on screen.
// State only changes when a transition completes.
type Crosshair struct {
	State      CrosshairState
	Displayed  color.NRGBA
	Transition *CrosshairTransition
}

var CrosshairComponent = NewComponent[Crosshair]()

type Prompt struct {
	Visible bool
	Text    string
}

var PromptComponent = NewComponent[Prompt]()
