package component

import "image/color"

// Renderable is the flat colour an entity is drawn with in the debug view.
type Renderable struct {
	Color color.NRGBA
}

var RenderableComponent = NewComponent[Renderable]()
