package component

// GroundProbe is the last ground distance measured under a body.
type GroundProbe struct {
	Distance float32
	Hit      bool
}

var GroundProbeComponent = NewComponent[GroundProbe]()
