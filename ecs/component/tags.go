package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// Name labels scene objects in logs and the debug view.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
