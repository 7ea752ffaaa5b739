package component

// ReloadRequest is a marker component used to signal the game loop to reload
// the current scene. Systems create a short-lived entity with this component.
type ReloadRequest struct {
	Reason string
}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
