package ecs

import "github.com/milk9111/fpcontroller/ecs/component"

// World owns entities, their component stores and the shared event queue.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*sparseSet
	events   EventQueue

	delta   float32
	elapsed float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*sparseSet)}
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Advance moves the world clock forward by dt and makes dt the current delta.
func (w *World) Advance(dt float32) {
	if w == nil {
		return
	}
	w.delta = dt
	w.elapsed += float64(dt)
}

// SetDelta changes the delta seen by systems without moving the clock. Fixed
// steps run inside a frame use it.
func (w *World) SetDelta(dt float32) {
	if w == nil {
		return
	}
	w.delta = dt
}

// Delta is the length in seconds of the tick being processed.
func (w *World) Delta() float32 {
	if w == nil {
		return 0
	}
	return w.delta
}

// Time is the world clock in seconds.
func (w *World) Time() float64 {
	if w == nil {
		return 0
	}
	return w.elapsed
}

func (w *World) store(id component.ComponentID, create bool) *sparseSet {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*sparseSet)
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &sparseSet{}
		w.stores[id] = s
	}
	return s
}
