package ecs

// EventQueue is a FIFO of typed events shared by the systems of a world.
type EventQueue struct {
	items []any
}

// Push adds an event.
func (q *EventQueue) Push(evt any) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len reports the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Clear drops every queued event.
func (q *EventQueue) Clear() {
	if q == nil {
		return
	}
	q.items = nil
}

// Publish queues evt on the world event queue.
func Publish[T any](w *World, evt T) {
	w.Events().Push(evt)
}

// Drain removes and returns every queued event of type T in order, leaving
// events of other types queued.
func Drain[T any](w *World) []T {
	q := w.Events()
	if q == nil || len(q.items) == 0 {
		return nil
	}
	var out []T
	kept := q.items[:0]
	for _, item := range q.items {
		if evt, ok := item.(T); ok {
			out = append(out, evt)
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return out
}
