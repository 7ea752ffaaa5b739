package common

import (
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

var (
	ErrUnknownLayer  = errors.New("layers: unknown layer")
	ErrTooManyLayers = errors.New("layers: more than 32 layers")
	ErrDuplicate     = errors.New("layers: duplicate layer")
)

// Layer is a single collision layer bit.
type Layer uint32

// LayerMask selects any number of layers.
type LayerMask uint32

const AllLayers LayerMask = ^LayerMask(0)

func (l Layer) Mask() LayerMask {
	return LayerMask(l)
}

func (m LayerMask) Has(l Layer) bool {
	return uint32(m)&uint32(l) != 0
}

func (m LayerMask) With(l Layer) LayerMask {
	return m | LayerMask(l)
}

// Layers maps layer names to bits. Bits are assigned in declaration order.
type Layers struct {
	byName *orderedmap.OrderedMap[string, Layer]
}

func NewLayers(names ...string) (*Layers, error) {
	if len(names) > 32 {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyLayers, len(names))
	}
	byName := orderedmap.NewOrderedMap[string, Layer]()
	for i, name := range names {
		if _, ok := byName.Get(name); ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, name)
		}
		byName.Set(name, Layer(1)<<i)
	}
	return &Layers{byName: byName}, nil
}

func (l *Layers) Layer(name string) (Layer, error) {
	if l == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	layer, ok := l.byName.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return layer, nil
}

func (l *Layers) Mask(names ...string) (LayerMask, error) {
	var mask LayerMask
	for _, name := range names {
		layer, err := l.Layer(name)
		if err != nil {
			return 0, err
		}
		mask = mask.With(layer)
	}
	return mask, nil
}

// Name returns the first registered name for layer, or "" when unknown.
func (l *Layers) Name(layer Layer) string {
	if l == nil {
		return ""
	}
	for el := l.byName.Front(); el != nil; el = el.Next() {
		if el.Value == layer {
			return el.Key
		}
	}
	return ""
}

func (l *Layers) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, l.byName.Len())
	for el := l.byName.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}
