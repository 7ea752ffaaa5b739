package prefabs

import (
	"fmt"

	"github.com/milk9111/fpcontroller/common"
)

type LayersSpec struct {
	Layers []string `yaml:"layers"`
}

// LoadLayers reads layers.yaml. Bits follow declaration order.
func LoadLayers() (*common.Layers, error) {
	spec, err := LoadSpec[LayersSpec]("layers.yaml")
	if err != nil {
		return nil, err
	}
	layers, err := common.NewLayers(spec.Layers...)
	if err != nil {
		return nil, fmt.Errorf("prefabs: layers.yaml: %w", err)
	}
	return layers, nil
}
