package prefabs

import (
	"fmt"
	"path"
	"strings"
)

// SpawnSpec places the player when a scene loads.
type SpawnSpec struct {
	Position Vec3Spec `yaml:"position"`
	Yaw      float32  `yaml:"yaw"`
	Pitch    float32  `yaml:"pitch"`
}

type SceneSpec struct {
	Name     string            `yaml:"name"`
	Spawn    SpawnSpec         `yaml:"spawn"`
	Entities []EntityBuildSpec `yaml:"entities"`
}

// ScenePath returns the prefab path of the scene called name.
func ScenePath(name string) string {
	name = strings.TrimSuffix(name, ".yaml")
	return path.Join("scenes", name+".yaml")
}

func LoadScene(name string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](ScenePath(name))
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(path.Base(name), ".yaml")
	}
	seen := make(map[string]struct{}, len(spec.Entities))
	for i, e := range spec.Entities {
		if e.Name == "" {
			continue
		}
		if _, ok := seen[e.Name]; ok {
			return nil, fmt.Errorf("prefabs: scene %s: entity %d: duplicate name %q", spec.Name, i, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return &spec, nil
}
