package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec is one scene object: a name plus raw component specs keyed
// by component name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Position Vec3Spec `yaml:"position"`
	Yaw      float32  `yaml:"yaw"`
}

// ColliderComponentSpec sizes the box by its full extents.
type ColliderComponentSpec struct {
	Size   Vec3Spec `yaml:"size"`
	Offset Vec3Spec `yaml:"offset"`
	Layer  string   `yaml:"layer"`
	Solid  *bool    `yaml:"solid"`
}

type RigidBodyComponentSpec struct {
	Mass      float32  `yaml:"mass"`
	Gravity   *bool    `yaml:"gravity"`
	Kinematic bool     `yaml:"kinematic"`
	Collides  []string `yaml:"collides"`
	Friction  float32  `yaml:"friction"`
}

type RenderableComponentSpec struct {
	Color YAMLColor `yaml:"color"`
}

type InteractableComponentSpec struct {
	Kind   string `yaml:"kind"`
	Prompt string `yaml:"prompt"`
}

type DoorComponentSpec struct {
	OpenOffset   Vec3Spec `yaml:"open_offset"`
	OpenPrompt   string   `yaml:"open_prompt"`
	ClosedPrompt string   `yaml:"closed_prompt"`
	Open         bool     `yaml:"open"`
}

type PickupComponentSpec struct {
	CarryPrompt string `yaml:"carry_prompt"`
}

type ColorBoxComponentSpec struct {
	Palette []YAMLColor `yaml:"palette"`
}

type ScriptComponentSpec struct {
	Path string `yaml:"path"`
}
