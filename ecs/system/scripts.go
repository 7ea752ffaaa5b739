package system

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
)

// ScriptLoader returns the source of the script at path.
type ScriptLoader func(path string) ([]byte, error)

const scriptDispatch = `
if __phase == "interact" {
	interact(__engine, __state)
}
`

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// ScriptInteractions runs the interact function of tengo scripts attached to
// entities. Each entity keeps its own compiled script and state map.
type ScriptInteractions struct {
	load     ScriptLoader
	registry *InteractionRegistry
	cache    map[ecs.Entity]*scriptRuntime
	// running holds the entities whose script is mid-run. A compiled script
	// cannot be re-entered, so triggers back into one of them are refused.
	running map[ecs.Entity]bool
}

var errScriptRunning = errors.New("script: already running")

func NewScriptInteractions(load ScriptLoader, registry *InteractionRegistry) *ScriptInteractions {
	s := &ScriptInteractions{
		load:     load,
		registry: registry,
		cache:    make(map[ecs.Entity]*scriptRuntime),
		running:  make(map[ecs.Entity]bool),
	}
	registry.Register(component.InteractScript, s.Interact)
	return s
}

// Reset forgets every compiled script and its state.
func (s *ScriptInteractions) Reset() {
	if s == nil {
		return
	}
	s.cache = make(map[ecs.Entity]*scriptRuntime)
	s.running = make(map[ecs.Entity]bool)
}

func (s *ScriptInteractions) Interact(ctx InteractionContext) error {
	spec, ok := ecs.Get(ctx.World, ctx.Target, component.ScriptComponent.Kind())
	if !ok {
		return errMissingState
	}
	if s.running[ctx.Target] {
		return fmt.Errorf("script %s: %w", spec.Path, errScriptRunning)
	}
	rt, err := s.runtime(ctx.Target, spec.Path)
	if err != nil {
		return err
	}
	s.running[ctx.Target] = true
	defer delete(s.running, ctx.Target)
	if err := rt.compiled.Set("__phase", "interact"); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", s.engine(ctx)); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Run(); err != nil {
		return fmt.Errorf("script %s: %w", spec.Path, err)
	}
	return nil
}

func (s *ScriptInteractions) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("script: empty path")
	}
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt, nil
	}
	if s.load == nil {
		return nil, fmt.Errorf("script %s: %w", path, ErrMissingCollaborator)
	}

	src, err := s.load(path)
	if err != nil {
		return nil, err
	}
	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	rt := &scriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.cache[e] = rt
	return rt, nil
}

func (s *ScriptInteractions) engine(ctx InteractionContext) *tengo.ImmutableMap {
	w, self := ctx.World, ctx.Target
	values := map[string]tengo.Object{}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			if str, ok := tengo.ToString(arg); ok {
				parts = append(parts, str)
			}
		}
		ctx.Log.WithField("entity", self).Info(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["set_prompt"] = &tengo.UserFunction{Name: "set_prompt", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		text, _ := tengo.ToString(args[0])
		it, ok := ecs.Get(w, self, component.InteractableComponent.Kind())
		if !ok {
			return tengo.FalseValue, nil
		}
		it.Prompt = text
		return tengo.TrueValue, nil
	}}

	values["set_color"] = &tengo.UserFunction{Name: "set_color", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 || len(args) > 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		c := [4]uint8{0, 0, 0, 255}
		for i, arg := range args {
			v, ok := tengo.ToInt(arg)
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "channel", Expected: "int", Found: arg.TypeName()}
			}
			c[i] = uint8(max(0, min(255, v)))
		}
		r, ok := ecs.Get(w, self, component.RenderableComponent.Kind())
		if !ok {
			return tengo.FalseValue, nil
		}
		r.Color = color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
		return tengo.TrueValue, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		out := &tengo.Array{Value: []tengo.Object{&tengo.Float{}, &tengo.Float{}, &tengo.Float{}}}
		if t, ok := ecs.Get(w, self, component.TransformComponent.Kind()); ok {
			for i := 0; i < 3; i++ {
				out.Value[i] = &tengo.Float{Value: float64(t.Position[i])}
			}
		}
		return out, nil
	}}

	values["trigger"] = &tengo.UserFunction{Name: "trigger", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		name, _ := tengo.ToString(args[0])
		target, ok := FindByName(w, name)
		if !ok || target == self {
			return tengo.FalseValue, nil
		}
		if s.running[target] {
			ctx.Log.WithField("entity", self).WithField("target", name).Warn("script trigger cycle skipped")
			return tengo.FalseValue, nil
		}
		if err := s.registry.Dispatch(w, ctx.Actor, target, ctx.Log); err != nil {
			ctx.Log.WithError(err).WithField("target", name).Warn("script trigger failed")
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// FindByName returns the first entity named name.
func FindByName(w *ecs.World, name string) (ecs.Entity, bool) {
	var (
		found ecs.Entity
		ok    bool
	)
	ecs.ForEach(w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if !ok && n.Value == name {
			found, ok = e, true
		}
	})
	return found, ok
}
