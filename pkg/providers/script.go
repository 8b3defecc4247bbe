package providers

import (
	"context"
	"fmt"
	"time"

	"go.starlark.net/starlark"

	"github.com/microstack/microstack/pkg/structure"
)

// ScriptSource produces a Starlark build script for a natural-language
// request. The LLM client satisfies this.
type ScriptSource interface {
	GenerateScript(ctx context.Context, prompt string) (string, error)
}

// ScriptProvider synthesizes a build script and executes it in a sandboxed
// Starlark interpreter. The script must assign the finished structure to a
// global named "atoms".
type ScriptProvider struct {
	source  ScriptSource
	timeout time.Duration
}

// NewScriptProvider creates a script provider backed by the given source.
func NewScriptProvider(source ScriptSource, timeout time.Duration) *ScriptProvider {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ScriptProvider{source: source, timeout: timeout}
}

// Name implements Provider.
func (p *ScriptProvider) Name() string { return "script" }

// Generate implements Provider.
func (p *ScriptProvider) Generate(ctx context.Context, req Request) (*structure.Structure, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("script generation requires the original query")
	}
	script, err := p.source.GenerateScript(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("script synthesis failed: %w", err)
	}
	return p.execute(ctx, script)
}

// execute runs the script with a timeout. Evaluation happens on a separate
// goroutine because the interpreter has no context hook of its own.
func (p *ScriptProvider) execute(ctx context.Context, script string) (*structure.Structure, error) {
	evalCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resultCh := make(chan *structure.Structure, 1)
	errCh := make(chan error, 1)

	go func() {
		s, err := executeSync(script)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- s
	}()

	select {
	case <-evalCtx.Done():
		return nil, fmt.Errorf("script execution timeout after %v", p.timeout)
	case err := <-errCh:
		return nil, err
	case s := <-resultCh:
		return s, nil
	}
}

func executeSync(script string) (*structure.Structure, error) {
	thread := &starlark.Thread{
		Name: "microstack",
		Print: func(_ *starlark.Thread, _ string) {
			// Suppress print for security
		},
	}

	predeclared := starlark.StringDict{
		"fcc100":   starlark.NewBuiltin("fcc100", builtinFCC("100")),
		"fcc111":   starlark.NewBuiltin("fcc111", builtinFCC("111")),
		"fcc110":   starlark.NewBuiltin("fcc110", builtinFCC("110")),
		"graphene": starlark.NewBuiltin("graphene", builtinGraphene),
		"mx2":      starlark.NewBuiltin("mx2", builtinMX2),
	}

	globals, err := starlark.ExecFile(thread, "build.star", script, predeclared)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	atoms, ok := globals["atoms"]
	if !ok {
		return nil, fmt.Errorf("script did not assign a global named \"atoms\"")
	}
	sv, ok := atoms.(*atomsValue)
	if !ok {
		return nil, fmt.Errorf("global \"atoms\" has type %s, want a built structure", atoms.Type())
	}
	return sv.s, nil
}

// atomsValue wraps a built structure as an opaque Starlark value.
type atomsValue struct {
	s *structure.Structure
}

func (v *atomsValue) String() string {
	return fmt.Sprintf("<atoms %s>", v.s.Formula())
}
func (v *atomsValue) Type() string          { return "atoms" }
func (v *atomsValue) Freeze()               {}
func (v *atomsValue) Truth() starlark.Bool  { return starlark.Bool(v.s.NumAtoms() > 0) }
func (v *atomsValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: atoms") }

// builtinFCC returns the builder builtin for one fcc face.
func builtinFCC(face string) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var element string
		var nx, ny, layers int
		var a, vacuum starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"element", &element, "nx", &nx, "ny", &ny, "layers", &layers,
			"a?", &a, "vacuum?", &vacuum); err != nil {
			return nil, err
		}

		spec := structure.SurfaceSpec{
			Element: element,
			Face:    face,
			Size:    [3]int{nx, ny, layers},
		}
		var err error
		if spec.LatticeConstant, err = floatArg(a, 0); err != nil {
			return nil, fmt.Errorf("%s: a: %w", b.Name(), err)
		}
		if spec.Vacuum, err = floatArg(vacuum, 10); err != nil {
			return nil, fmt.Errorf("%s: vacuum: %w", b.Name(), err)
		}

		s, err := structure.BuildSurface(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		return &atomsValue{s: s}, nil
	}
}

func builtinGraphene(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var nx, ny int
	var vacuum starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"nx", &nx, "ny", &ny, "vacuum?", &vacuum); err != nil {
		return nil, err
	}
	vac, err := floatArg(vacuum, 10)
	if err != nil {
		return nil, fmt.Errorf("graphene: vacuum: %w", err)
	}
	s, err := structure.BuildSurface(structure.SurfaceSpec{
		Element: "C", Face: "graphene", Size: [3]int{nx, ny, 1}, Vacuum: vac,
	})
	if err != nil {
		return nil, fmt.Errorf("graphene: %w", err)
	}
	return &atomsValue{s: s}, nil
}

func builtinMX2(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var formula string
	var nx, ny int
	var vacuum starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"formula", &formula, "nx", &nx, "ny", &ny, "vacuum?", &vacuum); err != nil {
		return nil, err
	}
	vac, err := floatArg(vacuum, 10)
	if err != nil {
		return nil, fmt.Errorf("mx2: vacuum: %w", err)
	}
	s, err := structure.BuildSurface(structure.SurfaceSpec{
		Element: formula, Face: "2d", Size: [3]int{nx, ny, 1}, Vacuum: vac,
	})
	if err != nil {
		return nil, fmt.Errorf("mx2: %w", err)
	}
	return &atomsValue{s: s}, nil
}

// floatArg converts an optional numeric argument, applying the default when
// the argument was not supplied.
func floatArg(v starlark.Value, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case starlark.Float:
		return float64(val), nil
	case starlark.Int:
		f, _ := starlark.AsFloat(val)
		return f, nil
	case starlark.NoneType:
		return def, nil
	default:
		return 0, fmt.Errorf("want a number, got %s", v.Type())
	}
}
