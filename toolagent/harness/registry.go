package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/armon/go-radix"
)

// ToolFunc is the invocable behind a registered tool. Arguments are passed by
// parameter name.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// ParameterSpec maps parameter names to a human readable type and meaning,
// e.g. "latitude" -> "float - The latitude of the location.".
type ParameterSpec map[string]string

// ToolDescriptor is one registry entry.
type ToolDescriptor struct {
	Name        string
	Func        ToolFunc
	Description string
	Parameters  ParameterSpec
}

// ToolSummary is the manifest entry advertised to the model.
type ToolSummary struct {
	Description string        `json:"description"`
	Parameters  ParameterSpec `json:"parameters"`
}

// Registry maps tool names to descriptors. It is populated at startup and
// read by the decision and execution phases.
type Registry struct {
	mu    sync.RWMutex
	tools *radix.Tree
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: radix.New()}
}

// Register inserts or overwrites the descriptor for name. The parameter spec
// is stored as given.
func (r *Registry) Register(name string, fn ToolFunc, description string, params ParameterSpec) {
	if params == nil {
		params = ParameterSpec{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools.Insert(name, &ToolDescriptor{
		Name:        name,
		Func:        fn,
		Description: description,
		Parameters:  params,
	})
}

// RegisterTool registers a ports.Tool under its spec name.
func (r *Registry) RegisterTool(t ports.Tool) {
	spec := t.Spec()
	r.Register(spec.Name, t.Invoke, spec.Description, ParameterSpec(spec.Parameters))
}

// DescriptionForPrompt returns every registered tool with its description and
// parameter spec. Callables are not part of the manifest.
func (r *Registry) DescriptionForPrompt() map[string]ToolSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ToolSummary, r.tools.Len())
	r.tools.Walk(func(name string, v any) bool {
		d := v.(*ToolDescriptor)
		out[name] = ToolSummary{Description: d.Description, Parameters: d.Parameters}
		return false
	})
	return out
}

// Callable returns the function registered under name.
func (r *Registry) Callable(name string) (ToolFunc, bool) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	return d.Func, true
}

// Lookup returns the full descriptor registered under name.
func (r *Registry) Lookup(name string) (*ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.tools.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*ToolDescriptor), true
}

// Names returns the registered tool names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, r.tools.Len())
	r.tools.Walk(func(name string, _ any) bool {
		names = append(names, name)
		return false
	})
	return names
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools.Len()
}

// bindArguments checks args against the declared parameter names, the same
// way a keyword call would: every declared parameter must be present and no
// undeclared one may appear.
func bindArguments(d *ToolDescriptor, args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}

	var unexpected []string
	for name := range args {
		if _, ok := d.Parameters[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, fmt.Errorf("%s() got an unexpected keyword argument '%s'", d.Name, unexpected[0])
	}

	var missing []string
	for name := range d.Parameters {
		if _, ok := args[name]; !ok {
			missing = append(missing, "'"+name+"'")
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%s() missing %d required argument(s): %s", d.Name, len(missing), strings.Join(missing, ", "))
	}

	return args, nil
}
