package toolset

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kimi-cli/kimi/pkg/approval"
	"github.com/kimi-cli/kimi/pkg/tooling"
	"github.com/kimi-cli/kimi/pkg/wire"
)

// Dependencies carries everything a tool factory may need. Factories declare
// what they use by reading fields; a nil field a factory requires is a
// MissingDependencyError at load time rather than a nil dereference later.
type Dependencies struct {
	Approval *approval.Gate
	Wire     *wire.Wire
	WorkDir  string
}

// Factory constructs a tool from its dependencies. Returning ErrSkipTool
// omits the tool without failing the load.
type Factory func(deps *Dependencies) (tooling.Tool, error)

// ErrSkipTool marks a tool as not applicable in the current environment.
var ErrSkipTool = errors.New("tool not applicable")

// MissingDependencyError is returned by a factory whose required dependency
// was not provided. It aborts the load immediately: a half-wired toolset is
// worse than no toolset.
type MissingDependencyError struct {
	Tool       string
	Dependency string
}

func (e MissingDependencyError) Error() string {
	return fmt.Sprintf("tool %q requires dependency %q which was not provided", e.Tool, e.Dependency)
}

// InvalidToolsError aggregates every requested tool path that matched no
// registered factory. All paths are checked before reporting so the user
// sees the full list at once.
type InvalidToolsError struct {
	Paths []string
}

func (e InvalidToolsError) Error() string {
	return fmt.Sprintf("unknown tools: %s", strings.Join(e.Paths, ", "))
}

var factories = map[string]Factory{}

// RegisterFactory makes a tool constructible by name through LoadTools.
// Typically called from a tool package's init.
func RegisterFactory(name string, factory Factory) {
	factories[name] = factory
}

// LoadTools resolves each named tool through its registered factory and adds
// the results to the toolset. A missing dependency fails fast; unknown names
// are collected and reported together after all valid tools have loaded.
func (s *Toolset) LoadTools(paths []string, deps *Dependencies) error {
	if deps == nil {
		deps = &Dependencies{}
	}
	var invalid []string
	for _, path := range paths {
		factory, ok := factories[path]
		if !ok {
			invalid = append(invalid, path)
			continue
		}
		tool, err := factory(deps)
		if errors.Is(err, ErrSkipTool) {
			slog.Debug("Skipping tool", "tool", path)
			continue
		}
		var missing MissingDependencyError
		if errors.As(err, &missing) {
			return missing
		}
		if err != nil {
			return fmt.Errorf("loading tool %q: %w", path, err)
		}
		s.Add(tool)
	}
	if len(invalid) > 0 {
		return InvalidToolsError{Paths: invalid}
	}
	return nil
}
