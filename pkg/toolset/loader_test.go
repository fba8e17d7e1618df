package toolset

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kimi-cli/kimi/pkg/message"
	"github.com/kimi-cli/kimi/pkg/tooling"
)

func TestLoadTools(t *testing.T) {
	RegisterFactory("t_greet", func(deps *Dependencies) (tooling.Tool, error) {
		return &tooling.Func{
			ToolName: "greet",
			Fn: func(_ context.Context, _ *message.ToolCall, _ json.RawMessage) (tooling.ReturnValue, error) {
				return tooling.OkText("hi from " + deps.WorkDir), nil
			},
		}, nil
	})

	ts := New()
	require.NoError(t, ts.LoadTools([]string{"t_greet"}, &Dependencies{WorkDir: "/tmp/w"}))

	result := <-ts.Handle(t.Context(), call("c1", "greet", "{}"))
	require.Equal(t, message.Parts{message.NewTextPart("hi from /tmp/w")}, result.ReturnValue.(tooling.Ok).Output)
}

func TestLoadToolsSkip(t *testing.T) {
	RegisterFactory("t_skipped", func(*Dependencies) (tooling.Tool, error) {
		return nil, ErrSkipTool
	})

	ts := New()
	require.NoError(t, ts.LoadTools([]string{"t_skipped"}, nil))
	require.Empty(t, ts.Descriptors())
}

func TestLoadToolsMissingDependencyFailsFast(t *testing.T) {
	RegisterFactory("t_needy", func(deps *Dependencies) (tooling.Tool, error) {
		if deps.Approval == nil {
			return nil, MissingDependencyError{Tool: "needy", Dependency: "approval"}
		}
		return echoTool("needy"), nil
	})

	ts := New()
	err := ts.LoadTools([]string{"t_needy"}, nil)
	var missing MissingDependencyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "approval", missing.Dependency)
}

func TestLoadToolsUnknownPathsAggregated(t *testing.T) {
	RegisterFactory("t_known", func(*Dependencies) (tooling.Tool, error) {
		return echoTool("known"), nil
	})

	ts := New()
	err := ts.LoadTools([]string{"t_nope1", "t_known", "t_nope2"}, nil)
	var invalid InvalidToolsError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []string{"t_nope1", "t_nope2"}, invalid.Paths)

	// Valid tools load even when some requested names are unknown.
	result := <-ts.Handle(t.Context(), call("c1", "known", "{}"))
	require.IsType(t, tooling.Ok{}, result.ReturnValue)
}
