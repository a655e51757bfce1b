package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

func testTools(t *testing.T, names ...string) *tool.Registry {
	t.Helper()

	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, tool.NewFunctionTool(name, "Test tool "+name, map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, func(_ context.Context, _ map[string]any) (string, error) {
			return "ok", nil
		}))
	}

	reg, err := tool.NewRegistry(tools...)
	require.NoError(t, err)

	return reg
}

func TestNewRegistry(t *testing.T) {
	tools := testTools(t, "get_stock_data")

	reg, err := NewRegistry(tools,
		Definition{
			Name:         "triage",
			Description:  "Routes requests to specialists",
			Instructions: "Decide which specialist should handle the request.",
			Handoffs:     []string{"stock_agent"},
		},
		Definition{
			Name:         "stock_agent",
			Description:  "Answers stock questions",
			Instructions: "Use the stock data tool to answer.",
			Tools:        []string{"get_stock_data"},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"triage", "stock_agent"}, reg.Names())

	triage, ok := reg.Get("triage")
	require.True(t, ok)
	assert.True(t, triage.AllowsHandoff("stock_agent"))
	assert.False(t, triage.AllowsHandoff("triage"))
	assert.Empty(t, triage.ToolDescriptors())

	stock, ok := reg.Get("stock_agent")
	require.True(t, ok)
	assert.False(t, stock.AllowsHandoff("triage"))

	_, ok = stock.Tool("get_stock_data")
	assert.True(t, ok)

	descs := stock.ToolDescriptors()
	require.Len(t, descs, 1)
	assert.Equal(t, "get_stock_data", descs[0].Name)

	handoffs := reg.HandoffDescriptors(triage)
	require.Len(t, handoffs, 1)
	assert.Equal(t, "stock_agent", handoffs[0].Name)
	assert.Equal(t, "Answers stock questions", handoffs[0].Description)
}

func TestNewRegistry_HandoffCycle(t *testing.T) {
	tools := testTools(t)

	// Mutual handoffs are a valid topology; the step cap bounds traversal.
	reg, err := NewRegistry(tools,
		Definition{Name: "a", Instructions: "Agent a", Handoffs: []string{"b"}},
		Definition{Name: "b", Instructions: "Agent b", Handoffs: []string{"a"}},
	)
	require.NoError(t, err)

	a, _ := reg.Get("a")
	b, _ := reg.Get("b")
	assert.True(t, a.AllowsHandoff("b"))
	assert.True(t, b.AllowsHandoff("a"))
}

func TestNewRegistry_DuplicateAgent(t *testing.T) {
	tools := testTools(t)

	_, err := NewRegistry(tools,
		Definition{Name: "dup", Instructions: "First"},
		Definition{Name: "dup", Instructions: "Second"},
	)
	require.Error(t, err)

	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "dup", cfgErr.Name)
}

func TestNewRegistry_UnknownTool(t *testing.T) {
	tools := testTools(t)

	_, err := NewRegistry(tools,
		Definition{Name: "a", Instructions: "Agent a", Tools: []string{"missing_tool"}},
	)
	require.Error(t, err)

	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "missing_tool")
}

func TestNewRegistry_UnknownHandoffTarget(t *testing.T) {
	tools := testTools(t)

	_, err := NewRegistry(tools,
		Definition{Name: "a", Instructions: "Agent a", Handoffs: []string{"ghost"}},
	)
	require.Error(t, err)

	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "ghost")
}
