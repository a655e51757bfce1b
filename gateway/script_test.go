package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestScript_PlaysStepsInOrder(t *testing.T) {
	s := NewScript(
		Transfer("stock_agent"),
		Call("get_stock_data", `{"symbol":"NVDA"}`),
		Respond("done"),
	)

	d, err := s.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, core.DecisionHandoff, d.Kind)
	assert.Equal(t, "stock_agent", d.Target)

	d, err = s.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, core.DecisionToolCall, d.Kind)
	require.NotNil(t, d.ToolCall)
	assert.Equal(t, "get_stock_data", d.ToolCall.Name)
	assert.NotEmpty(t, d.ToolCall.ID)
	assert.JSONEq(t, `{"symbol":"NVDA"}`, string(d.ToolCall.Arguments))

	d, err = s.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, core.DecisionFinalAnswer, d.Kind)
	assert.Equal(t, "done", d.Answer)

	assert.Equal(t, 3, s.Calls())
}

func TestScript_LastStepRepeats(t *testing.T) {
	s := NewScript(Respond("again"))

	for i := 0; i < 3; i++ {
		d, err := s.Decide(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "again", d.Answer)
	}

	assert.Equal(t, 3, s.Calls())
}

func TestScript_Fail(t *testing.T) {
	cause := errors.New("rate limited")
	s := NewScript(Fail(cause))

	_, err := s.Decide(context.Background(), Request{})
	require.Error(t, err)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "script", gwErr.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestScript_Empty(t *testing.T) {
	s := NewScript()

	_, err := s.Decide(context.Background(), Request{})
	assert.Error(t, err)
}
