package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/logging"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// Tool. It validates model-supplied arguments against the declared schema
// before execution and normalizes failures into *ToolError with consistent
// codes:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> the wrapped function returned an error
//	(custom codes preserved if the function returns *ToolError directly)
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
	logger      logging.Logger
}

// FunctionToolOptions configures a FunctionTool.
type FunctionToolOptions struct {
	// Logger receives per-invocation diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation.
//
// Example:
//
//	sum := tool.NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args map[string]any) (string, error) {
//	    return fmt.Sprintf("%v", args["a"].(float64)+args["b"].(float64)), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
	optFns ...func(o *FunctionToolOptions),
) *FunctionTool {
	opts := FunctionToolOptions{Logger: logging.NoOpLogger{}}
	for _, optFn := range optFns {
		optFn(&opts)
	}

	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
		logger:      opts.Logger,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct via
// reflection, equivalent to util.CreateSchema(structType).
//
// Example:
//
//	type QuoteArgs struct {
//	  Symbol string `json:"symbol" description:"Ticker symbol"`
//	}
//
//	quote := tool.NewFunctionToolFromStruct(
//	  "get_stock_data", "Fetch stock data for a ticker symbol", QuoteArgs{}, fn,
//	)
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (string, error),
	optFns ...func(o *FunctionToolOptions),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn, optFns...)
}

// Name returns the unique tool name used in function call declarations and
// routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Invoke validates args against the declared schema then calls the wrapped
// function. Failures are wrapped (or passed through) as *ToolError.
func (t *FunctionTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	t.logger.Debug("tool.invoke.start", "tool", t.name)

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		t.logger.Warn("tool.invoke.validation_failed", "tool", t.name, "error", err.Error())

		return "", &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			t.logger.Error("tool.invoke.error", "tool", t.name, "error", toolErr.Message)

			return "", toolErr
		}

		t.logger.Error("tool.invoke.error", "tool", t.name, "error", err.Error())

		return "", &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	t.logger.Info("tool.invoke.success", "tool", t.name)

	return result, nil
}
