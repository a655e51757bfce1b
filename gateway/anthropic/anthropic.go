// Package anthropic implements gateway.Gateway using the Anthropic Messages
// API with tool use.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gateway"
)

// Options configure the Anthropic gateway (model id, temperature, max
// tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Gateway wraps the Anthropic Messages API behind gateway.Gateway.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewFromClient creates an Anthropic gateway from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Decide implements gateway.Gateway with a single non-streaming message.
func (g *Gateway) Decide(ctx context.Context, req gateway.Request) (core.Decision, error) {
	params := anthropic.MessageNewParams{
		Model:       g.opts.Model,
		Messages:    buildMessages(req),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
	}

	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}

	if tools := buildTools(req); len(tools) > 0 {
		params.Tools = tools
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return core.Decision{}, gateway.NewError("anthropic", err)
	}

	return decisionFromBlocks(resp.Content)
}

// buildMessages converts the runtime history into Anthropic messages.
// Assistant tool-call records become tool_use blocks; the following tool
// result entry becomes a user message carrying the matching tool_result
// block, as the Messages API requires.
func buildMessages(req gateway.Request) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, entry := range req.History {
		switch entry.Role {
		case core.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(entry.Content)))
		case core.RoleAssistant:
			if entry.ToolCall == nil {
				messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(entry.Content)))
				continue
			}
			var input any
			if len(entry.ToolCall.Arguments) > 0 {
				if err := json.Unmarshal(entry.ToolCall.Arguments, &input); err != nil {
					input = string(entry.ToolCall.Arguments)
				}
			}
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewToolUseBlock(entry.ToolCall.ID, input, entry.ToolCall.Name),
			))
		case core.RoleTool:
			if entry.ToolResult == nil {
				continue
			}
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(entry.ToolResult.ID, entry.Content, entry.IsToolError()),
			))
		case core.RoleHandoff:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(entry.Content)))
		}
	}

	return messages
}

func buildTools(req gateway.Request) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools)+1)

	for _, td := range req.Tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if td.Parameters != nil {
			if properties, ok := td.Parameters["properties"]; ok {
				schema.Properties = properties
			}
			schema.Required = requiredAsStrings(td.Parameters["required"])
		}
		tools = append(tools, anthropic.ToolUnionParamOfTool(schema, td.Name))
	}

	if len(req.Handoffs) > 0 {
		names := make([]string, 0, len(req.Handoffs))
		for _, h := range req.Handoffs {
			names = append(names, h.Name)
		}
		schema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
			Properties: map[string]any{
				"agent": map[string]any{
					"type":        "string",
					"description": "Target agent name",
					"enum":        names,
				},
			},
			Required: []string{"agent"},
		}
		tools = append(tools, anthropic.ToolUnionParamOfTool(schema, gateway.TransferFunctionName))
	}

	return tools
}

func requiredAsStrings(required any) []string {
	switch req := required.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func decisionFromBlocks(blocks []anthropic.ContentBlockUnion) (core.Decision, error) {
	var text string

	for _, block := range blocks {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := json.RawMessage("{}")
			if toolBlock.Input != nil {
				if raw, err := json.Marshal(toolBlock.Input); err == nil {
					args = raw
				}
			}
			if toolBlock.Name == gateway.TransferFunctionName {
				var transfer struct {
					Agent string `json:"agent"`
				}
				if err := json.Unmarshal(args, &transfer); err != nil {
					return core.Decision{}, gateway.NewError("anthropic", fmt.Errorf("malformed transfer arguments: %w", err))
				}
				return core.HandoffTo(transfer.Agent), nil
			}
			return core.CallTool(toolBlock.ID, toolBlock.Name, args), nil
		}
	}

	return core.FinalAnswer(text), nil
}
