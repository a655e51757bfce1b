// Package openai implements gateway.Gateway using the OpenAI Chat
// Completions API with function calling. It maps history entries into the
// SDK's message format, exposes allowed tools as function definitions and
// handoff targets through the synthetic transfer function, and translates
// the completion back into a Decision.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gateway"
)

// Options configure the OpenAI gateway. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Gateway wraps the OpenAI Chat Completions API behind gateway.Gateway.
type Gateway struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI gateway using the default client (API key from the
// environment).
func New(optFns ...func(o *Options)) *Gateway {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI gateway from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Decide implements gateway.Gateway with a single non-streaming completion.
func (g *Gateway) Decide(ctx context.Context, req gateway.Request) (core.Decision, error) {
	params := g.buildParams(req)

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.Decision{}, gateway.NewError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return core.Decision{}, gateway.NewError("openai", fmt.Errorf("no choices returned"))
	}

	return decisionFromMessage(resp.Choices[0].Message)
}

func (g *Gateway) buildParams(req gateway.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	}

	tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools)+1)
	for _, td := range req.Tools {
		tools = append(tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        td.Name,
				Description: openai.String(td.Description),
				Parameters:  td.Parameters,
			},
		})
	}
	if len(req.Handoffs) > 0 {
		tools = append(tools, transferFunction(req.Handoffs))
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	return params
}

// buildMessages converts the runtime history into OpenAI chat messages. The
// instructions become the system message; tool-call records and results are
// rebuilt as assistant tool calls and tool messages using their preserved
// correlation IDs; handoff markers are rendered as assistant text.
func buildMessages(req gateway.Request) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.Instructions),
	}

	for _, entry := range req.History {
		switch entry.Role {
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(entry.Content))
		case core.RoleAssistant:
			if entry.ToolCall == nil {
				messages = append(messages, openai.AssistantMessage(entry.Content))
				continue
			}
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role: "assistant",
					ToolCalls: []openai.ChatCompletionMessageToolCallParam{{
						ID:   entry.ToolCall.ID,
						Type: "function",
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      entry.ToolCall.Name,
							Arguments: string(entry.ToolCall.Arguments),
						},
					}},
				}},
			)
		case core.RoleTool:
			if entry.ToolResult == nil {
				continue
			}
			messages = append(messages, openai.ToolMessage(entry.Content, entry.ToolResult.ID))
		case core.RoleHandoff:
			messages = append(messages, openai.AssistantMessage(entry.Content))
		}
	}

	return messages
}

// transferFunction exposes the allowed handoff targets as one synthetic
// function whose schema enumerates the target names.
func transferFunction(handoffs []core.AgentDescriptor) openai.ChatCompletionToolParam {
	names := make([]string, 0, len(handoffs))
	desc := "Transfer the conversation to another agent by name. Available agents:"
	for _, h := range handoffs {
		names = append(names, h.Name)
		desc += fmt.Sprintf(" %s (%s).", h.Name, h.Description)
	}

	return openai.ChatCompletionToolParam{
		Type: "function",
		Function: openai.FunctionDefinitionParam{
			Name:        gateway.TransferFunctionName,
			Description: openai.String(desc),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent": map[string]any{
						"type":        "string",
						"description": "Target agent name",
						"enum":        names,
					},
				},
				"required": []string{"agent"},
			},
		},
	}
}

func decisionFromMessage(msg openai.ChatCompletionMessage) (core.Decision, error) {
	if len(msg.ToolCalls) == 0 {
		return core.FinalAnswer(msg.Content), nil
	}

	// The runtime consumes one decision per step; only the first call is
	// meaningful.
	tc := msg.ToolCalls[0]
	if tc.Function.Name == gateway.TransferFunctionName {
		var args struct {
			Agent string `json:"agent"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return core.Decision{}, gateway.NewError("openai", fmt.Errorf("malformed transfer arguments: %w", err))
		}
		return core.HandoffTo(args.Agent), nil
	}

	return core.CallTool(tc.ID, tc.Function.Name, json.RawMessage(tc.Function.Arguments)), nil
}
