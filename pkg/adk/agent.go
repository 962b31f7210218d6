package adk

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/user/csrf-diag/pkg/logger"
)

// MaxToolCalls bounds the tool round trips for a single user message
const MaxToolCalls = 8

// ErrTooManyToolCalls is returned when the model keeps requesting tools
var ErrTooManyToolCalls = errors.New("model exceeded the tool call limit")

// Tool represents an executable action for the agent
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error)
	Schema() map[string]interface{} // JSON schema for arguments
}

// ToolCall represents a request from the LLM to execute a tool
type ToolCall struct {
	ToolName string
	Args     map[string]interface{}
}

// Message represents a chat message
type Message struct {
	Role    string // "system", "user", "model", "function"
	Content string
}

// LLMProvider defines the interface for different AI models
type LLMProvider interface {
	GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Agent drives a conversation in which the model can call diagnostic tools
type Agent struct {
	llm          LLMProvider
	tools        map[string]Tool
	history      []Message
	systemPrompt string
}

// NewAgent creates a new agent with the given LLM provider
func NewAgent(llm LLMProvider) *Agent {
	return &Agent{
		llm:   llm,
		tools: make(map[string]Tool),
	}
}

// RegisterTool adds a tool to the agent's registry
func (a *Agent) RegisterTool(t Tool) {
	a.tools[t.Name()] = t
}

// SetSystemPrompt seeds the conversation with instructions for the model
func (a *Agent) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// History returns the conversation so far
func (a *Agent) History() []Message {
	out := make([]Message, len(a.history))
	copy(out, a.history)
	return out
}

// Tools returns the registered tools sorted by name
func (a *Agent) Tools() []Tool {
	list := make([]Tool, 0, len(a.tools))
	for _, t := range a.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Chat sends a message to the agent and returns the final text response
func (a *Agent) Chat(ctx context.Context, input string, progress func(string)) (string, error) {
	if len(a.history) == 0 && a.systemPrompt != "" {
		a.history = append(a.history, Message{Role: "system", Content: a.systemPrompt})
	}
	a.history = append(a.history, Message{Role: "user", Content: input})

	tools := a.Tools()
	for calls := 0; ; calls++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if calls > MaxToolCalls {
			return "", ErrTooManyToolCalls
		}

		respText, toolCall, err := a.llm.GenerateResponse(ctx, a.history, tools)
		if err != nil {
			return "", err
		}

		if toolCall == nil {
			a.history = append(a.history, Message{Role: "model", Content: respText})
			return respText, nil
		}

		logger.Debugf("Executing tool: %s with args: %v", toolCall.ToolName, toolCall.Args)
		a.history = append(a.history, Message{
			Role:    "model",
			Content: fmt.Sprintf("I will call tool %s with args %v", toolCall.ToolName, toolCall.Args),
		})

		tool, exists := a.tools[toolCall.ToolName]
		if !exists {
			a.history = append(a.history, Message{Role: "function", Content: fmt.Sprintf("Error: tool %s not found", toolCall.ToolName)})
			continue
		}

		result, err := tool.Execute(ctx, toolCall.Args, progress)
		if err != nil {
			result = fmt.Sprintf("Error executing tool: %v", err)
		}
		a.history = append(a.history, Message{
			Role:    "function",
			Content: fmt.Sprintf("Tool %s returned: %s", toolCall.ToolName, result),
		})
	}
}
