package adk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays a fixed sequence of model turns
type scriptedProvider struct {
	turns    []*ToolCall
	final    string
	seen     [][]Message
	failWith error
}

func (p *scriptedProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	if p.failWith != nil {
		return "", nil, p.failWith
	}
	p.seen = append(p.seen, append([]Message(nil), history...))
	if len(p.turns) > 0 {
		call := p.turns[0]
		p.turns = p.turns[1:]
		return "", call, nil
	}
	return p.final, nil, nil
}

func (p *scriptedProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"scripted"}, nil
}

type echoTool struct {
	name  string
	calls int
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echoes its input" }
func (e *echoTool) Schema() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (e *echoTool) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	e.calls++
	if args["fail"] == true {
		return "", errors.New("boom")
	}
	return "echo:" + args["text"].(string), nil
}

func TestAgentChat_RunsToolThenAnswers(t *testing.T) {
	provider := &scriptedProvider{
		turns: []*ToolCall{{ToolName: "Echo", Args: map[string]interface{}{"text": "hi"}}},
		final: "done",
	}
	tool := &echoTool{name: "Echo"}

	agent := NewAgent(provider)
	agent.RegisterTool(tool)
	agent.SetSystemPrompt("be brief")

	resp, err := agent.Chat(context.Background(), "analyze this", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", resp)
	assert.Equal(t, 1, tool.calls)

	history := agent.History()
	require.Len(t, history, 5)
	assert.Equal(t, Message{Role: "system", Content: "be brief"}, history[0])
	assert.Equal(t, "analyze this", history[1].Content)
	assert.Equal(t, "function", history[3].Role)
	assert.Equal(t, "Tool Echo returned: echo:hi", history[3].Content)
	assert.Equal(t, Message{Role: "model", Content: "done"}, history[4])
}

func TestAgentChat_UnknownToolAndToolError(t *testing.T) {
	provider := &scriptedProvider{
		turns: []*ToolCall{
			{ToolName: "Missing"},
			{ToolName: "Echo", Args: map[string]interface{}{"fail": true}},
		},
		final: "ok",
	}
	agent := NewAgent(provider)
	agent.RegisterTool(&echoTool{name: "Echo"})

	_, err := agent.Chat(context.Background(), "go", nil)
	require.NoError(t, err)

	var functionTurns []string
	for _, m := range agent.History() {
		if m.Role == "function" {
			functionTurns = append(functionTurns, m.Content)
		}
	}
	require.Len(t, functionTurns, 2)
	assert.Contains(t, functionTurns[0], "tool Missing not found")
	assert.True(t, strings.HasPrefix(functionTurns[1], "Tool Echo returned: Error executing tool: boom"))
}

func TestAgentChat_ToolCallLimit(t *testing.T) {
	turns := make([]*ToolCall, MaxToolCalls+5)
	for i := range turns {
		turns[i] = &ToolCall{ToolName: "Echo", Args: map[string]interface{}{"text": "again"}}
	}
	agent := NewAgent(&scriptedProvider{turns: turns})
	agent.RegisterTool(&echoTool{name: "Echo"})

	_, err := agent.Chat(context.Background(), "loop", nil)
	assert.ErrorIs(t, err, ErrTooManyToolCalls)
}

func TestAgentChat_ProviderError(t *testing.T) {
	agent := NewAgent(&scriptedProvider{failWith: errors.New("quota")})
	_, err := agent.Chat(context.Background(), "x", nil)
	assert.EqualError(t, err, "quota")
}

func TestAgentChat_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agent := NewAgent(&scriptedProvider{final: "never"})
	_, err := agent.Chat(ctx, "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAgentTools_SortedByName(t *testing.T) {
	agent := NewAgent(&scriptedProvider{})
	agent.RegisterTool(&echoTool{name: "b"})
	agent.RegisterTool(&echoTool{name: "a"})
	tools := agent.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "a", tools[0].Name())
}

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "string", "description": "raw text"},
		},
		"required": []string{"text"},
	})
	require.NotNil(t, s)
	assert.Equal(t, []string{"text"}, s.Required)
	require.Contains(t, s.Properties, "text")
	assert.Equal(t, "raw text", s.Properties["text"].Description)
}

func TestToGenaiHistory_SystemPromptIsNotAChatTurn(t *testing.T) {
	system, turns := toGenaiHistory([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "analyze this"},
		{Role: "model", Content: "I will call tool Echo"},
		{Role: "function", Content: "Tool Echo returned: ok"},
	})

	require.NotNil(t, system)
	assert.Equal(t, []genai.Part{genai.Text("be brief")}, system.Parts)

	require.Len(t, turns, 3)
	roles := make([]string, len(turns))
	for i, c := range turns {
		roles[i] = c.Role
	}
	assert.Equal(t, []string{"user", "model", "user"}, roles)
	assert.Equal(t, []genai.Part{genai.Text("analyze this")}, turns[0].Parts)
}

func TestToGenaiHistory_WithoutSystemPrompt(t *testing.T) {
	system, turns := toGenaiHistory([]Message{{Role: "user", Content: "hi"}})
	assert.Nil(t, system)
	require.Len(t, turns, 1)
	assert.Equal(t, "user", turns[0].Role)
}

func TestDefaultSystemPromptMentionsTools(t *testing.T) {
	assert.Contains(t, DefaultSystemPrompt(), "AnalyzeConsoleLog")
	assert.Contains(t, DefaultSystemPrompt(), "GenerateReport")
}
