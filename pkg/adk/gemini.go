package adk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-pro"

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey string, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	iter := g.client.ListModels(ctx)
	var names []string
	for {
		m, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.Contains(m.Name, "gemini") {
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return names, nil
}

func (g *GeminiProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	if len(history) == 0 {
		return "", nil, fmt.Errorf("empty history")
	}

	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  toGenaiSchema(t.Schema()),
			})
		}
		g.model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	system, cs := toGenaiHistory(history)
	if len(cs) == 0 {
		return "", nil, fmt.Errorf("history has no chat turns")
	}
	g.model.SystemInstruction = system

	session := g.model.StartChat()
	session.History = cs[:len(cs)-1]

	resp, err := session.SendMessage(ctx, cs[len(cs)-1].Parts...)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, fmt.Errorf("no response candidates")
	}

	var text strings.Builder
	var toolCall *ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			toolCall = &ToolCall{ToolName: p.Name, Args: p.Args}
		case genai.Text:
			text.WriteString(string(p))
		}
	}

	if toolCall == nil && text.Len() == 0 {
		return "", nil, fmt.Errorf("empty response")
	}
	return text.String(), toolCall, nil
}

// toGenaiHistory splits system messages into a system instruction and maps
// the rest to chat turns. Function output is replayed as a user turn.
func toGenaiHistory(history []Message) (*genai.Content, []*genai.Content) {
	var system []genai.Part
	cs := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "system":
			system = append(system, genai.Text(msg.Content))
		case "model":
			cs = append(cs, &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}, Role: "model"})
		default:
			cs = append(cs, &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}, Role: "user"})
		}
	}
	if len(system) == 0 {
		return nil, cs
	}
	return &genai.Content{Parts: system}, cs
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}

// toGenaiSchema converts the JSON-schema maps used by tools into genai's schema type
func toGenaiSchema(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{Type: genaiType(m["type"])}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if pm, ok := raw.(map[string]interface{}); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = req
	}
	return s
}

func genaiType(v interface{}) genai.Type {
	switch v {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "boolean":
		return genai.TypeBoolean
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}
