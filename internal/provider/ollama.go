package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"google.golang.org/genai"

	"canvassist/internal/config"
)

// Ollama calls a local or remote Ollama server.
type Ollama struct {
	client *api.Client
	model  string
	opts   map[string]any
}

// NewOllama creates an Ollama provider.
func NewOllama(cfg *config.Config) (*Ollama, error) {
	baseURL, err := url.Parse(cfg.API.OllamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL %q: %w", cfg.API.OllamaBaseURL, err)
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout + 30*time.Second}

	return &Ollama{
		client: api.NewClient(baseURL, httpClient),
		model:  cfg.Model.Name,
		opts: map[string]any{
			"temperature": cfg.Model.Temperature,
		},
	}, nil
}

// Decide sends one non-streaming chat request.
func (o *Ollama) Decide(ctx context.Context, req *Request) (*Decision, error) {
	chatReq := &api.ChatRequest{
		Model:    o.model,
		Messages: o.convertHistory(req),
		Stream:   Ptr(false),
		Tools:    convertDeclarations(req.Declarations),
		Options:  o.opts,
	}

	decision := &Decision{}
	err := o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		decision.Text += resp.Message.Content
		for i, tc := range resp.Message.ToolCalls {
			id := tc.ID
			if id == "" {
				id = fmt.Sprintf("call_%d", i)
			}
			decision.Proposals = append(decision.Proposals, Proposal{
				ID:   id,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments.ToMap(),
			})
		}
		return nil
	})
	if err != nil {
		if isTransportError(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	return decision, nil
}

// Close is a no-op; the underlying http.Client needs no shutdown.
func (o *Ollama) Close() error {
	return nil
}

func (o *Ollama) convertHistory(req *Request) []api.Message {
	messages := make([]api.Message, 0, len(req.History)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, content := range req.History {
		role := "user"
		if content.Role == genai.RoleModel {
			role = "assistant"
		}
		var text strings.Builder
		for _, part := range content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		messages = append(messages, api.Message{Role: role, Content: text.String()})
	}
	return messages
}

func convertDeclarations(decls []*genai.FunctionDeclaration) []api.Tool {
	tools := make([]api.Tool, 0, len(decls))
	for _, decl := range decls {
		params := api.ToolFunctionParameters{
			Type:       "object",
			Properties: api.NewToolPropertiesMap(),
		}
		if decl.Parameters != nil {
			if len(decl.Parameters.Required) > 0 {
				params.Required = decl.Parameters.Required
			}
			for name, propSchema := range decl.Parameters.Properties {
				prop := api.ToolProperty{
					Description: propSchema.Description,
				}
				if propSchema.Type != "" {
					prop.Type = api.PropertyType{strings.ToLower(string(propSchema.Type))}
				}
				if len(propSchema.Enum) > 0 {
					enumVals := make([]any, len(propSchema.Enum))
					for i, v := range propSchema.Enum {
						enumVals[i] = v
					}
					prop.Enum = enumVals
				}
				params.Properties.Set(name, prop)
			}
		}

		tools = append(tools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}
