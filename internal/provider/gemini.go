package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"canvassist/internal/config"
	"canvassist/internal/logging"
)

// Gemini calls the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, cfg *config.Config) (*Gemini, error) {
	if cfg.API.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key required: set GEMINI_API_KEY or api.gemini_key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.API.GeminiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  cfg.Model.Name,
		config: &genai.GenerateContentConfig{
			Temperature:     Ptr(cfg.Model.Temperature),
			MaxOutputTokens: cfg.Model.MaxOutputTokens,
		},
	}, nil
}

// Decide sends one non-streaming generation request.
func (g *Gemini) Decide(ctx context.Context, req *Request) (*Decision, error) {
	genConfig := *g.config
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Declarations) > 0 {
		genConfig.Tools = []*genai.Tool{{FunctionDeclarations: req.Declarations}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, req.History, &genConfig)
	if err != nil {
		if isTransportError(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	decision := &Decision{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		logging.Warn("empty response from model", "model", g.model)
		return decision, nil
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			decision.Text += part.Text
		}
		if part.FunctionCall != nil {
			decision.Proposals = append(decision.Proposals, Proposal{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}

	return decision, nil
}

// Close releases the client. The genai client holds no long-lived
// connection that needs shutdown.
func (g *Gemini) Close() error {
	return nil
}

func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "429")
}
