// Package gemini wraps the Google Gen AI SDK as an alternate lead provider.
package gemini

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// Client generates text with a Gemini model.
type Client interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// TextRequest is a single-turn generation request.
type TextRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature *float32
	// JSON asks the model for an application/json response.
	JSON bool
}

// APIError carries the HTTP status of a failed call.
type APIError struct {
	Status int
	Err    error
}

func (e *APIError) Error() string   { return e.Err.Error() }
func (e *APIError) Unwrap() error   { return e.Err }
func (e *APIError) StatusCode() int { return e.Status }

type genaiClient struct {
	client *genai.Client
}

// NewClient creates a Gemini API client. baseURL is optional.
func NewClient(ctx context.Context, apiKey, baseURL string) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: new client")
	}
	return &genaiClient{client: c}, nil
}

func (c *genaiClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		wrapped := eris.Wrap(err, "gemini: generate content")
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{Status: apiErr.Code, Err: wrapped}
		}
		return "", wrapped
	}
	return resp.Text(), nil
}
