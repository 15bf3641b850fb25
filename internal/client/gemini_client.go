package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avatarforge/api/internal/config"
	"github.com/avatarforge/api/internal/model"
)

// GeminiClient handles communication with the Gemini generateContent API.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// ConceptResult is the parsed character concept returned by the model.
// Attributes is required; a response without it is a schema violation
// and never reaches the caller.
type ConceptResult struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Backstory   string             `json:"backstory,omitempty"`
	Attributes  *ConceptAttributes `json:"attributes"`
}

// ConceptAttributes carries the numeric body parameters the model
// proposes. SkinColor may be empty; the consumer defaults it.
type ConceptAttributes struct {
	Height     float64 `json:"height"`
	Width      float64 `json:"width"`
	MuscleMass float64 `json:"muscleMass"`
	SkinColor  string  `json:"skinColor,omitempty"`
}

// generateContentRequest is the request body for generateContent.
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

// generateContentResponse is the response from generateContent.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// conceptSchema constrains the model output to the character-concept
// shape. Ranges mirror what the editor can absorb; the consumer still
// clamps at its own boundary.
var conceptSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"name": {"type": "STRING"},
		"description": {"type": "STRING"},
		"backstory": {"type": "STRING"},
		"attributes": {
			"type": "OBJECT",
			"properties": {
				"height": {"type": "NUMBER", "description": "Value from 0.5 to 2.0"},
				"width": {"type": "NUMBER", "description": "Value from 0.5 to 2.0"},
				"skinColor": {"type": "STRING", "description": "Hex color code"},
				"muscleMass": {"type": "NUMBER", "description": "Value from 0 to 1"}
			}
		}
	},
	"required": ["name", "description", "attributes"]
}`)

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
	}
}

// IsConfigured reports whether an API key is present.
func (c *GeminiClient) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// GenerateConcept asks the model for a character concept from a prompt
// and an optional base64 reference image. Any transport error,
// malformed payload, or schema violation yields an error and no
// partial result.
func (c *GeminiClient) GenerateConcept(ctx context.Context, prompt, referenceImage string) (*ConceptResult, error) {
	parts := []part{
		{Text: fmt.Sprintf("Analyze this character concept/image: %s. Extract 3D modeling parameters and return JSON. Match the schema provided.", prompt)},
	}

	if referenceImage != "" {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: "image/jpeg",
				Data:     StripDataURLPrefix(referenceImage),
			},
		})
	}

	reqBody := generateContentRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   conceptSchema,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gcResp generateContentResponse
	if err := json.Unmarshal(respBody, &gcResp); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	if len(gcResp.Candidates) == 0 || len(gcResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	return parseConcept(gcResp.Candidates[0].Content.Parts[0].Text)
}

func parseConcept(text string) (*ConceptResult, error) {
	var result ConceptResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("invalid concept JSON: %w", err)
	}
	if result.Name == "" || result.Attributes == nil {
		return nil, fmt.Errorf("concept missing required fields")
	}
	if c := result.Attributes.SkinColor; c != "" && !model.ValidHexColor(c) {
		return nil, fmt.Errorf("concept skinColor %q is not a hex color", c)
	}
	return &result, nil
}

// StripDataURLPrefix removes a leading data:image/...;base64, prefix
// before transmission, if present.
func StripDataURLPrefix(s string) string {
	if i := strings.Index(s, ","); i != -1 && strings.HasPrefix(s, "data:") {
		return s[i+1:]
	}
	return s
}
