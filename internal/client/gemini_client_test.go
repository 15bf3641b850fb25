package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avatarforge/api/internal/config"
)

func conceptServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func candidateBody(t *testing.T, conceptJSON string) string {
	t.Helper()
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": conceptJSON}},
			}},
		},
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestGenerateConceptSuccess(t *testing.T) {
	concept := `{"name":"Vael","description":"A towering brawler.","backstory":"Raised in the pits.","attributes":{"height":1.6,"width":1.3,"muscleMass":0.9,"skinColor":"#3c2e28"}}`
	srv := conceptServer(t, http.StatusOK, candidateBody(t, concept))
	defer srv.Close()

	c := NewGeminiClient(&config.GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})

	result, err := c.GenerateConcept(context.Background(), "a brawler", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "Vael" {
		t.Errorf("expected name Vael, got %s", result.Name)
	}
	if result.Attributes == nil || result.Attributes.Height != 1.6 {
		t.Errorf("attributes not parsed: %+v", result.Attributes)
	}
	if result.Attributes.SkinColor != "#3c2e28" {
		t.Errorf("skin color not parsed: %s", result.Attributes.SkinColor)
	}
}

func TestGenerateConceptMalformedJSON(t *testing.T) {
	srv := conceptServer(t, http.StatusOK, `{"candidates": [{}`)
	defer srv.Close()

	c := NewGeminiClient(&config.GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})

	result, err := c.GenerateConcept(context.Background(), "anything", "")
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	if result != nil {
		t.Error("no partial result may escape on error")
	}
}

func TestGenerateConceptMalformedConceptText(t *testing.T) {
	srv := conceptServer(t, http.StatusOK, candidateBody(t, `not json at all`))
	defer srv.Close()

	c := NewGeminiClient(&config.GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := c.GenerateConcept(context.Background(), "anything", ""); err == nil {
		t.Fatal("expected an error for malformed concept text")
	}
}

func TestGenerateConceptMissingAttributes(t *testing.T) {
	srv := conceptServer(t, http.StatusOK, candidateBody(t, `{"name":"Vael","description":"x"}`))
	defer srv.Close()

	c := NewGeminiClient(&config.GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := c.GenerateConcept(context.Background(), "anything", ""); err == nil {
		t.Fatal("schema violation must be an error, not a partial object")
	}
}

func TestGenerateConceptInvalidSkinColor(t *testing.T) {
	concept := `{"name":"Vael","description":"x","attributes":{"height":1.2,"width":1.0,"muscleMass":0.5,"skinColor":"blue"}}`
	srv := conceptServer(t, http.StatusOK, candidateBody(t, concept))
	defer srv.Close()

	c := NewGeminiClient(&config.GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})

	result, err := c.GenerateConcept(context.Background(), "anything", "")
	if err == nil {
		t.Fatal("a non-hex skin color must be an error, not a partial object")
	}
	if result != nil {
		t.Error("no partial result may escape on error")
	}
}

func TestGenerateConceptUpstreamError(t *testing.T) {
	srv := conceptServer(t, http.StatusInternalServerError, `boom`)
	defer srv.Close()

	c := NewGeminiClient(&config.GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := c.GenerateConcept(context.Background(), "anything", ""); err == nil {
		t.Fatal("expected an error for non-200 response")
	}
}

func TestIsConfigured(t *testing.T) {
	if NewGeminiClient(&config.GeminiConfig{}).IsConfigured() {
		t.Error("client without API key must not be configured")
	}
	if !NewGeminiClient(&config.GeminiConfig{APIKey: "k"}).IsConfigured() {
		t.Error("client with API key must be configured")
	}
}

func TestStripDataURLPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data:image/jpeg;base64,AAAA", "AAAA"},
		{"data:image/png;base64,QkJC", "QkJC"},
		{"AAAA", "AAAA"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripDataURLPrefix(tt.in); got != tt.want {
			t.Errorf("StripDataURLPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
