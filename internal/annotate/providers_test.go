package annotate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const twoTokenLabels = `{"sentences":[{"labels":[{"pos":"NNP","ner":"PERSON","lemma":"bob"},{"pos":"VBZ","ner":"O","lemma":"run"}]}]}`

func TestOllamaProvider_Annotate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Format != "json" || !strings.Contains(req.Prompt, "1\tBob") {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.1", Response: twoTokenLabels, Done: true})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	doc, err := p.Annotate(context.Background(), Request{Text: "Bob runs"})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	tok := doc.Sentences[0].Tokens[0]
	if tok.POS != "NNP" || tok.NER != "PERSON" || tok.Lemma != "bob" {
		t.Errorf("unexpected token labels %+v", tok)
	}
}

func TestOllamaProvider_LeavesRequestSentences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.1", Response: twoTokenLabels, Done: true})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	req := Request{Text: "Bob runs", Sentences: []Sentence{NewSentence("Bob runs", 0)}}
	doc, err := p.Annotate(context.Background(), req)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if doc.Sentences[0].Tokens[0].POS != "NNP" {
		t.Errorf("expected labeled document, got %+v", doc.Sentences[0].Tokens[0])
	}
	if tok := req.Sentences[0].Tokens[0]; tok.POS != "" || tok.NER != "" || tok.Lemma != "" {
		t.Errorf("request tokens were labeled in place: %+v", tok)
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	_, err = p.Annotate(context.Background(), Request{Text: "Bob runs"})
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestOllamaProvider_LabelMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: `{"sentences":[{"labels":[]}]}`, Done: true})
	}))
	defer server.Close()

	p, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "m", Timeout: 5}, nil)
	if _, err := p.Annotate(context.Background(), Request{Text: "Bob runs"}); err == nil {
		t.Error("expected error when label count differs from token count")
	}
}

func TestOpenAIProvider_Annotate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": twoTokenLabels},
			}},
		})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test", BaseURL: server.URL + "/v1", Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	doc, err := p.Annotate(context.Background(), Request{
		Sentences: []Sentence{{Text: "Bob runs", Begin: 0, End: 8}},
	})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if doc.Model != "gpt-4o-mini" || doc.Sentences[0].Tokens[1].Lemma != "run" {
		t.Errorf("unexpected document %+v", doc)
	}
}
