// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package embedding implements the code-text embedder spec §6 treats
// as a black box: a batched `embedBatch(texts) -> [vector]` contract
// behind a swappable Provider, with a single-consumer Generator that
// serializes every call against it (spec §5: the embedder is the one
// stage the pipeline never parallelizes, since most providers are
// themselves rate-limited HTTP services).
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"log/slog"
)

// Provider generates embedding vectors for a batch of code-text
// strings in one call, matching spec §6's embedder interface.
// Implementations do not need to pad their output: the Generator
// stores vectors as returned, and the persister pads/truncates them to
// the store's fixed vector width. The built-in providers each
// normalize their own vectors to unit length.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// MockProvider generates deterministic, content-derived embeddings.
// Useful for tests and for `--embedding-provider mock` runs that want
// a populated vector column without a live model server.
type MockProvider struct {
	dimension int
}

// NewMockProvider returns a MockProvider producing unit vectors of
// the given dimension.
func NewMockProvider(dimension int) *MockProvider {
	if dimension <= 0 {
		dimension = 384
	}
	return &MockProvider{dimension: dimension}
}

func (m *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.embedOne(text)
	}
	return out, nil
}

func (m *MockProvider) embedOne(text string) []float32 {
	hash := hashString(text)
	vec := make([]float32, m.dimension)
	for i := 0; i < m.dimension; i++ {
		val := float32((hash+uint64(i)*7919)%10000) / 10000.0
		vec[i] = val*2.0 - 1.0
	}
	return normalize(vec)
}

func hashString(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}

func normalize(v []float32) []float32 {
	var sumSq float32
	for _, x := range v {
		sumSq += x * x
	}
	norm := float32(math.Sqrt(float64(sumSq)))
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// NewProviderFromEnv builds a Provider by name, reading connection
// details from the environment the same way the teacher's ingestion
// pipeline does, so an operator migrating from it keeps the same
// environment variables. An empty name or "mock" returns a
// MockProvider; an unrecognized name is an error.
func NewProviderFromEnv(name string, dims int, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case "", "mock":
		return NewMockProvider(dims), nil

	case "ollama":
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model := os.Getenv("OLLAMA_EMBED_MODEL")
		if model == "" {
			model = "nomic-embed-text"
		}
		return newOllamaProvider(baseURL, model, logger), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for the openai provider")
		}
		baseURL := os.Getenv("OPENAI_API_BASE")
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		model := os.Getenv("OPENAI_EMBED_MODEL")
		if model == "" {
			model = "text-embedding-3-small"
		}
		return newOpenAIProvider(apiKey, baseURL, model, logger), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: mock, ollama, openai)", name)
	}
}

// ollamaProvider calls Ollama's single-text /api/embeddings endpoint
// once per text, since Ollama's embedding API has no native batch
// request shape; the Generator's serialization means this still never
// races with another embedBatch call.
type ollamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func newOllamaProvider(baseURL, model string, logger *slog.Logger) *ollamaProvider {
	return &ollamaProvider{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (o *ollamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		prompt := text
		if strings.Contains(strings.ToLower(o.model), "nomic") {
			prompt = "search_document: " + text
		}
		vec, err := o.embedOne(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("ollama embed item %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (o *ollamaProvider) embedOne(ctx context.Context, prompt string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request (is Ollama running at %s?): %w", o.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	vec := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vec[i] = float32(v)
	}
	return normalize(vec), nil
}

// openAIProvider calls the OpenAI-compatible embeddings endpoint,
// which natively accepts an array of inputs in one request — the
// closest match to spec §6's embedBatch contract among the providers
// the teacher's pipeline supports.
type openAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func newOpenAIProvider(apiKey, baseURL, model string, logger *slog.Logger) *openAIProvider {
	return &openAIProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type openAIEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *openAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(openAIEmbedRequest{Input: texts, Model: o.model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp openAIErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed openAIEmbedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	out := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = normalize(vec)
	}
	return out, nil
}
