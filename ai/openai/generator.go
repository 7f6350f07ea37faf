// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator over OpenAI-compatible chat APIs.
// For a remote multi-key backend it holds one client per credential and
// rotates through them on failure; for a local backend it holds a single
// unauthenticated client.
type Generator struct {
	clients []llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication.
	tokens := []string{"none"}
	if !config.Local {
		tokens = config.APIKeys
	}

	clients := make([]llms.Model, 0, len(tokens))
	for _, token := range tokens {
		client, err := openai.New(
			openai.WithBaseURL(config.GeneratorHost),
			openai.WithToken(token),
			openai.WithModel(config.GeneratorModel),
		)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	return &Generator{
		clients: clients,
		timeout: config.CallTimeout,
		logger:  slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate sends the prompt to the backend, trying each credential in
// pool order. Every failed attempt is logged; only after the whole pool
// has failed does the call report ErrCredentialsExhausted. The next call
// starts again from the first credential.
func (g *Generator) Generate(ctx context.Context, system, user string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	for i, client := range g.clients {
		// A cancelled caller is not an exhausted pool.
		if err := ctx.Err(); err != nil {
			return "", err
		}
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		response, err := client.GenerateContent(callCtx, content, llms.WithTemperature(0.1))
		cancel()
		if err != nil {
			g.logger.Warn("generation attempt failed", "credential", i+1, "of", len(g.clients), "err", err)
			continue
		}
		if len(response.Choices) < 1 {
			g.logger.Warn("no choices returned from model", "credential", i+1)
			continue
		}
		return response.Choices[0].Content, nil
	}

	return "", ai.ErrCredentialsExhausted
}
