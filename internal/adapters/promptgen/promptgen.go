// Package promptgen drafts image-generation prompts from vocabulary entries
// via the chat completions API.
package promptgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/lexigen/internal/domain/models"
	"github.com/longregen/lexigen/internal/llm"
)

const systemPrompt = `You write prompts for a text-to-image model.
Given a dictionary definition, answer with one vivid, concrete scene
description that depicts the meaning. Plain text, one line, no quotes,
no preamble.`

// Generator implements ports.PromptGenerator on top of the LLM client.
type Generator struct {
	client *llm.Client
}

func New(client *llm.Client) *Generator {
	return &Generator{client: client}
}

// Generate turns one entry's definition and part of speech into a refined
// generation prompt.
func (g *Generator) Generate(ctx context.Context, entry models.VocabEntry) (string, error) {
	messages := []llm.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Definition (%s): %s", entry.POS, entry.Definition)},
	}

	resp, err := g.client.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	prompt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if prompt == "" {
		return "", fmt.Errorf("empty completion")
	}
	return prompt, nil
}
