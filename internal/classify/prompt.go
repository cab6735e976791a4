// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// classificationPromptTmpl is the prompt sent to the model for each batch of
// titles. It pins the category vocabulary and the response shape.
var classificationPromptTmpl = template.Must(template.New("classification").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`As an AI expert, please classify the following papers into one of the categories below.
Select strictly from the provided list:
{{.Categories}}

Return the result in JSON format as follows:
{
    "results": [
        {"title": "Paper Title 1", "category": "Category Name"},
        ...
    ]
}

Note:
1. The "title" field in the JSON must match the provided title exactly (including symbols).
2. If the title contains LaTeX formulas or special characters, keep them as is. Do not escape or modify them to ensure valid JSON.

Papers to classify:
{{range $i, $t := .Titles}}{{inc $i}}. {{$t}}
{{end}}`))

// AnthropicBackend classifies title batches through the Anthropic Messages
// API.
type AnthropicBackend struct {
	APIKey string
	Model  string
}

// Classify renders the batch prompt, calls the model, and parses the JSON
// response. A response wrapped in a Markdown code fence is unwrapped first.
func (a *AnthropicBackend) Classify(ctx context.Context, titles []string) (AIResponse, error) {
	prompt, err := renderPrompt(titles)
	if err != nil {
		return AIResponse{}, fmt.Errorf("rendering prompt: %w", err)
	}

	client := anthropic.NewClient(option.WithAPIKey(a.APIKey))
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return AIResponse{}, fmt.Errorf("calling Anthropic API: %w", err)
	}

	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		return ParseResponse(block.Text)
	}
	return AIResponse{}, fmt.Errorf("no text content in Anthropic response")
}

// ParseResponse decodes a model response body into an AIResponse.
func ParseResponse(text string) (AIResponse, error) {
	var resp AIResponse
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &resp); err != nil {
		return AIResponse{}, fmt.Errorf("parsing AI response JSON: %w", err)
	}
	if len(resp.Results) == 0 {
		return AIResponse{}, fmt.Errorf("AI response contains no results")
	}
	return resp, nil
}

// renderPrompt executes the classification prompt template for one batch.
func renderPrompt(titles []string) (string, error) {
	cleaned := make([]string, len(titles))
	for i, t := range titles {
		cleaned[i] = CleanTitle(t)
	}

	var buf bytes.Buffer
	data := struct {
		Categories string
		Titles     []string
	}{
		Categories: strings.Join(Categories, ", "),
		Titles:     cleaned,
	}
	if err := classificationPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
