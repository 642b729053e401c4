package ai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"text/template"

	"influence-tracker/shared/config"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

type geminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func newGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiGenerator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.ModelTemperature(),
	}, nil
}

func (g *geminiGenerator) Name() string {
	return "Gemini"
}

func (g *geminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(system + "\n\n" + prompt),
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	temperature := g.temperature
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}

	return result.Text(), nil
}

type openAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

func newOpenAIGenerator(cfg config.AIConfig) *openAIGenerator {
	return &openAIGenerator{
		client:      openai.NewClient(cfg.OpenAIAPIKey),
		model:       cfg.OpenAIModel,
		temperature: cfg.ModelTemperature(),
	}
}

func (o *openAIGenerator) Name() string {
	return "OpenAI"
}

func (o *openAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system + " Return only valid JSON."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: openAITemperature(o.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// openAITemperature maps 0 to the smallest positive value, since the client
// omits a zero temperature and the API would apply its own default.
func openAITemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// renderTemplate executes a prompt fragment. A fragment that fails to parse or
// execute is used verbatim.
func renderTemplate(text string, data any) string {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return text
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return text
	}
	return b.String()
}
