package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"influence-tracker/internal/models"
	"influence-tracker/shared/config"
)

const (
	// MaxSummaryLength bounds the stored summary, in characters.
	MaxSummaryLength = 300
	// MaxTrends caps the trend phrases kept per video.
	MaxTrends = 5

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// generator is a single LLM round trip: instructions plus content in, raw text out.
type generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Summarizer asks an LLM for a summary, sentiment and trend phrases per video.
// It never fails: any error or unusable response yields a fallback summary built
// from the raw text.
type Summarizer struct {
	gemini  generator
	openai  generator
	prompts config.PromptsConfig
}

func NewSummarizer(cfg *config.Config) (*Summarizer, error) {
	gemini, err := newGeminiGenerator(context.Background(), cfg.AI)
	if err != nil {
		return nil, err
	}

	s := &Summarizer{
		gemini:  gemini,
		prompts: cfg.Prompts,
	}

	if cfg.AI.OpenAIAPIKey != "" {
		s.openai = newOpenAIGenerator(cfg.AI)
	}

	return s, nil
}

// Summarize analyzes text in the context of niche. provider picks the model
// family; OpenAI falls back to Gemini when it is unavailable or fails.
func (s *Summarizer) Summarize(ctx context.Context, text, niche, provider string) models.Summary {
	system, prompt := s.buildPrompt(text, niche)

	if strings.EqualFold(provider, ProviderOpenAI) && s.openai != nil {
		summary, err := s.summarizeWith(ctx, s.openai, system, prompt)
		if err == nil {
			return summary
		}
		log.Printf("Warning: %s summarization failed, falling back to Gemini: %v", s.openai.Name(), err)
	}

	summary, err := s.summarizeWith(ctx, s.gemini, system, prompt)
	if err != nil {
		log.Printf("Warning: %s summarization failed, using raw text: %v", s.gemini.Name(), err)
		return fallbackSummary(text)
	}
	return summary
}

func (s *Summarizer) summarizeWith(ctx context.Context, gen generator, system, prompt string) (models.Summary, error) {
	if gen == nil {
		return models.Summary{}, fmt.Errorf("no model configured")
	}

	response, err := gen.Generate(ctx, system, prompt)
	if err != nil {
		return models.Summary{}, fmt.Errorf("failed to call %s: %w", gen.Name(), err)
	}
	if strings.TrimSpace(response) == "" {
		return models.Summary{}, fmt.Errorf("empty response from %s", gen.Name())
	}

	return parseSummaryResponse(response)
}

func (s *Summarizer) buildPrompt(text, niche string) (system, prompt string) {
	tmpl := s.prompts.For(niche)
	data := struct{ Niche string }{Niche: niche}

	system = renderTemplate(tmpl.Role, data)
	prompt = fmt.Sprintf(`Analyze this YouTube video content and return a JSON response with exactly these keys:
- summary: 50-80 word summary %s
- sentiment: one of [positive, neutral, negative]
- trends: array of 3-5 short phrases identifying %s

Input content:
%s

Return only valid JSON:`,
		renderTemplate(tmpl.SummaryFocus, data),
		renderTemplate(tmpl.TrendFocus, data),
		text,
	)
	return system, prompt
}

func parseSummaryResponse(response string) (models.Summary, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return models.Summary{}, fmt.Errorf("no JSON found in response: %s", truncateString(response, 200))
	}

	jsonStr := response[startIdx : endIdx+1]

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		sanitized := sanitizeJSON(jsonStr)
		if sanitizedErr := json.Unmarshal([]byte(sanitized), &fields); sanitizedErr != nil {
			return models.Summary{}, fmt.Errorf("failed to unmarshal JSON: %w (sanitized version also failed: %v)", err, sanitizedErr)
		}
		log.Printf("Warning: Had to sanitize malformed JSON from summarizer")
	}

	for _, key := range []string{"summary", "sentiment", "trends"} {
		if _, ok := fields[key]; !ok {
			return models.Summary{}, fmt.Errorf("response is missing %q", key)
		}
	}

	var summary, sentiment *string
	var trends models.Trends
	if err := json.Unmarshal(fields["summary"], &summary); err != nil || summary == nil {
		return models.Summary{}, fmt.Errorf("summary is not a string: %s", fields["summary"])
	}
	if err := json.Unmarshal(fields["sentiment"], &sentiment); err != nil || sentiment == nil {
		return models.Summary{}, fmt.Errorf("sentiment is not a string: %s", fields["sentiment"])
	}
	// Trends decode leniently for stored posts, so the response shape is checked here.
	if raw := bytes.TrimSpace(fields["trends"]); len(raw) == 0 || (raw[0] != '[' && raw[0] != '"') {
		return models.Summary{}, fmt.Errorf("trends must be a string or an array: %s", fields["trends"])
	}
	if err := json.Unmarshal(fields["trends"], &trends); err != nil {
		return models.Summary{}, fmt.Errorf("trends are malformed: %w", err)
	}

	if len(trends) > MaxTrends {
		trends = trends[:MaxTrends]
	}
	if trends == nil {
		trends = models.Trends{}
	}

	return models.Summary{
		Summary:   truncateString(*summary, MaxSummaryLength),
		Sentiment: models.Sentiment(strings.ToLower(strings.TrimSpace(*sentiment))),
		Trends:    trends,
	}, nil
}

func fallbackSummary(text string) models.Summary {
	return models.Summary{
		Summary:   truncateString(text, MaxSummaryLength),
		Sentiment: models.SentimentNeutral,
		Trends:    models.Trends{},
		Fallback:  true,
	}
}

// sanitizeJSON escapes stray double quotes inside string values, a common
// defect in model output.
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	var sanitizedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx != -1 && strings.Contains(line, "\"") {
			beforeColon := line[:colonIdx+1]
			afterColon := strings.TrimSpace(line[colonIdx+1:])

			if strings.HasPrefix(afterColon, "\"") {
				lastQuoteIdx := strings.LastIndex(afterColon, "\"")
				if lastQuoteIdx > 0 {
					content := afterColon[1:lastQuoteIdx]
					content = strings.ReplaceAll(content, `\"`, `"`)
					content = strings.ReplaceAll(content, `"`, `\"`)
					line = beforeColon + " \"" + content + "\"" + afterColon[lastQuoteIdx+1:]
				}
			}
		}

		sanitizedLines = append(sanitizedLines, line)
	}

	return strings.Join(sanitizedLines, "\n")
}

// truncateString cuts s to at most maxLength characters, marking the cut with an ellipsis.
func truncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}
