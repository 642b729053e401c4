package config

import "strings"

// DefaultPromptKey names the template used when no niche-specific one matches.
const DefaultPromptKey = "default"

// PromptTemplate shapes the instructions sent to the summarizer for a niche.
// Each field is a text/template executed with the niche available as {{.Niche}}.
type PromptTemplate struct {
	Role         string `yaml:"role"`
	SummaryFocus string `yaml:"summary_focus"`
	TrendFocus   string `yaml:"trend_focus"`
}

// PromptsConfig maps lowercase niche names to prompt templates.
type PromptsConfig struct {
	Templates map[string]PromptTemplate `yaml:"templates"`
}

var builtinPrompts = map[string]PromptTemplate{
	DefaultPromptKey: {
		Role:         "You are an analyst for a brand team in the '{{.Niche}}' niche.",
		SummaryFocus: "of the main content",
		TrendFocus:   "key trends/topics",
	},
	"gaming": {
		Role:         "You are an analyst for a GAMING brand team. Focus on gaming industry insights, player behavior, gaming trends, and gaming-related business opportunities.",
		SummaryFocus: "focused on GAMING aspects, player engagement, or gaming industry insights",
		TrendFocus:   "GAMING trends, player preferences, or gaming industry topics",
	},
}

// For returns the template for niche, falling back to the default template.
func (p PromptsConfig) For(niche string) PromptTemplate {
	if tmpl, ok := p.Templates[strings.ToLower(strings.TrimSpace(niche))]; ok {
		return tmpl
	}
	if tmpl, ok := p.Templates[DefaultPromptKey]; ok {
		return tmpl
	}
	return builtinPrompts[DefaultPromptKey]
}

// withDefaults merges the built-in templates under any configured ones.
// Configured keys are lowercased so lookups stay case-insensitive.
func (p PromptsConfig) withDefaults() PromptsConfig {
	merged := make(map[string]PromptTemplate, len(builtinPrompts)+len(p.Templates))
	for key, tmpl := range builtinPrompts {
		merged[key] = tmpl
	}
	for key, tmpl := range p.Templates {
		merged[strings.ToLower(strings.TrimSpace(key))] = tmpl
	}
	return PromptsConfig{Templates: merged}
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() PromptsConfig {
	return PromptsConfig{}.withDefaults()
}
