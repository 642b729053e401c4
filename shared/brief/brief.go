package brief

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"influence-tracker/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DominanceThreshold is the share of posts the leading sentiment needs before
// the brief calls it predominant.
const DominanceThreshold = 0.6

// DefaultWindowHours is the trailing window the brief covers.
const DefaultWindowHours = 48

const (
	EmptyBrief    = "No recent content available for analysis."
	EmptyTopTrend = "No trends identified"
)

var recommendations = map[models.Sentiment]string{
	models.SentimentPositive: "Consider amplifying content around these trending topics to maintain momentum.",
	models.SentimentNegative: "Monitor these trends closely and prepare response strategies if needed.",
	models.SentimentNeutral:  "Continue monitoring these trends to identify emerging opportunities.",
}

// Compose writes the narrative brief for posts given their top trends and sentiment mix.
func Compose(posts []models.Post, top []models.TrendTally, mix models.SentimentMix) string {
	total := len(posts)
	if total == 0 {
		return EmptyBrief
	}

	dominant := mix.Dominant()
	dominantCount := mix.Count(dominant)

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of %d recent posts reveals ", total)

	if float64(dominantCount) > float64(total)*DominanceThreshold {
		fmt.Fprintf(&b, "a predominantly %s sentiment (%d/%d posts).", dominant, dominantCount, total)
	} else {
		fmt.Fprintf(&b, "a mixed sentiment landscape with %d positive, %d neutral, and %d negative posts.",
			mix.Positive, mix.Neutral, mix.Negative)
	}

	if len(top) > 0 {
		fmt.Fprintf(&b, " The most prominent trend is '%s' (appearing in %d posts), followed by '%s' and '%s'.",
			top[0].Trend, top[0].Count, trendAt(top, 1), trendAt(top, 2))
	}

	b.WriteString(" ")
	b.WriteString(recommendations[dominant])

	return b.String()
}

func trendAt(top []models.TrendTally, i int) string {
	if i < len(top) {
		return top[i].Trend
	}
	return ""
}

// FormatTop renders the ranked trends as a numbered list.
func FormatTop(top []models.TrendTally) string {
	if len(top) == 0 {
		return EmptyTopTrend
	}

	lines := make([]string, 0, len(top))
	for i, t := range top {
		lines = append(lines, fmt.Sprintf("%d. %s (%d)", i+1, TitleCase(t.Trend), t.Count))
	}
	return strings.Join(lines, "\n")
}

// TitleCase capitalizes each word of a trend phrase. A letter that follows a
// digit is capitalized too, so "5g rollout" reads "5G Rollout".
func TitleCase(s string) string {
	// Casers are stateful, so each call gets its own.
	titled := []rune(cases.Title(language.Und).String(s))
	for i := 1; i < len(titled); i++ {
		if unicode.IsDigit(titled[i-1]) && unicode.IsLetter(titled[i]) {
			titled[i] = unicode.ToUpper(titled[i])
		}
	}
	return string(titled)
}

// Build aggregates posts and composes the full report for a window.
func Build(posts []models.Post, windowHours int, now time.Time) *models.BriefReport {
	_, top := Aggregate(posts)
	mix := ComputeSentimentMix(posts)

	return &models.BriefReport{
		GeneratedAt:  now,
		WindowHours:  windowHours,
		PostCount:    len(posts),
		Brief:        Compose(posts, top, mix),
		TopTrends:    top,
		TopFormatted: FormatTop(top),
		Sentiment:    mix,
		Posts:        posts,
	}
}
