// Package brief turns a window of cached posts into trend tallies, a sentiment
// mix and a short narrative brief.
package brief

import (
	"sort"
	"strings"

	"influence-tracker/internal/models"
)

// TopTrendLimit is how many trends Aggregate ranks.
const TopTrendLimit = 5

var leadingArticles = []string{"the ", "a ", "an "}

// NormalizeTrend lowercases a phrase and drops one leading article.
func NormalizeTrend(phrase string) string {
	phrase = strings.TrimSpace(strings.ToLower(phrase))
	for _, article := range leadingArticles {
		if strings.HasPrefix(phrase, article) {
			phrase = strings.TrimSpace(phrase[len(article):])
			break
		}
	}
	return phrase
}

// Aggregate tallies normalized trend phrases across posts. The top list is
// ordered by count, with ties kept in first-seen order.
func Aggregate(posts []models.Post) (map[string]int, []models.TrendTally) {
	counts := make(map[string]int)
	var order []string

	for _, post := range posts {
		for _, phrase := range post.Trends {
			trend := NormalizeTrend(phrase)
			if trend == "" {
				continue
			}
			if _, seen := counts[trend]; !seen {
				order = append(order, trend)
			}
			counts[trend]++
		}
	}

	tallies := make([]models.TrendTally, 0, len(order))
	for _, trend := range order {
		tallies = append(tallies, models.TrendTally{Trend: trend, Count: counts[trend]})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Count > tallies[j].Count
	})

	if len(tallies) > TopTrendLimit {
		tallies = tallies[:TopTrendLimit]
	}
	return counts, tallies
}

// ComputeSentimentMix counts posts per sentiment. Missing or unknown labels count as neutral.
func ComputeSentimentMix(posts []models.Post) models.SentimentMix {
	var mix models.SentimentMix
	for _, post := range posts {
		switch models.ParseSentiment(string(post.Sentiment)) {
		case models.SentimentPositive:
			mix.Positive++
		case models.SentimentNegative:
			mix.Negative++
		default:
			mix.Neutral++
		}
	}
	return mix
}
