package models

import "time"

// RawVideo is what a video source returns before summarization.
type RawVideo struct {
	PostID       string `json:"post_id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	PublishedAt  string `json:"published_at"`
	RawText      string `json:"raw_text"`
	ChannelTitle string `json:"channel_title"`
}

// Summary is the summarizer's output for one video.
type Summary struct {
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	Trends    Trends    `json:"trends"`

	// Fallback is set when the summary was derived from the raw text
	// because the model call failed or returned something unparseable.
	Fallback bool `json:"-"`
}

type TrendTally struct {
	Trend string `json:"trend"`
	Count int    `json:"count"`
}

// SentimentMix counts posts per sentiment label.
type SentimentMix struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

func (m SentimentMix) Count(s Sentiment) int {
	switch s {
	case SentimentPositive:
		return m.Positive
	case SentimentNegative:
		return m.Negative
	default:
		return m.Neutral
	}
}

func (m SentimentMix) Total() int {
	return m.Positive + m.Neutral + m.Negative
}

// Dominant returns the label with the highest count. Ties go to the
// earliest label in Sentiments.
func (m SentimentMix) Dominant() Sentiment {
	best := Sentiments[0]
	for _, s := range Sentiments[1:] {
		if m.Count(s) > m.Count(best) {
			best = s
		}
	}
	return best
}

// BriefReport is a trend brief over a trailing window, ready for display or delivery.
type BriefReport struct {
	GeneratedAt  time.Time    `json:"generated_at"`
	WindowHours  int          `json:"window_hours"`
	PostCount    int          `json:"post_count"`
	Brief        string       `json:"brief"`
	TopTrends    []TrendTally `json:"top_trends"`
	TopFormatted string       `json:"top_formatted"`
	Sentiment    SentimentMix `json:"sentiment"`
	Posts        []Post       `json:"-"`
}
