package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists the known labels in tie-break order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// ParseSentiment folds anything that is not a known label into neutral.
func ParseSentiment(s string) Sentiment {
	switch v := Sentiment(strings.ToLower(strings.TrimSpace(s))); v {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return v
	default:
		return SentimentNeutral
	}
}

// Post is one analyzed video as persisted in the store.
type Post struct {
	Platform     string    `json:"platform,omitempty"`
	PostID       string    `json:"post_id"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	PublishedAt  string    `json:"published_at"`
	Summary      string    `json:"summary"`
	Sentiment    Sentiment `json:"sentiment"`
	Trends       Trends    `json:"trends"`
	CachedAt     string    `json:"cached_at"`
}

// PublishedTime parses PublishedAt. ok is false when the value is missing or malformed.
func (p Post) PublishedTime() (time.Time, bool) {
	return ParseTimestamp(p.PublishedAt)
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

// Naive timestamps carry no offset and are read in local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 timestamps with or without a UTC offset.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Trends is the list of trend phrases attached to a post. Older stores wrote
// it as a single comma-joined string, so both forms are accepted on read; any
// other shape reads as no trends. It is always written back as an array.
type Trends []string

func (t *Trends) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*t = nil
	case string:
		*t = SplitTrends(v)
	case []any:
		out := make(Trends, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		*t = out
	default:
		// Unusable shapes drop the trends rather than the whole post.
		*t = Trends{}
	}
	return nil
}

func (t Trends) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// String renders the comma-joined form used in flat exports.
func (t Trends) String() string {
	return strings.Join(t, ",")
}

// SplitTrends splits a comma-joined trend string, trimming and dropping empty fragments.
func SplitTrends(s string) Trends {
	var out Trends
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Meta is recomputed from Posts on every save.
type Meta struct {
	LastRun     *string `json:"last_run"`
	TotalPosts  int     `json:"total_posts"`
	LastUpdated *string `json:"last_updated"`
}

// Store is the persisted aggregate: every cached post plus run metadata.
type Store struct {
	Posts []Post `json:"posts"`
	Meta  Meta   `json:"meta"`
}

func NewStore() *Store {
	return &Store{Posts: []Post{}}
}

type UpsertResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
