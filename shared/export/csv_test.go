package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"influence-tracker/internal/models"

	"github.com/google/go-cmp/cmp"
)

func TestWriteCSV(t *testing.T) {
	posts := []models.Post{
		{
			Platform:     "YouTube",
			PostID:       "abc",
			ChannelID:    "UCaaaaaaaaaaaaaaaaaaaaaa",
			ChannelTitle: "Tech, Weekly",
			Title:        `The "best" phone`,
			URL:          "https://www.youtube.com/watch?v=abc",
			PublishedAt:  "2025-06-09T10:00:00Z",
			Summary:      "Line one\nline two",
			Sentiment:    models.SentimentPositive,
			Trends:       models.Trends{"ai", "foldables"},
			CachedAt:     "2025-06-10T12:00:00Z",
		},
		{PostID: "legacy", Trends: nil},
	}

	var b strings.Builder
	if err := WriteCSV(&b, posts); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if diff := cmp.Diff(Header, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	want := []string{
		"YouTube", "abc", "UCaaaaaaaaaaaaaaaaaaaaaa", "Tech, Weekly", `The "best" phone`,
		"https://www.youtube.com/watch?v=abc", "2025-06-09T10:00:00Z", "Line one\nline two",
		"positive", "ai,foldables", "2025-06-10T12:00:00Z",
	}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if rows[2][9] != "" {
		t.Errorf("empty trends column = %q", rows[2][9])
	}
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2025, 6, 10, 9, 5, 7, 0, time.UTC)

	path, err := ToFile(dir, []models.Post{{PostID: "abc"}}, now)
	if err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}

	if want := filepath.Join(dir, "influence_tracker_export_20250610_090507.csv"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file not readable: %v", err)
	}
	if !strings.HasPrefix(string(data), strings.Join(Header, ",")+"\n") {
		t.Errorf("export should start with the header, got %q", string(data))
	}
}
