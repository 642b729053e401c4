// Package export writes cached posts as a flat CSV file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"influence-tracker/internal/models"
)

// Header lists the columns in the order Records emits them.
var Header = []string{
	"platform", "post_id", "channel_id", "channel_title", "title", "url",
	"published_at", "summary", "sentiment", "trends", "cached_at",
}

// Records flattens posts into CSV rows. Trends are comma-joined.
func Records(posts []models.Post) [][]string {
	records := make([][]string, 0, len(posts))
	for _, p := range posts {
		records = append(records, []string{
			p.Platform,
			p.PostID,
			p.ChannelID,
			p.ChannelTitle,
			p.Title,
			p.URL,
			p.PublishedAt,
			p.Summary,
			string(p.Sentiment),
			p.Trends.String(),
			p.CachedAt,
		})
	}
	return records
}

func WriteCSV(w io.Writer, posts []models.Post) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(Records(posts)); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// FileName returns the export file name for a given time.
func FileName(now time.Time) string {
	return fmt.Sprintf("influence_tracker_export_%s.csv", now.Format("20060102_150405"))
}

// ToFile writes posts to a timestamped CSV in dir and returns its path.
func ToFile(dir string, posts []models.Post, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, posts); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	return path, nil
}
