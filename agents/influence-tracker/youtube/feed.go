package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"influence-tracker/internal/models"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const maxFeedBytes = 5 << 20

// FeedSource reads channel uploads from the public per-channel Atom feed.
// It needs no credentials but only ever sees the latest 15 uploads.
type FeedSource struct {
	baseURL string
	client  *http.Client
	parser  *gofeed.Parser
}

func NewFeedSource(baseURL string) *FeedSource {
	return &FeedSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		parser:  gofeed.NewParser(),
	}
}

func (f *FeedSource) FetchChannelVideos(ctx context.Context, channelID string, limit int) ([]models.RawVideo, error) {
	if !ValidateChannelID(channelID) {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, ErrInvalidChannel)
	}

	feedURL, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed URL: %w", err)
	}
	query := feedURL.Query()
	query.Set("channel_id", channelID)
	feedURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w: %v", channelID, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch channel %s: %w: status %d", channelID, statusKind(resp.StatusCode), resp.StatusCode)
	}

	parsed, err := f.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for channel %s: %w", channelID, err)
	}

	videos := make([]models.RawVideo, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(videos) >= limit {
			break
		}

		videoID := feedVideoID(item)
		if videoID == "" {
			continue
		}

		channelTitle := parsed.Title
		if channelTitle == "" && item.Author != nil {
			channelTitle = item.Author.Name
		}

		link := item.Link
		if link == "" {
			link = videoURL(videoID)
		}

		videos = append(videos, models.RawVideo{
			PostID:       videoID,
			Title:        item.Title,
			URL:          link,
			PublishedAt:  feedPublished(item),
			RawText:      rawText(item.Title, feedDescription(item)),
			ChannelTitle: channelTitle,
		})
	}

	return videos, nil
}

func statusKind(code int) error {
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadRequest:
		return ErrInvalidChannel
	case code == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrUnavailable
	}
}

func feedVideoID(item *gofeed.Item) string {
	if id := extensionValue(item.Extensions, "yt", "videoId"); id != "" {
		return id
	}
	if id, ok := strings.CutPrefix(item.GUID, "yt:video:"); ok {
		return id
	}
	if link, err := url.Parse(item.Link); err == nil {
		return link.Query().Get("v")
	}
	return ""
}

func feedPublished(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}

// feedDescription reads media:group/media:description, falling back to the
// item's own description.
func feedDescription(item *gofeed.Item) string {
	for _, group := range item.Extensions["media"]["group"] {
		for _, description := range group.Children["description"] {
			if description.Value != "" {
				return description.Value
			}
		}
	}
	return item.Description
}

func extensionValue(extensions ext.Extensions, namespace, name string) string {
	for _, e := range extensions[namespace][name] {
		if e.Value != "" {
			return e.Value
		}
	}
	return ""
}
