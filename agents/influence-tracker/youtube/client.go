package youtube

import (
	"context"
	"fmt"
	"log"
	"strings"

	"influence-tracker/internal/models"
	"influence-tracker/shared/config"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxRawTextLength caps the title+description text handed to the summarizer.
const maxRawTextLength = 2000

// Client fetches recent channel uploads through the YouTube Data API v3.
type Client struct {
	service *youtube.Service
}

// NewClient authenticates with an API key when one is configured, otherwise
// with OAuth client credentials through the device flow.
func NewClient(cfg *config.YouTubeConfig) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		httpClient, err := newOAuthHTTPClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return newClientWithOptions(ctx, opts...)
}

func newClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// FetchChannelVideos returns up to limit of the channel's newest videos,
// newest first. Failures wrap one of the package's error kinds.
func (c *Client) FetchChannelVideos(ctx context.Context, channelID string, limit int) ([]models.RawVideo, error) {
	if !ValidateChannelID(channelID) {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, ErrInvalidChannel)
	}

	searchResponse, err := c.service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError(channelID, err)
	}

	if len(searchResponse.Items) == 0 {
		return []models.RawVideo{}, nil
	}

	var videoIDs []string
	for _, item := range searchResponse.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			videoIDs = append(videoIDs, item.Id.VideoId)
		}
	}

	// Search snippets truncate descriptions, so fetch the full ones in one batch.
	descriptions := make(map[string]string, len(videoIDs))
	if len(videoIDs) > 0 {
		videosResponse, err := c.service.Videos.List([]string{"snippet"}).
			Id(strings.Join(videoIDs, ",")).
			Context(ctx).
			Do()
		if err != nil {
			log.Printf("Warning: Failed to get video details for channel %s, using search snippets: %v", channelID, err)
		} else {
			for _, item := range videosResponse.Items {
				if item.Snippet != nil {
					descriptions[item.Id] = item.Snippet.Description
				}
			}
		}
	}

	videos := make([]models.RawVideo, 0, len(videoIDs))
	for _, item := range searchResponse.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videoID := item.Id.VideoId

		description, ok := descriptions[videoID]
		if !ok {
			description = item.Snippet.Description
		}

		videos = append(videos, models.RawVideo{
			PostID:       videoID,
			Title:        item.Snippet.Title,
			URL:          videoURL(videoID),
			PublishedAt:  item.Snippet.PublishedAt,
			RawText:      rawText(item.Snippet.Title, description),
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}

	return videos, nil
}

func videoURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// rawText joins title and description for analysis, capped at maxRawTextLength characters.
func rawText(title, description string) string {
	text := []rune(title + "\n\n" + description)
	if len(text) > maxRawTextLength {
		text = text[:maxRawTextLength]
	}
	return string(text)
}
