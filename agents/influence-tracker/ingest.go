package influencetracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"influence-tracker/agents/influence-tracker/youtube"
	"influence-tracker/internal/models"
)

const (
	platformYouTube     = "YouTube"
	unknownChannelTitle = "Unknown"
)

// VideoSource lists a channel's most recent uploads.
type VideoSource interface {
	FetchChannelVideos(ctx context.Context, channelID string, limit int) ([]models.RawVideo, error)
}

// Summarizer turns raw video text into a summary, sentiment and trends. It
// must not fail; unusable model output is expected to come back as a fallback.
type Summarizer interface {
	Summarize(ctx context.Context, text, niche, provider string) models.Summary
}

// PostSink persists a batch of posts, skipping known and stale ones.
type PostSink interface {
	Upsert(posts []models.Post, ignoreOld bool) (models.UpsertResult, error)
}

type IngestOptions struct {
	ChannelIDs      []string
	Niche           string
	PerChannelLimit int
	RateLimitDelay  time.Duration
	IgnoreOld       bool
	Provider        string
}

type IngestStats struct {
	ChannelsRequested int
	InvalidChannels   int
	ChannelsProcessed int
	Videos            int
	FetchErrors       int
	Fallbacks         int
	Added             int
	Skipped           int
	Interrupted       bool
}

func (s IngestStats) GetSummary() string {
	return fmt.Sprintf("processed %d/%d channels, summarized %d videos, added %d posts (%d skipped)",
		s.ChannelsProcessed, s.ChannelsRequested, s.Videos, s.Added, s.Skipped)
}

type IngestResult struct {
	Posts []models.Post
	Stats IngestStats
}

// Ingester walks channels sequentially, summarizes each new upload and hands
// the batch to the store.
type Ingester struct {
	source     VideoSource
	summarizer Summarizer
	sink       PostSink

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewIngester(source VideoSource, summarizer Summarizer, sink PostSink) *Ingester {
	return &Ingester{
		source:     source,
		summarizer: summarizer,
		sink:       sink,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Ingest runs one pass. Collaborator failures are logged and counted; an
// error is returned only when the batch cannot be stored or the context is
// cancelled, in which case the posts assembled so far are still stored.
func (in *Ingester) Ingest(ctx context.Context, opts IngestOptions) (*IngestResult, error) {
	result := &IngestResult{Posts: []models.Post{}}
	stats := &result.Stats
	stats.ChannelsRequested = len(opts.ChannelIDs)

	var channels []string
	for _, id := range opts.ChannelIDs {
		if !youtube.ValidateChannelID(id) {
			log.Printf("Warning: Skipping invalid channel ID %q", id)
			stats.InvalidChannels++
			continue
		}
		channels = append(channels, id)
	}

	log.Printf("Ingesting %d channels for niche %q (%d videos each)", len(channels), opts.Niche, opts.PerChannelLimit)

channelLoop:
	for _, channelID := range channels {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}

		videos, err := in.source.FetchChannelVideos(ctx, channelID, opts.PerChannelLimit)
		if err != nil {
			kind := youtube.ErrorKind(err)
			if kind == nil {
				kind = youtube.ErrUnavailable
			}
			log.Printf("Warning: Failed to fetch channel %s (%v): %v", channelID, kind, err)
			stats.FetchErrors++
			videos = nil
		}
		stats.ChannelsProcessed++

		for i, video := range videos {
			if i > 0 {
				if err := in.sleep(ctx, opts.RateLimitDelay); err != nil {
					stats.Interrupted = true
					break channelLoop
				}
			}
			if ctx.Err() != nil {
				stats.Interrupted = true
				break channelLoop
			}

			summary := in.summarizer.Summarize(ctx, video.RawText, opts.Niche, opts.Provider)
			if summary.Fallback {
				stats.Fallbacks++
			}
			stats.Videos++

			result.Posts = append(result.Posts, in.assemble(channelID, video, summary))
		}

		log.Printf("Channel %s: %d videos summarized", channelID, len(videos))
	}

	if len(result.Posts) > 0 {
		upserted, err := in.sink.Upsert(result.Posts, opts.IgnoreOld)
		if err != nil {
			return result, fmt.Errorf("failed to store posts: %w", err)
		}
		stats.Added = upserted.Added
		stats.Skipped = upserted.Skipped
	}

	if stats.Interrupted {
		return result, fmt.Errorf("ingestion interrupted after %d videos: %w", stats.Videos, context.Cause(ctx))
	}

	log.Printf("Ingestion complete: %s", stats.GetSummary())
	return result, nil
}

func (in *Ingester) assemble(channelID string, video models.RawVideo, summary models.Summary) models.Post {
	channelTitle := video.ChannelTitle
	if channelTitle == "" {
		channelTitle = unknownChannelTitle
	}

	trends := summary.Trends
	if trends == nil {
		trends = models.Trends{}
	}

	return models.Post{
		Platform:     platformYouTube,
		PostID:       video.PostID,
		ChannelID:    channelID,
		ChannelTitle: channelTitle,
		Title:        video.Title,
		URL:          video.URL,
		PublishedAt:  video.PublishedAt,
		Summary:      summary.Summary,
		Sentiment:    summary.Sentiment,
		Trends:       trends,
		CachedAt:     in.now().Format(time.RFC3339Nano),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
