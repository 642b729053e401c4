package influencetracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"influence-tracker/agents/influence-tracker/youtube"
	"influence-tracker/internal/models"
	"influence-tracker/shared/ai"
	"influence-tracker/shared/brief"
	"influence-tracker/shared/config"
	"influence-tracker/shared/email"
	"influence-tracker/shared/scheduler"
	"influence-tracker/shared/storage"
)

type briefSender interface {
	SendBrief(report *models.BriefReport) error
}

// TrackerAgent implements the scheduler.Agent interface
type TrackerAgent struct {
	config      *config.Config
	source      VideoSource
	summarizer  Summarizer
	store       *storage.PostStore
	emailSender briefSender
	now         func() time.Time
}

// TrackerMetrics summarizes one scheduled cycle.
type TrackerMetrics struct {
	Ingest      IngestStats
	RecentPosts int
	TopTrend    string
}

func (m TrackerMetrics) GetSummary() string {
	top := m.TopTrend
	if top == "" {
		top = "none"
	}
	return fmt.Sprintf("added %d new posts (%d skipped, %d fetch errors), brief over %d posts, top trend: %s",
		m.Ingest.Added, m.Ingest.Skipped, m.Ingest.FetchErrors, m.RecentPosts, top)
}

func NewTrackerAgent(cfg *config.Config) *TrackerAgent {
	return &TrackerAgent{
		config: cfg,
		now:    time.Now,
	}
}

func (a *TrackerAgent) Name() string {
	return "Influence Tracker"
}

func (a *TrackerAgent) Initialize() error {
	log.Printf("Initializing %s...", a.Name())

	if err := a.config.ValidateIngest(); err != nil {
		return err
	}

	if a.store == nil {
		store, err := storage.NewPostStore(a.config.Tracker.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create post store: %w", err)
		}
		a.store = store
		log.Printf("Post store initialized at %s", store.Path())
	}

	if a.source == nil {
		source, err := newVideoSource(&a.config.YouTube)
		if err != nil {
			return err
		}
		a.source = source
		log.Printf("YouTube %s source initialized", a.config.YouTube.Source)
	}

	if a.summarizer == nil {
		summarizer, err := ai.NewSummarizer(a.config)
		if err != nil {
			return fmt.Errorf("failed to create summarizer: %w", err)
		}
		a.summarizer = summarizer
		log.Println("Summarizer initialized")
	}

	if a.emailSender == nil && a.config.Email.Enabled() {
		a.emailSender = email.NewSender(&a.config.Email)
		log.Println("Email sender initialized")
	}

	return nil
}

func newVideoSource(cfg *config.YouTubeConfig) (VideoSource, error) {
	if cfg.Source == "rss" {
		return youtube.NewFeedSource(cfg.FeedURL), nil
	}

	client, err := youtube.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	return client, nil
}

// Store returns the post store opened by Initialize.
func (a *TrackerAgent) Store() *storage.PostStore {
	return a.store
}

// Ingest runs a single ingestion pass with explicit options.
func (a *TrackerAgent) Ingest(ctx context.Context, opts IngestOptions) (*IngestResult, error) {
	ingester := NewIngester(a.source, a.summarizer, a.store)
	ingester.now = a.now
	return ingester.Ingest(ctx, opts)
}

// DefaultIngestOptions derives ingestion options from the tracker configuration.
func (a *TrackerAgent) DefaultIngestOptions() IngestOptions {
	t := a.config.Tracker
	return IngestOptions{
		ChannelIDs:      t.Channels,
		Niche:           t.Niche,
		PerChannelLimit: t.VideosPerChannel,
		RateLimitDelay:  time.Duration(t.RateLimitSeconds) * time.Second,
		IgnoreOld:       !t.IncludeOld,
		Provider:        a.config.AI.Provider,
	}
}

func (a *TrackerAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	result, err := a.Ingest(ctx, a.DefaultIngestOptions())
	if err != nil {
		return fmt.Errorf("failed to ingest channels: %w", err)
	}

	windowHours := a.config.Tracker.WindowHours
	recent := a.store.Recent(windowHours)
	report := brief.Build(recent, windowHours, a.now())
	log.Printf("Brief generated over %d posts from the last %d hours", report.PostCount, windowHours)

	if events != nil && events.OnReport != nil {
		events.OnReport(report)
	}

	if a.emailSender != nil {
		if report.PostCount == 0 {
			log.Println("No recent posts, skipping email")
		} else if err := a.emailSender.SendBrief(report); err != nil {
			log.Printf("Warning: Failed to send brief email: %v", err)
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("failed to send brief email: %w", err), time.Since(startTime))
			}
		} else {
			log.Println("Brief email sent successfully")
		}
	}

	metrics := TrackerMetrics{
		Ingest:      result.Stats,
		RecentPosts: report.PostCount,
	}
	if len(report.TopTrends) > 0 {
		metrics.TopTrend = report.TopTrends[0].Trend
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}

	return nil
}
