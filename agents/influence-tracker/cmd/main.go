package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"influence-tracker/agents/influence-tracker"
	"influence-tracker/agents/influence-tracker/youtube"
	"influence-tracker/internal/models"
	"influence-tracker/shared/brief"
	"influence-tracker/shared/config"
	"influence-tracker/shared/export"
	"influence-tracker/shared/scheduler"
	"influence-tracker/shared/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var once bool

	rootCmd := &cobra.Command{
		Use:   "influence-tracker",
		Short: "Track trends and sentiment across YouTube channels",
		Long: "Influence Tracker summarizes recent uploads from a list of YouTube channels, " +
			"caches them locally and composes a trend and sentiment brief.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			agent := influencetracker.NewTrackerAgent(cfg)
			s := scheduler.New(cfg, agent)

			if once {
				fmt.Fprintln(cmd.OutOrStdout(), "Running once...")
				if err := agent.Initialize(); err != nil {
					return fmt.Errorf("failed to initialize agent: %w", err)
				}
				if err := s.RunOnce(cmd.Context()); err != nil {
					return err
				}
				if report := s.Monitor().LastBrief(); report != nil {
					printReport(cmd, report)
				}
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Starting scheduler...")
			if err := s.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler failed: %w", err)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&once, "once", false, "Run a single ingest and brief cycle, then exit")

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newBriefCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func newIngestCmd() *cobra.Command {
	var (
		channels   string
		niche      string
		limit      int
		delay      int
		includeOld bool
		provider   string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch and summarize recent videos from the configured channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("provider") {
				cfg.AI.Provider = provider
			}

			agent := influencetracker.NewTrackerAgent(cfg)
			if err := agent.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize agent: %w", err)
			}

			opts := agent.DefaultIngestOptions()
			if flags.Changed("channels") {
				opts.ChannelIDs = youtube.ParseChannelIDs(channels)
			}
			if flags.Changed("niche") {
				opts.Niche = niche
			}
			if flags.Changed("limit") {
				opts.PerChannelLimit = limit
			}
			if flags.Changed("delay") {
				opts.RateLimitDelay = time.Duration(delay) * time.Second
			}
			if flags.Changed("include-old") {
				opts.IgnoreOld = !includeOld
			}

			if len(opts.ChannelIDs) == 0 {
				return fmt.Errorf("no channels to ingest (set tracker.channels or pass --channels)")
			}

			result, err := agent.Ingest(cmd.Context(), opts)
			if result != nil {
				printIngestStats(cmd, result.Stats)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&channels, "channels", "c", "", "Comma or newline separated channel IDs")
	cmd.Flags().StringVarP(&niche, "niche", "n", "", "Niche used to steer the summaries")
	cmd.Flags().IntVarP(&limit, "limit", "l", 3, "Videos to fetch per channel")
	cmd.Flags().IntVar(&delay, "delay", 5, "Seconds to wait between summaries within a channel")
	cmd.Flags().BoolVar(&includeOld, "include-old", false, "Keep videos older than seven days")
	cmd.Flags().StringVarP(&provider, "provider", "p", "gemini", "Summarization provider (gemini or openai)")

	return cmd
}

func newBriefCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Print the trend and sentiment brief for recent posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("hours") {
				hours = cfg.Tracker.WindowHours
			}

			report := brief.Build(store.Recent(hours), hours, time.Now())
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", brief.DefaultWindowHours, "Trailing window in hours")

	return cmd
}

func newExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all cached posts to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore()
			if err != nil {
				return err
			}

			posts := store.Load().Posts
			if len(posts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), yellow("No posts to export"))
				return nil
			}

			if !cmd.Flags().Changed("dir") {
				dir = cfg.Tracker.ExportDir
			}

			path, err := export.ToFile(dir, posts, time.Now())
			if err != nil {
				return fmt.Errorf("failed to export posts: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d posts to %s\n", green("✓"), len(posts), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory for the export file")

	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cached posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}

			removed, err := store.Clear()
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Cache cleared\n", green("✓"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), yellow("No cache to clear"))
			}
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}

			cached := store.Load()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", bold("Cache:"), store.Path())
			fmt.Fprintf(out, "  Posts:        %s\n", cyan(len(cached.Posts)))
			fmt.Fprintf(out, "  Last run:     %s\n", orNever(cached.Meta.LastRun))
			fmt.Fprintf(out, "  Last updated: %s\n", orNever(cached.Meta.LastUpdated))
			return nil
		},
	}
}

func openStore() (*config.Config, *storage.PostStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := storage.NewPostStore(cfg.Tracker.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open post store: %w", err)
	}
	return cfg, store, nil
}

func orNever(s *string) string {
	if s == nil || *s == "" {
		return "never"
	}
	return *s
}

func printIngestStats(cmd *cobra.Command, stats influencetracker.IngestStats) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s\n", bold("Ingestion summary"))
	fmt.Fprintf(out, "  Channels:     %d requested, %d processed\n", stats.ChannelsRequested, stats.ChannelsProcessed)
	if stats.InvalidChannels > 0 {
		fmt.Fprintf(out, "  Invalid IDs:  %s\n", yellow(stats.InvalidChannels))
	}
	if stats.FetchErrors > 0 {
		fmt.Fprintf(out, "  Fetch errors: %s\n", red(stats.FetchErrors))
	}
	fmt.Fprintf(out, "  Videos:       %d summarized (%d fallbacks)\n", stats.Videos, stats.Fallbacks)
	fmt.Fprintf(out, "  Stored:       %s added, %d skipped\n", green(stats.Added), stats.Skipped)
	if stats.Interrupted {
		fmt.Fprintln(out, yellow("  Interrupted before all channels were processed"))
	}
}

func printReport(cmd *cobra.Command, report *models.BriefReport) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s (last %d hours, %d posts)\n\n", bold("Influence Brief"), report.WindowHours, report.PostCount)
	fmt.Fprintf(out, "%s\n\n", report.Brief)

	fmt.Fprintln(out, bold("Top trends"))
	fmt.Fprintf(out, "%s\n\n", cyan(report.TopFormatted))

	mix := report.Sentiment
	fmt.Fprintln(out, bold("Sentiment"))
	fmt.Fprintf(out, "  %s %d  %s %d  %s %d\n",
		green("positive"), mix.Positive,
		"neutral", mix.Neutral,
		red("negative"), mix.Negative)
}
