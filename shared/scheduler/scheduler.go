package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"influence-tracker/internal/models"
	"influence-tracker/shared/config"
	"influence-tracker/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Metrics is what an agent reports about a finished cycle.
type Metrics interface {
	GetSummary() string
}

// AgentEvents are the hooks an agent calls while a cycle runs. Any of them
// may be nil when the agent runs outside the scheduler.
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
	// OnReport publishes the latest brief for the health server.
	OnReport func(report *models.BriefReport)
}

type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize() error
}

// Scheduler runs ingest and brief cycles for one agent on a cron schedule and
// publishes their outcome through a Monitor.
type Scheduler struct {
	config  *config.Config
	monitor *monitoring.Monitor
	agent   Agent
	cron    *cron.Cron
}

func New(cfg *config.Config, agent Agent) *Scheduler {
	return &Scheduler{
		config:  cfg,
		monitor: monitoring.NewMonitor(),
		agent:   agent,
		// A panicking cycle is logged and the next tick still fires; a slow
		// cycle makes the following tick a no-op.
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// Monitor returns the monitor that records this scheduler's cycles.
func (s *Scheduler) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Start initializes the agent, serves health endpoints and runs cycles on the
// configured schedule until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	healthServer := monitoring.NewHealthServer(s.monitor, fmt.Sprintf("%d", s.config.Monitoring.HealthPort))
	healthServer.Start()
	defer healthServer.Shutdown(context.Background())

	var entryID cron.EntryID
	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("Error running scheduled cycle for %s: %v", s.agent.Name(), err)
		}
		s.recordNextRun(entryID)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %q: %w", s.config.Schedule, err)
	}

	if s.config.RunOnStart {
		log.Printf("Running startup cycle for %s", s.agent.Name())
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("Error running startup cycle for %s: %v", s.agent.Name(), err)
		}
	}

	s.cron.Start()
	s.recordNextRun(entryID)
	log.Printf("Scheduler started for %s with schedule %q, next cycle at %s",
		s.agent.Name(), s.config.Schedule, s.monitor.NextRun().Format(time.RFC3339))

	<-ctx.Done()
	log.Printf("Scheduler stopping for %s, waiting for the current cycle", s.agent.Name())
	<-s.cron.Stop().Done()
	s.monitor.RecordNextRun(time.Time{})
	return ctx.Err()
}

func (s *Scheduler) recordNextRun(id cron.EntryID) {
	if entry := s.cron.Entry(id); entry.Valid() {
		s.monitor.RecordNextRun(entry.Next)
	}
}

// RunOnce runs a single cycle and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()

	log.Printf("Starting %s cycle...", agentName)

	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", agentName, err), duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", agentName, err), duration)
		},
		OnReport: s.monitor.RecordBrief,
	}

	if err := s.agent.RunOnce(ctx, events); err != nil {
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s cycle failed: %w", agentName, err), time.Since(startTime))
		return fmt.Errorf("%s cycle failed: %w", agentName, err)
	}

	return nil
}
