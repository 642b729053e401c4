package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"

	"influence-tracker/internal/models"
)

type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	lastBrief      *models.BriefReport
	nextRun        time.Time
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Don't change health status for partial failures
	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

// RecordBrief keeps the most recent brief for the /brief endpoint.
func (m *Monitor) RecordBrief(report *models.BriefReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastBrief = report
}

// LastBrief returns the most recent brief, or nil before the first run.
func (m *Monitor) LastBrief() *models.BriefReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBrief
}

// RecordNextRun notes when the scheduler will start the next cycle.
func (m *Monitor) RecordNextRun(next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRun = next
}

// NextRun returns the next scheduled cycle, or the zero time when nothing is scheduled.
func (m *Monitor) NextRun() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextRun
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s - %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("❌ Last run failed: %s - %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
}
