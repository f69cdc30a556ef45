package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
	"github.com/banjirlab/relief-assistant/internal/domain/repositories"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultReportTimeoutSec is the freshness window: reports this old or
	// older carry no weight.
	DefaultReportTimeoutSec = 21600

	// DefaultCriticalThreshold is how many independent critical reports it
	// takes to confirm a critical issue. One report alone only warns.
	DefaultCriticalThreshold = 2
)

// statusSnapshot is one immutable consensus view. A rebuild produces a brand
// new map and publishes it with a pointer swap; readers see either the old
// or the new complete map, never a partial one.
type statusSnapshot map[string]entities.AggregatedStatus

var (
	consensusMetricsOnce     sync.Once
	rebuildCounter           metric.Int64Counter
	rebuildDurationHistogram metric.Float64Histogram
)

// ConsensusService derives per-center live status from the append-only
// report log. Aggregation is stateless and idempotent; the service only
// caches the latest snapshot for readers.
type ConsensusService struct {
	reportLog  repositories.ReportLog
	eventBus   providers.EventBus
	timeoutSec int64
	threshold  int

	snapshot  atomic.Pointer[statusSnapshot]
	rebuildMu sync.Mutex
}

// NewConsensusService creates the consensus service. eventBus may be nil;
// non-positive tuning values fall back to the defaults.
func NewConsensusService(reportLog repositories.ReportLog, eventBus providers.EventBus, timeoutSec, threshold int) *ConsensusService {
	if timeoutSec <= 0 {
		timeoutSec = DefaultReportTimeoutSec
	}
	if threshold <= 0 {
		threshold = DefaultCriticalThreshold
	}
	return &ConsensusService{
		reportLog:  reportLog,
		eventBus:   eventBus,
		timeoutSec: int64(timeoutSec),
		threshold:  threshold,
	}
}

// Aggregate recomputes the consensus for every center from scratch. Reports
// at or beyond the freshness window and malformed records are dropped;
// centers with no surviving reports are absent from the result. Pure: same
// input, same output.
func (s *ConsensusService) Aggregate(reports []entities.StatusReport, now int64) map[string]entities.AggregatedStatus {
	grouped := make(map[string][]entities.StatusReport)
	for _, r := range reports {
		if !r.Valid() {
			continue
		}
		if now-r.Timestamp >= s.timeoutSec {
			continue
		}
		grouped[r.CenterName] = append(grouped[r.CenterName], r)
	}

	result := make(map[string]entities.AggregatedStatus, len(grouped))
	for name, group := range grouped {
		result[name] = s.aggregateGroup(name, group)
	}
	return result
}

func (s *ConsensusService) aggregateGroup(name string, group []entities.StatusReport) entities.AggregatedStatus {
	agg := entities.AggregatedStatus{
		CenterName:  name,
		ReportCount: len(group),
	}

	latest := group[0]
	for _, r := range group {
		if entities.IsCriticalReportStatus(r.Status) {
			agg.CriticalCount++
			agg.LatestCriticalStatus = r.Status
		}
		// >= so equal timestamps resolve to the later log entry.
		if r.Timestamp >= latest.Timestamp {
			latest = r
		}
	}
	agg.LatestStatus = latest.Status
	agg.LatestTimestamp = latest.Timestamp

	switch {
	case agg.CriticalCount >= s.threshold:
		agg.FinalStatus = entities.LiveStatusCriticalIssue
		agg.Reason = fmt.Sprintf("%d reports flag a critical issue (latest: %s)", agg.CriticalCount, agg.LatestStatus)
	case agg.CriticalCount == 1:
		agg.FinalStatus = entities.LiveStatusWarning
		agg.Reason = fmt.Sprintf("single unverified critical report (%s)", agg.LatestCriticalStatus)
	case entities.IsWarningReportStatus(agg.LatestStatus):
		agg.FinalStatus = entities.LiveStatusWarning
		agg.Reason = fmt.Sprintf("latest report: %s", agg.LatestStatus)
	default:
		// Free-text statuses carry no alert weight.
		agg.FinalStatus = entities.LiveStatusOK
		agg.Reason = fmt.Sprintf("latest report: %s", agg.LatestStatus)
	}
	return agg
}

// Rebuild re-reads the full report log, swaps in a fresh snapshot, and
// publishes a status-change event per center whose level moved. Data
// problems degrade to an empty snapshot rather than failing the caller.
func (s *ConsensusService) Rebuild(ctx context.Context) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()

	reports, err := s.reportLog.All(ctx)
	if err != nil {
		log.Printf("Warning: Failed to read report log, rebuilding with no reports: %v", err)
		reports = nil
	}

	next := statusSnapshot(s.Aggregate(reports, time.Now().Unix()))
	prev := s.snapshot.Swap(&next)

	s.publishChanges(ctx, prev, next)
	s.recordRebuild(ctx, time.Since(start))
}

// Snapshot returns the current consensus view. Callers must treat the map
// as read-only.
func (s *ConsensusService) Snapshot() map[string]entities.AggregatedStatus {
	if p := s.snapshot.Load(); p != nil {
		return *p
	}
	return map[string]entities.AggregatedStatus{}
}

// StatusFor returns the aggregated status for one center, if it has any
// live signal.
func (s *ConsensusService) StatusFor(centerName string) (entities.AggregatedStatus, bool) {
	agg, ok := s.Snapshot()[centerName]
	return agg, ok
}

func (s *ConsensusService) publishChanges(ctx context.Context, prev *statusSnapshot, next statusSnapshot) {
	if s.eventBus == nil {
		return
	}

	old := statusSnapshot{}
	if prev != nil {
		old = *prev
	}

	for name, agg := range next {
		oldStatus := entities.LiveStatusOK
		if before, ok := old[name]; ok {
			oldStatus = before.FinalStatus
		}
		if oldStatus == agg.FinalStatus {
			continue
		}
		event := entities.NewCenterStatusEvent(name, oldStatus, agg.FinalStatus, agg.Reason)
		if err := s.eventBus.Publish(ctx, providers.EventChannelStatusUpdates, event); err != nil {
			log.Printf("Warning: Failed to publish status event for %s: %v", name, err)
		}
	}

	// Centers whose reports all expired fall back to no-signal.
	for name, before := range old {
		if _, ok := next[name]; ok {
			continue
		}
		if before.FinalStatus == entities.LiveStatusOK {
			continue
		}
		event := entities.NewCenterStatusEvent(name, before.FinalStatus, entities.LiveStatusOK, "status reports expired")
		if err := s.eventBus.Publish(ctx, providers.EventChannelStatusUpdates, event); err != nil {
			log.Printf("Warning: Failed to publish status event for %s: %v", name, err)
		}
	}
}

func initConsensusMetrics() {
	meter := otel.Meter("github.com/banjirlab/relief-assistant/consensus")
	if counter, err := meter.Int64Counter(
		"consensus.rebuilds",
		metric.WithDescription("Count of consensus snapshot rebuilds"),
	); err == nil {
		rebuildCounter = counter
	}
	if hist, err := meter.Float64Histogram(
		"consensus.rebuild.duration",
		metric.WithDescription("Consensus rebuild duration in milliseconds"),
		metric.WithUnit("ms"),
	); err == nil {
		rebuildDurationHistogram = hist
	}
}

func (s *ConsensusService) recordRebuild(ctx context.Context, elapsed time.Duration) {
	consensusMetricsOnce.Do(initConsensusMetrics)
	if rebuildCounter != nil {
		rebuildCounter.Add(ctx, 1)
	}
	if rebuildDurationHistogram != nil {
		rebuildDurationHistogram.Record(ctx, float64(elapsed.Milliseconds()))
	}
}
