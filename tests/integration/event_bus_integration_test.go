//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banjirlab/relief-assistant/internal/adapters/events"
	"github.com/banjirlab/relief-assistant/internal/adapters/storage"
	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	channel := providers.EventChannelStatusUpdates
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := entities.NewCenterStatusEvent(
		"Dewan Serbaguna Gombak",
		entities.LiveStatusOK,
		entities.LiveStatusWarning,
		"latest report: NO_FOOD",
	)

	err = eventBus.Publish(context.Background(), channel, event)
	require.NoError(t, err)

	received1 := waitForStatusEvent(t, sub1)
	received2 := waitForStatusEvent(t, sub2)

	assert.Equal(t, event.CenterName, received1.CenterName)
	assert.Equal(t, event.NewStatus, received1.NewStatus)
	assert.Equal(t, event.CenterName, received2.CenterName)
	assert.Equal(t, event.NewStatus, received2.NewStatus)
}

func TestConsensusRebuild_PublishesStatusChangeOverRedis(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventChan, err := eventBus.Subscribe(ctx, providers.EventChannelStatusUpdates)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	reportLog := storage.NewFileReportLog(filepath.Join(t.TempDir(), "reports.jsonl"))
	now := time.Now().Unix()
	require.NoError(t, reportLog.Append(ctx, entities.StatusReport{
		ID:         "rep-redis-1",
		CenterName: "SK Gombak Setia",
		Status:     entities.ReportStatusCriticalIssue,
		ReporterID: "reporter-1",
		Timestamp:  now - 60,
	}))
	require.NoError(t, reportLog.Append(ctx, entities.StatusReport{
		ID:         "rep-redis-2",
		CenterName: "SK Gombak Setia",
		Status:     entities.ReportStatusFull,
		ReporterID: "reporter-2",
		Timestamp:  now,
	}))

	consensus := services.NewConsensusService(reportLog, eventBus, 0, 0)
	consensus.Rebuild(ctx)

	received := waitForStatusEvent(t, eventChan)
	assert.Equal(t, "SK Gombak Setia", received.CenterName)
	assert.Equal(t, entities.LiveStatusOK, received.OldStatus)
	assert.Equal(t, entities.LiveStatusCriticalIssue, received.NewStatus)

	status, ok := consensus.StatusFor("SK Gombak Setia")
	require.True(t, ok)
	assert.Equal(t, 2, status.CriticalCount)
}
