package scans

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
	"github.com/InonELGABSI/housescanner/internal/services/checklists"
)

type processorFixture struct {
	processor *Processor
	scans     *fakeScanStorage
	houses    *fakeHouseStorage
	queue     *fakeQueue
	analysis  *fakeAnalysis
	events    *fakeEvents
}

func newProcessorFixture(t *testing.T, analyzeFn func(ctx context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error)) *processorFixture {
	t.Helper()

	scans := newFakeScanStorage()
	houses := newFakeHouseStorage()
	queue := newFakeQueue()
	analysis := &fakeAnalysis{analyzeFn: analyzeFn}
	events := &fakeEvents{}
	checklistSvc := checklists.NewService(newFakeChecklistStorage(), common.GetLogger())

	processor := NewProcessor(queue, scans, houses, checklistSvc, analysis, events, common.GetLogger(), 1)

	return &processorFixture{
		processor: processor,
		scans:     scans,
		houses:    houses,
		queue:     queue,
		analysis:  analysis,
		events:    events,
	}
}

func (f *processorFixture) seedScan(t *testing.T, roomCount int) *models.Scan {
	t.Helper()
	seedHouse(t, f.houses, roomCount)

	scan := &models.Scan{
		ID:      "scan-1",
		HouseID: "house-1",
		UserID:  "user_1",
		Status:  models.ScanStatusPending,
	}
	require.NoError(t, f.scans.SaveScan(context.Background(), scan))
	return scan
}

func TestExecuteScanSuccess(t *testing.T) {
	fixture := newProcessorFixture(t, func(_ context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		rooms := make([]interfaces.RoomAnalysis, len(req.Rooms))
		for i, room := range req.Rooms {
			rooms[i] = interfaces.RoomAnalysis{
				RoomID:   room.RoomID,
				Findings: []models.Finding{{ItemID: "window", Answer: "yes", Confidence: 0.8}},
				Summary:  "looks fine",
			}
		}
		return &interfaces.AnalyzeResponse{ScanID: req.ScanID, Summary: "solid house", Rooms: rooms}, nil
	})
	fixture.seedScan(t, 2)
	ctx := context.Background()

	err := fixture.processor.executeScan(ctx, &models.ScanJob{ScanID: "scan-1", UserID: "user_1"})
	require.NoError(t, err)

	scan, err := fixture.scans.GetScan(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCompleted, scan.Status)
	assert.Equal(t, "solid house", scan.Summary)
	assert.Equal(t, 1, scan.Attempts)
	assert.NotNil(t, scan.StartedAt)
	assert.NotNil(t, scan.CompletedAt)

	results, err := fixture.scans.GetRoomResults(ctx, "scan-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "scan-1", results[0].ScanID)
	assert.Equal(t, "bedroom", results[0].RoomType)
	require.Len(t, results[0].Findings, 1)
	assert.Equal(t, "window", results[0].Findings[0].ItemID)

	assert.Equal(t, []interfaces.EventType{
		interfaces.EventScanStarted,
		interfaces.EventScanProgress,
		interfaces.EventScanCompleted,
	}, fixture.events.types())

	// The outbound request carried the house shape and the room photos
	require.Len(t, fixture.analysis.requests, 1)
	req := fixture.analysis.requests[0]
	assert.Equal(t, "apartment", req.HouseType)
	require.Len(t, req.Rooms, 2)
	assert.Equal(t, []string{"https://photos/1.jpg"}, req.Rooms[0].Photos)
}

func TestExecuteScanSkipsTerminalScan(t *testing.T) {
	fixture := newProcessorFixture(t, func(context.Context, *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		t.Fatal("analysis must not be called for a terminal scan")
		return nil, nil
	})
	scan := fixture.seedScan(t, 1)
	ctx := context.Background()

	require.NoError(t, fixture.scans.UpdateScanStatus(ctx, scan.ID, models.ScanStatusCancelled, ""))

	err := fixture.processor.executeScan(ctx, &models.ScanJob{ScanID: scan.ID, UserID: "user_1"})
	require.NoError(t, err)

	got, err := fixture.scans.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCancelled, got.Status)
	assert.Empty(t, fixture.events.types())
}

func TestExecuteScanAnalysisFailure(t *testing.T) {
	fixture := newProcessorFixture(t, func(context.Context, *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		return nil, fmt.Errorf("analysis service unreachable")
	})
	fixture.seedScan(t, 1)
	ctx := context.Background()

	err := fixture.processor.executeScan(ctx, &models.ScanJob{ScanID: "scan-1", UserID: "user_1"})
	require.ErrorContains(t, err, "unreachable")

	// The scan stays running until the caller marks it failed
	fixture.processor.failScan(ctx, "scan-1", err.Error())

	scan, err := fixture.scans.GetScan(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusFailed, scan.Status)
	assert.Contains(t, scan.Error, "unreachable")

	results, err := fixture.scans.GetRoomResults(ctx, "scan-1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessNextJobFullPipeline(t *testing.T) {
	fixture := newProcessorFixture(t, func(_ context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		return &interfaces.AnalyzeResponse{ScanID: req.ScanID, Summary: "done"}, nil
	})
	fixture.seedScan(t, 1)
	ctx := context.Background()

	job := &models.ScanJob{ScanID: "scan-1", UserID: "user_1"}
	payload, err := job.ToJSON()
	require.NoError(t, err)
	require.NoError(t, fixture.queue.Enqueue(ctx, interfaces.Message{
		JobID:   "scan-1",
		Type:    JobTypeScan,
		Payload: payload,
	}))

	processed := fixture.processor.processNextJob(0)
	assert.True(t, processed)

	scan, err := fixture.scans.GetScan(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusCompleted, scan.Status)

	// The message was acked
	size, err := fixture.queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestProcessNextJobAcksFailedScan(t *testing.T) {
	fixture := newProcessorFixture(t, func(context.Context, *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		return nil, fmt.Errorf("analysis exploded")
	})
	fixture.seedScan(t, 1)
	ctx := context.Background()

	job := &models.ScanJob{ScanID: "scan-1", UserID: "user_1"}
	payload, err := job.ToJSON()
	require.NoError(t, err)
	require.NoError(t, fixture.queue.Enqueue(ctx, interfaces.Message{JobID: "scan-1", Type: JobTypeScan, Payload: payload}))

	processed := fixture.processor.processNextJob(0)
	assert.True(t, processed)

	scan, err := fixture.scans.GetScan(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanStatusFailed, scan.Status)

	// Failed scans do not loop: the message is still acked
	size, err := fixture.queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	types := fixture.events.types()
	assert.Contains(t, types, interfaces.EventScanFailed)
}

func TestProcessNextJobDropsMalformedPayload(t *testing.T) {
	fixture := newProcessorFixture(t, func(context.Context, *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		t.Fatal("analysis must not be called for a malformed job")
		return nil, nil
	})
	ctx := context.Background()

	require.NoError(t, fixture.queue.Enqueue(ctx, interfaces.Message{
		JobID:   "scan-junk",
		Type:    JobTypeScan,
		Payload: []byte("{not json"),
	}))

	processed := fixture.processor.processNextJob(0)
	assert.True(t, processed)

	size, err := fixture.queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestProcessNextJobEmptyQueue(t *testing.T) {
	fixture := newProcessorFixture(t, func(context.Context, *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		return nil, nil
	})

	assert.False(t, fixture.processor.processNextJob(0))
}

func TestProcessorStartStop(t *testing.T) {
	fixture := newProcessorFixture(t, func(_ context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
		return &interfaces.AnalyzeResponse{ScanID: req.ScanID}, nil
	})

	fixture.processor.Start()
	// Second start is a no-op
	fixture.processor.Start()
	fixture.processor.Stop()
	// Second stop is a no-op
	fixture.processor.Stop()
}
