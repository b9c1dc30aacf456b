package scans

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
	"github.com/InonELGABSI/housescanner/internal/services/checklists"
)

// Backoff configuration for idle polling
const (
	minBackoff = 100 * time.Millisecond // Initial backoff when queue is empty
	maxBackoff = 5 * time.Second        // Maximum backoff duration
)

// Processor consumes scan jobs from the queue, forwards them to the analysis
// service, and commits the results. Multiple worker goroutines process jobs
// concurrently; each scan is independent.
type Processor struct {
	queueMgr    interfaces.QueueManager
	scans       interfaces.ScanStorage
	houses      interfaces.HouseStorage
	checklists  *checklists.Service
	analysis    interfaces.AnalysisService
	events      interfaces.EventService
	logger      arbor.ILogger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	mu          sync.Mutex
	concurrency int
}

// NewProcessor creates a new scan processor.
// The concurrency parameter controls how many scans can be processed in parallel.
func NewProcessor(
	queueMgr interfaces.QueueManager,
	scans interfaces.ScanStorage,
	houses interfaces.HouseStorage,
	checklistSvc *checklists.Service,
	analysisSvc interfaces.AnalysisService,
	eventSvc interfaces.EventService,
	logger arbor.ILogger,
	concurrency int,
) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	if concurrency < 1 {
		concurrency = 1
	}

	return &Processor{
		queueMgr:    queueMgr,
		scans:       scans,
		houses:      houses,
		checklists:  checklistSvc,
		analysis:    analysisSvc,
		events:      eventSvc,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		concurrency: concurrency,
	}
}

// Start starts the scan processor.
// This should be called after all services are fully initialized.
func (p *Processor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.logger.Warn().Msg("Scan processor already running")
		return
	}

	p.running = true
	p.logger.Info().
		Int("concurrency", p.concurrency).
		Msg("Starting scan processor")

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.processJobs(i)
	}
}

// Stop stops the scan processor gracefully.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.logger.Info().Msg("Stopping scan processor...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info().Msg("Scan processor stopped")
}

// processJobs is the main scan processing loop.
// workerID identifies which worker goroutine this is (for logging).
func (p *Processor) processJobs(workerID int) {
	defer p.wg.Done()

	// Panic recovery so a crash in one worker is logged instead of killing
	// the whole process silently
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", getStackTrace()).
				Int("worker_id", workerID).
				Msg("Scan processor goroutine panicked")
		}
	}()

	p.logger.Debug().
		Int("worker_id", workerID).
		Msg("Scan processor worker started")

	// Backoff tracking for idle polling - reduces CPU when queue is empty
	currentBackoff := minBackoff

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug().
				Int("worker_id", workerID).
				Msg("Scan processor worker stopping")
			return
		default:
			jobProcessed := p.processNextJob(workerID)

			if jobProcessed {
				currentBackoff = minBackoff
			} else {
				// No job available - apply backoff to reduce CPU usage
				select {
				case <-p.ctx.Done():
					return
				case <-time.After(currentBackoff):
				}

				currentBackoff = currentBackoff * 2
				if currentBackoff > maxBackoff {
					currentBackoff = maxBackoff
				}
			}
		}
	}
}

// getStackTrace returns a formatted stack trace for panic debugging
func getStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// processNextJob processes the next scan job from the queue.
// Returns true if a job was processed, false if no job was available.
func (p *Processor) processNextJob(workerID int) bool {
	ctx, cancel := context.WithTimeout(p.ctx, 1*time.Second)
	defer cancel()

	var msg *interfaces.Message
	var deleteFn func() error

	// Panic recovery for individual job processing
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", getStackTrace()).
				Int("worker_id", workerID).
				Msg("Recovered from panic in scan processing")

			if msg != nil {
				p.failScan(p.ctx, msg.JobID, fmt.Sprintf("scan panicked: %v", r))
				if deleteFn != nil {
					if err := deleteFn(); err != nil {
						p.logger.Error().Err(err).Msg("Failed to delete message after panic")
					}
				}
			}
		}
	}()

	msg, deleteFn, err := p.queueMgr.Receive(ctx)
	if err != nil {
		// No message available - trigger backoff
		return false
	}

	jobStartTime := time.Now()

	p.logger.Info().
		Str("scan_id", msg.JobID).
		Int("worker_id", workerID).
		Msg("Scan job started")

	job, err := models.ScanJobFromJSON(msg.Payload)
	if err == nil {
		err = job.Validate()
	}
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("scan_id", msg.JobID).
			Msg("Malformed scan job")

		// Delete malformed message from queue
		if err := deleteFn(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to delete malformed message")
		}
		return true
	}

	if err := p.executeScan(p.ctx, job); err != nil {
		p.logger.Error().
			Err(err).
			Str("scan_id", job.ScanID).
			Int("worker_id", workerID).
			Dur("duration", time.Since(jobStartTime)).
			Msg("Scan failed")

		p.failScan(p.ctx, job.ScanID, err.Error())
	} else {
		p.logger.Info().
			Str("scan_id", job.ScanID).
			Int("worker_id", workerID).
			Dur("duration", time.Since(jobStartTime)).
			Msg("Scan completed")
	}

	// The analysis client owns retries; the queue message is always acked so
	// a failed scan does not loop
	if err := deleteFn(); err != nil {
		p.logger.Error().
			Err(err).
			Str("scan_id", job.ScanID).
			Msg("Failed to delete message from queue")
	}

	return true
}

// executeScan runs the full pipeline for one scan: load the house and rooms,
// compute the merged checklists, call the analysis service, and commit the
// results in one transaction.
func (p *Processor) executeScan(ctx context.Context, job *models.ScanJob) error {
	scan, err := p.scans.GetScan(ctx, job.ScanID)
	if err != nil {
		return err
	}
	if scan.Status.IsTerminal() {
		// Cancelled before processing, or a redelivered message for a scan
		// that already finished
		p.logger.Debug().
			Str("scan_id", scan.ID).
			Str("status", string(scan.Status)).
			Msg("Skipping scan in terminal state")
		return nil
	}

	if err := p.scans.UpdateScanStatus(ctx, scan.ID, models.ScanStatusRunning, ""); err != nil {
		return err
	}
	p.publishEvent(ctx, interfaces.EventScanStarted, scan.ID, nil)

	house, err := p.houses.GetHouse(ctx, scan.HouseID)
	if err != nil {
		return err
	}
	rooms, err := p.houses.GetRoomsByHouse(ctx, scan.HouseID)
	if err != nil {
		return err
	}

	merged, err := p.checklists.MergedForUser(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to compute merged checklists: %w", err)
	}

	req := buildAnalyzeRequest(scan, house, rooms, merged)
	p.publishEvent(ctx, interfaces.EventScanProgress, scan.ID, map[string]interface{}{
		"stage": "submitted",
		"rooms": len(req.Rooms),
	})

	resp, err := p.analysis.Analyze(ctx, req)
	if err != nil {
		return err
	}

	results := buildRoomResults(scan.ID, rooms, resp)

	// Re-read the scan row so the running-state bookkeeping (started_at,
	// attempts) survives the final write
	scan, err = p.scans.GetScan(ctx, scan.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	scan.Status = models.ScanStatusCompleted
	scan.Summary = resp.Summary
	scan.Error = ""
	scan.CompletedAt = &now
	if err := p.scans.SaveScanResults(ctx, scan, results); err != nil {
		return err
	}

	p.publishEvent(ctx, interfaces.EventScanCompleted, scan.ID, map[string]interface{}{
		"rooms": len(results),
	})

	return nil
}

// failScan marks a scan failed and publishes the failure event.
func (p *Processor) failScan(ctx context.Context, scanID, errorMsg string) {
	if err := p.scans.UpdateScanStatus(ctx, scanID, models.ScanStatusFailed, errorMsg); err != nil {
		p.logger.Error().Err(err).Str("scan_id", scanID).Msg("Failed to mark scan failed")
	}
	p.publishEvent(ctx, interfaces.EventScanFailed, scanID, map[string]interface{}{
		"error": errorMsg,
	})
}

func (p *Processor) publishEvent(ctx context.Context, eventType interfaces.EventType, scanID string, payload map[string]interface{}) {
	event := interfaces.Event{
		Type:    eventType,
		ScanID:  scanID,
		Payload: payload,
	}
	if err := p.events.Publish(ctx, event); err != nil {
		p.logger.Warn().Err(err).Str("scan_id", scanID).Msg("Failed to publish event")
	}
}

// buildAnalyzeRequest assembles the outbound payload. The three merged
// checklist documents are embedded verbatim.
func buildAnalyzeRequest(scan *models.Scan, house *models.House, rooms []*models.Room, merged *checklists.MergedChecklists) *interfaces.AnalyzeRequest {
	roomPayloads := make([]interfaces.RoomPayload, 0, len(rooms))
	for _, room := range rooms {
		photos := make([]string, 0, len(room.Photos))
		for _, photo := range room.Photos {
			photos = append(photos, photo.URL)
		}
		roomPayloads = append(roomPayloads, interfaces.RoomPayload{
			RoomID:   room.ID,
			RoomType: room.RoomType,
			Photos:   photos,
		})
	}

	return &interfaces.AnalyzeRequest{
		ScanID:            scan.ID,
		HouseType:         house.HouseType,
		Rooms:             roomPayloads,
		HouseChecklist:    merged.House,
		RoomsChecklist:    merged.Rooms,
		ProductsChecklist: merged.Products,
	}
}

// buildRoomResults maps the analysis response onto persisted room-result
// rows. Rooms the service returned nothing for are skipped.
func buildRoomResults(scanID string, rooms []*models.Room, resp *interfaces.AnalyzeResponse) []*models.RoomResult {
	roomTypes := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomTypes[room.ID] = room.RoomType
	}

	results := make([]*models.RoomResult, 0, len(resp.Rooms))
	for _, ra := range resp.Rooms {
		results = append(results, &models.RoomResult{
			ID:       common.NewResultID(),
			ScanID:   scanID,
			RoomID:   ra.RoomID,
			RoomType: roomTypes[ra.RoomID],
			Findings: ra.Findings,
			Summary:  ra.Summary,
		})
	}
	return results
}
