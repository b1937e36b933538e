package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SyncRequest asks the ingestion service to run the initial mailbox sync.
type SyncRequest struct {
	JobID     string `json:"jobId"`
	AccountID string `json:"accountId"`
	UserID    string `json:"userId"`
}

// Publisher delivers one sync request. Implementations do not retry.
type Publisher interface {
	Publish(ctx context.Context, req SyncRequest) error
}

// SyncDispatcher hands sync requests to background workers. Dispatch never
// blocks the caller: when the queue is full the request is dropped.
type SyncDispatcher struct {
	publisher   Publisher
	jobQueue    chan SyncRequest
	workerWg    sync.WaitGroup
	workerCount int
	timeout     time.Duration
	started     bool
	stopped     bool
	mu          sync.RWMutex
}

// NewSyncDispatcher creates a new sync dispatcher
func NewSyncDispatcher(publisher Publisher, workerCount, queueSize int, timeout time.Duration) *SyncDispatcher {
	if workerCount <= 0 {
		workerCount = 2
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &SyncDispatcher{
		publisher:   publisher,
		jobQueue:    make(chan SyncRequest, queueSize),
		workerCount: workerCount,
		timeout:     timeout,
	}
}

// Start starts the dispatch workers
func (d *SyncDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}

	for i := 0; i < d.workerCount; i++ {
		d.workerWg.Add(1)
		go d.worker(i)
	}
	d.started = true
	log.Info().Int("workers", d.workerCount).Msg("sync dispatcher started")
}

// Stop drains the queue and waits for in-flight deliveries.
func (d *SyncDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.workerWg.Wait()
	log.Info().Msg("sync dispatcher stopped")
}

// Dispatch queues a sync for accountID and returns immediately.
// It reports whether the request was accepted.
func (d *SyncDispatcher) Dispatch(accountID, userID string) bool {
	req := SyncRequest{
		JobID:     uuid.NewString(),
		AccountID: accountID,
		UserID:    userID,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		log.Warn().Str("account_id", accountID).Msg("sync dispatcher stopped, dropping request")
		return false
	}

	select {
	case d.jobQueue <- req:
		return true
	default:
		log.Warn().Str("account_id", accountID).Str("user_id", userID).Msg("sync queue full, dropping request")
		return false
	}
}

func (d *SyncDispatcher) worker(id int) {
	defer d.workerWg.Done()

	for req := range d.jobQueue {
		d.deliver(req)
	}

	log.Debug().Int("worker", id).Msg("sync worker stopped")
}

func (d *SyncDispatcher) deliver(req SyncRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, req); err != nil {
		log.Error().Err(err).
			Str("job_id", req.JobID).
			Str("account_id", req.AccountID).
			Msg("initial sync notification failed")
		return
	}
	log.Info().Str("job_id", req.JobID).Str("account_id", req.AccountID).Msg("initial sync requested")
}
