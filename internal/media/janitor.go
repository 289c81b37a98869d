package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// AssetDeleter removes a stored asset by identifier.
type AssetDeleter interface {
	Delete(ctx context.Context, assetID string) error
}

// JanitorConfig controls the concurrency characteristics of the janitor.
type JanitorConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Janitor deletes replaced or orphaned assets in the background. Failures are
// logged and never reach the request that scheduled the deletion.
type Janitor struct {
	store   AssetDeleter
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var (
	// ErrJanitorClosed is returned by Enqueue after Shutdown.
	ErrJanitorClosed = errors.New("asset janitor closed")
	// ErrJanitorFull is returned by Enqueue when the queue had no room for
	// some of the assets. Those assets are not retried.
	ErrJanitorFull = errors.New("asset janitor queue full")
)

// NewJanitor starts the worker pool.
func NewJanitor(store AssetDeleter, cfg JanitorConfig, logger *slog.Logger) *Janitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		store:   store,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan string, cfg.QueueSize),
	}

	j.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go j.worker()
	}

	return j
}

// Enqueue schedules deletion of the supplied assets without blocking. Empty
// ids are skipped; ids that do not fit in the queue are reported through
// ErrJanitorFull.
func (j *Janitor) Enqueue(ctx context.Context, assetIDs ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrJanitorClosed
	}

	var dropped []string
	for _, id := range assetIDs {
		if id == "" {
			continue
		}
		select {
		case j.jobs <- id:
		default:
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		return fmt.Errorf("%w: dropped %s", ErrJanitorFull, strings.Join(dropped, ", "))
	}
	return nil
}

// Shutdown stops accepting work and waits for queued deletions to finish.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.jobs)
	}
	j.mu.Unlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()

	for id := range j.jobs {
		j.delete(id)
	}
}

func (j *Janitor) delete(assetID string) {
	if j.store == nil {
		j.logger.Error("asset janitor missing store", "assetId", assetID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.store.Delete(ctx, assetID); err != nil {
		j.logger.Warn("delete asset", "assetId", assetID, "error", err)
		return
	}
	j.logger.Debug("asset deleted", "assetId", assetID)
}
