package vote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotStore persists tally snapshots (Postgres in production).
type SnapshotStore interface {
	InsertVoteSnapshot(ctx context.Context, takenAt time.Time, payload []byte, sourceHash string) error
}

// SnapshotWorker periodically copies the Redis tally into Postgres so
// results survive a cache flush and the organizers get an audit trail.
type SnapshotWorker struct {
	svc      *Service
	store    SnapshotStore
	logger   zerolog.Logger
	interval time.Duration
	topN     int
}

func NewSnapshotWorker(svc *Service, store SnapshotStore, interval time.Duration, topN int, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if topN <= 0 {
		topN = 25
	}
	return &SnapshotWorker{
		svc:      svc,
		store:    store,
		logger:   logger.With().Str("component", "vote_snapshot_worker").Logger(),
		interval: interval,
		topN:     topN,
	}
}

// Run blocks until context cancellation, snapshotting on each tick.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	if err := w.snapshot(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("vote snapshot failed")
	}
}

func (w *SnapshotWorker) snapshot(ctx context.Context) error {
	entries, err := w.svc.Tally(ctx, w.topN)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	sourceHash := sha256.Sum256(payload)
	return w.store.InsertVoteSnapshot(ctx, time.Now().UTC(), payload, hex.EncodeToString(sourceHash[:]))
}
