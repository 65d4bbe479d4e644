package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/martyfest/party-platform/internal/vote"
)

// VoteRepository persists costume tally snapshots.
type VoteRepository struct {
	pool *pgxpool.Pool
}

var _ vote.SnapshotStore = (*VoteRepository)(nil)

func NewVoteRepository(pool *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{pool: pool}
}

// InsertVoteSnapshot stores one tally snapshot. Identical consecutive
// tallies share a source hash, which keeps the audit trail queryable.
func (r *VoteRepository) InsertVoteSnapshot(ctx context.Context, takenAt time.Time, payload []byte, sourceHash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO vote_snapshots (taken_at, payload, source_hash)
		VALUES ($1, $2, $3)`,
		takenAt, payload, sourceHash)
	if err != nil {
		return fmt.Errorf("insert vote snapshot: %w", err)
	}
	return nil
}
