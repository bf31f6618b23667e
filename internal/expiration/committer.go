package expiration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benbjohnson/clock"

	"taxiads-backend/internal/database"
	"taxiads-backend/internal/database/models"
)

// DowngradeWriter is the write capability the committer needs from the store.
// The batch must be atomic: all updates commit or none do.
type DowngradeWriter interface {
	BulkDowngrade(ctx context.Context, updates []database.DowngradeUpdate) error
}

// DowngradedAd describes one downgraded ad for operator visibility.
type DowngradedAd struct {
	ID          string
	Title       string
	OriginalTag string
	ExpiryDate  time.Time
}

// Result reports what an expiration run did. A zero ProcessedCount is a
// valid, silent success. A non-zero SkippedCount means ads were selected
// but not committed and always comes with an error.
type Result struct {
	ProcessedCount int
	DowngradedAds  []DowngradedAd
	SkippedCount   int
}

// Committer transitions every selected ad to the downgraded state in one
// atomic batch and records provenance (original tag, timestamp, auto flag).
type Committer struct {
	repo  DowngradeWriter
	clock clock.Clock
}

// NewCommitter creates a new downgrade committer.
func NewCommitter(repo DowngradeWriter, clk clock.Clock) *Committer {
	if repo == nil {
		log.Fatal("Downgrade Committer: downgrade writer is nil")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Committer{repo: repo, clock: clk}
}

// Commit applies the downgrade mutation to every candidate as one batch.
// There are no internal retries: a failed batch is reported whole, with
// SkippedCount set to the batch size, and the caller decides when to retry.
func (c *Committer) Commit(ctx context.Context, candidates []Candidate) (Result, error) {
	if len(candidates) == 0 {
		return Result{DowngradedAds: []DowngradedAd{}}, nil
	}

	now := c.clock.Now()
	updates := make([]database.DowngradeUpdate, 0, len(candidates))
	report := make([]DowngradedAd, 0, len(candidates))
	for _, cand := range candidates {
		updates = append(updates, database.DowngradeUpdate{
			ID:             cand.Ad.ID,
			Tag:            models.TagFree,
			OriginalTag:    cand.Ad.Tag,
			Status:         models.StatusApproved,
			Approved:       true,
			AutoDowngraded: true,
			DowngradedAt:   now,
			UpdatedAt:      now,
		})
		report = append(report, DowngradedAd{
			ID:          cand.Ad.ID.Hex(),
			Title:       cand.Ad.Title,
			OriginalTag: cand.Ad.Tag,
			ExpiryDate:  cand.ExpiresAt,
		})
	}

	if err := c.repo.BulkDowngrade(ctx, updates); err != nil {
		return Result{
			DowngradedAds: []DowngradedAd{},
			SkippedCount:  len(candidates),
		}, fmt.Errorf("downgrade batch of %d ads failed: %w", len(candidates), err)
	}

	return Result{
		ProcessedCount: len(candidates),
		DowngradedAds:  report,
	}, nil
}
