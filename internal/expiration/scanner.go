package expiration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benbjohnson/clock"

	"taxiads-backend/internal/database/models"
)

// AdReader is the read capability the scanner needs from the store.
type AdReader interface {
	FindAll(ctx context.Context) ([]models.Advertisement, error)
}

// Candidate pairs an ad selected for downgrade with its resolved expiry.
type Candidate struct {
	Ad        models.Advertisement
	ExpiresAt time.Time
}

// Scanner selects the exact set of ads that must be downgraded right now.
// It is a pure read + filter: no side effects.
type Scanner struct {
	repo  AdReader
	clock clock.Clock
}

// NewScanner creates a new expiration scanner.
func NewScanner(repo AdReader, clk clock.Clock) *Scanner {
	if repo == nil {
		log.Fatal("Expiration Scanner: ad reader is nil")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Scanner{repo: repo, clock: clk}
}

// Scan reads a full snapshot of the live ads and returns those on a premium
// tier whose expiry has elapsed. An ad whose expiryDate cannot be resolved
// is excluded, never an error. Status is deliberately not part of the
// predicate: a pending premium ad whose paid window lapsed before review is
// downgraded like any other.
func (s *Scanner) Scan(ctx context.Context) ([]Candidate, error) {
	ads, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("expiration scan failed to read ads: %w", err)
	}

	now := s.clock.Now()
	var candidates []Candidate
	for i := range ads {
		ad := ads[i]
		if !ad.IsPremium() {
			continue
		}
		expiresAt, ok := ResolveExpiry(ad.ExpiryDate)
		if !ok {
			if ad.ExpiryDate != nil {
				log.Printf("[ExpirationScanner Ad:%s] Unresolvable expiryDate %v, treating as non-expiring", ad.ID.Hex(), ad.ExpiryDate)
			}
			continue
		}
		if expiresAt.After(now) {
			continue
		}
		candidates = append(candidates, Candidate{Ad: ad, ExpiresAt: expiresAt})
	}
	return candidates, nil
}
