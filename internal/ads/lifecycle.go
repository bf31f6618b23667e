package ads

import (
	"errors"
	"fmt"
	"time"

	"taxiads-backend/internal/database/models"
)

// Transition errors returned by the lifecycle functions.
var (
	ErrNotDraft    = errors.New("advertisement is not a draft")
	ErrNotRejected = errors.New("advertisement is not rejected")
	ErrNotPending  = errors.New("advertisement is not pending review")
	ErrNotApproved = errors.New("advertisement is not approved")
	ErrInvalidTag  = errors.New("invalid advertisement tag")
)

// approvedFor derives the redundant approved boolean from the status enum.
// The stored schema keeps both fields, so every write goes through
// setStatus to keep them from ever disagreeing.
func approvedFor(status string) bool {
	return status == models.StatusApproved
}

// setStatus is the single write path for status, approved and updatedAt.
func setStatus(ad *models.Advertisement, status string, now time.Time) {
	ad.Status = status
	ad.Approved = approvedFor(status)
	ad.UpdatedAt = now
}

// statusForTag returns the post-publish status for a tag: premium ads wait
// for admin review, free ads are auto-approved.
func statusForTag(tag string) string {
	if tag == models.TagVIP || tag == models.TagVIPPrime {
		return models.StatusPending
	}
	return models.StatusApproved
}

func validTag(tag string) bool {
	switch tag {
	case models.TagFree, models.TagVIP, models.TagVIPPrime:
		return true
	}
	return false
}

// Publish transitions a draft into its live state: the chosen tag is
// assigned, premium ads get a plan window and enter review, free ads go
// straight to approved.
func Publish(ad *models.Advertisement, tag string, planDuration int, now time.Time) error {
	if ad.Status != models.StatusDraft {
		return fmt.Errorf("cannot publish ad in status %q: %w", ad.Status, ErrNotDraft)
	}
	if !validTag(tag) {
		return fmt.Errorf("cannot publish with tag %q: %w", tag, ErrInvalidTag)
	}

	ad.Tag = tag
	if tag == models.TagFree {
		ad.PlanDuration = 0
		ad.PlanUnit = ""
		ad.ExpiryDate = nil
	} else {
		if planDuration < 1 {
			return fmt.Errorf("premium ad requires a positive plan duration, got %d", planDuration)
		}
		ad.PlanDuration = planDuration
		ad.PlanUnit = models.PlanUnitDay
		ad.ExpiryDate = now.AddDate(0, 0, planDuration)
	}

	publishedAt := now
	ad.PublishedAt = &publishedAt
	setStatus(ad, statusForTag(tag), now)
	return nil
}

// Resubmit moves a rejected ad back into review, using the same branch
// rule as Publish: premium waits for review, free is auto-approved.
func Resubmit(ad *models.Advertisement, now time.Time) error {
	if ad.Status != models.StatusRejected {
		return fmt.Errorf("cannot resubmit ad in status %q: %w", ad.Status, ErrNotRejected)
	}
	setStatus(ad, statusForTag(ad.Tag), now)
	return nil
}

// Approve marks a pending ad as approved by an admin.
func Approve(ad *models.Advertisement, now time.Time) error {
	if ad.Status != models.StatusPending {
		return fmt.Errorf("cannot approve ad in status %q: %w", ad.Status, ErrNotPending)
	}
	setStatus(ad, models.StatusApproved, now)
	return nil
}

// Reject marks a pending ad as rejected by an admin.
func Reject(ad *models.Advertisement, now time.Time) error {
	if ad.Status != models.StatusPending {
		return fmt.Errorf("cannot reject ad in status %q: %w", ad.Status, ErrNotPending)
	}
	setStatus(ad, models.StatusRejected, now)
	return nil
}

// Upgrade moves an approved ad onto a premium tier with a fresh plan
// window. Any earlier automatic downgrade is reset so the ad can expire
// again through the normal pipeline.
func Upgrade(ad *models.Advertisement, tag string, planDuration int, now time.Time) error {
	if ad.Status != models.StatusApproved {
		return fmt.Errorf("cannot upgrade ad in status %q: %w", ad.Status, ErrNotApproved)
	}
	if tag != models.TagVIP && tag != models.TagVIPPrime {
		return fmt.Errorf("cannot upgrade to tag %q: %w", tag, ErrInvalidTag)
	}
	if planDuration < 1 {
		return fmt.Errorf("upgrade requires a positive plan duration, got %d", planDuration)
	}

	ad.Tag = tag
	ad.PlanDuration = planDuration
	ad.PlanUnit = models.PlanUnitDay
	ad.ExpiryDate = now.AddDate(0, 0, planDuration)
	ad.AutoDowngraded = false
	ad.OriginalTag = ""
	ad.DowngradedAt = nil
	setStatus(ad, models.StatusApproved, now)
	return nil
}
