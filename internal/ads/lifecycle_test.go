package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiads-backend/internal/database/models"
)

func draftAd() *models.Advertisement {
	return &models.Advertisement{
		UserID: "user-1",
		Title:  "City rides, day and night",
		Tag:    models.TagFree,
		Status: models.StatusDraft,
	}
}

func TestPublish(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("FreeAdIsAutoApproved", func(t *testing.T) {
		ad := draftAd()

		err := Publish(ad, models.TagFree, 0, now)

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, ad.Status)
		assert.True(t, ad.Approved)
		assert.Equal(t, models.TagFree, ad.Tag)
		assert.Nil(t, ad.ExpiryDate)
		assert.Zero(t, ad.PlanDuration)
		require.NotNil(t, ad.PublishedAt)
		assert.True(t, ad.PublishedAt.Equal(now))
	})

	t.Run("PremiumAdEntersReviewWithExpiry", func(t *testing.T) {
		ad := draftAd()

		err := Publish(ad, models.TagVIP, 30, now)

		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, ad.Status)
		assert.False(t, ad.Approved)
		assert.Equal(t, models.TagVIP, ad.Tag)
		assert.Equal(t, 30, ad.PlanDuration)
		assert.Equal(t, models.PlanUnitDay, ad.PlanUnit)
		expiry, ok := ad.ExpiryDate.(time.Time)
		require.True(t, ok)
		assert.True(t, expiry.Equal(now.AddDate(0, 0, 30)))
	})

	t.Run("PremiumAdRequiresPlanDuration", func(t *testing.T) {
		err := Publish(draftAd(), models.TagVIPPrime, 0, now)
		assert.Error(t, err)
	})

	t.Run("RejectsUnknownTag", func(t *testing.T) {
		err := Publish(draftAd(), "platinum", 30, now)
		assert.ErrorIs(t, err, ErrInvalidTag)
	})

	t.Run("OnlyDraftsCanBePublished", func(t *testing.T) {
		ad := draftAd()
		ad.Status = models.StatusApproved

		err := Publish(ad, models.TagFree, 0, now)

		assert.ErrorIs(t, err, ErrNotDraft)
	})
}

func TestResubmit(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("RejectedPremiumAdGoesBackToPending", func(t *testing.T) {
		ad := draftAd()
		ad.Tag = models.TagVIP
		ad.Status = models.StatusRejected

		err := Resubmit(ad, now)

		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, ad.Status)
		assert.False(t, ad.Approved)
	})

	t.Run("RejectedFreeAdIsAutoApproved", func(t *testing.T) {
		ad := draftAd()
		ad.Status = models.StatusRejected

		err := Resubmit(ad, now)

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, ad.Status)
		assert.True(t, ad.Approved)
	})

	t.Run("OnlyRejectedAdsCanBeResubmitted", func(t *testing.T) {
		ad := draftAd()
		ad.Status = models.StatusPending

		err := Resubmit(ad, now)

		assert.ErrorIs(t, err, ErrNotRejected)
	})
}

func TestApproveReject(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	pendingAd := func() *models.Advertisement {
		ad := draftAd()
		ad.Tag = models.TagVIP
		ad.Status = models.StatusPending
		return ad
	}

	t.Run("ApprovePending", func(t *testing.T) {
		ad := pendingAd()

		err := Approve(ad, now)

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, ad.Status)
		assert.True(t, ad.Approved)
		assert.True(t, ad.UpdatedAt.Equal(now))
	})

	t.Run("RejectPending", func(t *testing.T) {
		ad := pendingAd()

		err := Reject(ad, now)

		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, ad.Status)
		assert.False(t, ad.Approved)
	})

	t.Run("ApproveRequiresPending", func(t *testing.T) {
		ad := pendingAd()
		ad.Status = models.StatusApproved

		assert.ErrorIs(t, Approve(ad, now), ErrNotPending)
	})

	t.Run("RejectRequiresPending", func(t *testing.T) {
		ad := pendingAd()
		ad.Status = models.StatusDraft

		assert.ErrorIs(t, Reject(ad, now), ErrNotPending)
	})
}

func TestUpgrade(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	downgradedAd := func() *models.Advertisement {
		downgradedAt := now.Add(-48 * time.Hour)
		ad := draftAd()
		ad.Tag = models.TagFree
		ad.Status = models.StatusApproved
		ad.Approved = true
		ad.OriginalTag = models.TagVIP
		ad.AutoDowngraded = true
		ad.DowngradedAt = &downgradedAt
		return ad
	}

	t.Run("ResetsDowngradeProvenance", func(t *testing.T) {
		ad := downgradedAd()

		err := Upgrade(ad, models.TagVIPPrime, 30, now)

		require.NoError(t, err)
		assert.Equal(t, models.TagVIPPrime, ad.Tag)
		assert.Equal(t, 30, ad.PlanDuration)
		assert.False(t, ad.AutoDowngraded)
		assert.Empty(t, ad.OriginalTag)
		assert.Nil(t, ad.DowngradedAt)
		expiry, ok := ad.ExpiryDate.(time.Time)
		require.True(t, ok)
		assert.True(t, expiry.Equal(now.AddDate(0, 0, 30)))
		assert.Equal(t, models.StatusApproved, ad.Status)
		assert.True(t, ad.Approved)
	})

	t.Run("OnlyApprovedAdsCanBeUpgraded", func(t *testing.T) {
		ad := downgradedAd()
		ad.Status = models.StatusPending

		assert.ErrorIs(t, Upgrade(ad, models.TagVIP, 30, now), ErrNotApproved)
	})

	t.Run("CannotUpgradeToFree", func(t *testing.T) {
		assert.ErrorIs(t, Upgrade(downgradedAd(), models.TagFree, 30, now), ErrInvalidTag)
	})

	t.Run("RequiresPlanDuration", func(t *testing.T) {
		assert.Error(t, Upgrade(downgradedAd(), models.TagVIP, 0, now))
	})
}

// Every write path derives approved from status; the two must never disagree.
func TestApprovedStaysDerivedFromStatus(t *testing.T) {
	now := time.Now()
	ad := draftAd()

	require.NoError(t, Publish(ad, models.TagVIP, 30, now))
	assert.Equal(t, ad.Status == models.StatusApproved, ad.Approved)

	require.NoError(t, Approve(ad, now))
	assert.Equal(t, ad.Status == models.StatusApproved, ad.Approved)

	require.NoError(t, Upgrade(ad, models.TagVIP, 30, now))
	assert.Equal(t, ad.Status == models.StatusApproved, ad.Approved)
}
