package ads

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiads-backend/internal/database"
	"taxiads-backend/internal/database/models"
)

// DraftInput carries the user-provided fields for a new draft ad.
type DraftInput struct {
	UserID         string   `validate:"required"`
	Title          string   `validate:"required,max=120"`
	Description    string   `validate:"max=2000"`
	Category       string   `validate:"required"`
	City           string   `validate:"required"`
	State          string   `validate:"required"`
	PhoneNumber    string   `validate:"omitempty,min=8,max=20"`
	WhatsappNumber string   `validate:"omitempty,min=8,max=20"`
	PhotoURLs      []string `validate:"max=10,dive,url"`
}

// PublishInput carries the plan selection made when publishing a draft.
type PublishInput struct {
	Tag          string `validate:"required,oneof=free vip vip-prime"`
	PlanDuration int    `validate:"omitempty,gte=1,lte=365"`
}

// Service implements the advertisement lifecycle operations on top of the
// repository. All status writes go through the lifecycle functions so the
// approved flag stays derived from the status enum.
type Service struct {
	repo     database.AdvertisementRepository
	validate *validator.Validate
}

// NewService creates a new advertisement service.
func NewService(repo database.AdvertisementRepository) *Service {
	if repo == nil {
		log.Fatal("Ad Service: advertisement repository is nil")
	}
	return &Service{
		repo:     repo,
		validate: validator.New(),
	}
}

// CreateDraft validates the input and stores a new draft ad. Drafts carry
// no tag assignment yet (tag defaults to free) and are never visible.
func (s *Service) CreateDraft(ctx context.Context, input DraftInput) (*models.Advertisement, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid draft input: %w", err)
	}

	now := time.Now()
	ad := &models.Advertisement{
		UserID:         input.UserID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		City:           input.City,
		State:          input.State,
		PhoneNumber:    input.PhoneNumber,
		WhatsappNumber: input.WhatsappNumber,
		PhotoURLs:      input.PhotoURLs,
		Tag:            models.TagFree,
		Status:         models.StatusDraft,
		Approved:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.InsertDraft(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

// PublishDraft moves a draft into the live collection with the chosen plan.
// The draft is moved, not copied: after a successful insert the draft
// document is deleted.
func (s *Service) PublishDraft(ctx context.Context, draftID primitive.ObjectID, input PublishInput) (*models.Advertisement, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid publish input: %w", err)
	}

	ad, err := s.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if err := Publish(ad, input.Tag, input.PlanDuration, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, ad); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteDraft(ctx, draftID); err != nil {
		// The ad is already live; a stale draft is recoverable, losing the
		// publish is not. Log and report the leftover instead of failing.
		log.Printf("[AdService Draft:%s] Published but failed to delete draft: %v", draftID.Hex(), err)
	}
	return ad, nil
}

// Resubmit puts a rejected ad back into review.
func (s *Service) Resubmit(ctx context.Context, adID primitive.ObjectID) (*models.Advertisement, error) {
	return s.transition(ctx, adID, Resubmit)
}

// Approve marks a pending ad as approved. Admin-only; callers gate on the
// admin checker.
func (s *Service) Approve(ctx context.Context, adID primitive.ObjectID) (*models.Advertisement, error) {
	return s.transition(ctx, adID, Approve)
}

// Reject marks a pending ad as rejected. Admin-only.
func (s *Service) Reject(ctx context.Context, adID primitive.ObjectID) (*models.Advertisement, error) {
	return s.transition(ctx, adID, Reject)
}

// Upgrade moves an approved ad onto a premium tier with a fresh expiry.
func (s *Service) Upgrade(ctx context.Context, adID primitive.ObjectID, tag string, planDuration int) (*models.Advertisement, error) {
	return s.transition(ctx, adID, func(ad *models.Advertisement, now time.Time) error {
		return Upgrade(ad, tag, planDuration, now)
	})
}

// Delete removes an ad from the live collection.
func (s *Service) Delete(ctx context.Context, adID primitive.ObjectID) error {
	return s.repo.Delete(ctx, adID)
}

// transition loads an ad, applies a lifecycle function and persists the result.
func (s *Service) transition(ctx context.Context, adID primitive.ObjectID, fn func(*models.Advertisement, time.Time) error) (*models.Advertisement, error) {
	ad, err := s.repo.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if err := fn(ad, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}
