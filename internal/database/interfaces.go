package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taxiads-backend/internal/database/models"
)

// DowngradeUpdate describes the full field set written to one ad when the
// expiration pipeline downgrades it. expiryDate is always cleared to null
// as part of the same write.
type DowngradeUpdate struct {
	ID             primitive.ObjectID
	Tag            string
	OriginalTag    string
	Status         string
	Approved       bool
	AutoDowngraded bool
	DowngradedAt   time.Time
	UpdatedAt      time.Time
}

// AdvertisementRepository defines storage operations for advertisements.
// Drafts live in a separate collection; publishing moves a draft into the
// live collection.
type AdvertisementRepository interface {
	// FindAll returns a full snapshot of the live ads collection.
	FindAll(ctx context.Context) ([]models.Advertisement, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Advertisement, error)
	Insert(ctx context.Context, ad *models.Advertisement) error
	Replace(ctx context.Context, ad *models.Advertisement) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	InsertDraft(ctx context.Context, ad *models.Advertisement) error
	GetDraft(ctx context.Context, id primitive.ObjectID) (*models.Advertisement, error)
	DeleteDraft(ctx context.Context, id primitive.ObjectID) error

	// BulkDowngrade applies all updates as one atomic batch: either every
	// update commits or none do.
	BulkDowngrade(ctx context.Context, updates []DowngradeUpdate) error
}

// UserRepository defines storage operations for marketplace users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, id string, role string) error
	SetBanned(ctx context.Context, id string, banned bool) error
	List(ctx context.Context, limit int, offset int) ([]models.User, int64, error)
}
