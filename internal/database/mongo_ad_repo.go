package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taxiads-backend/internal/database/models"
)

const (
	adsCollectionName    = "advertisements"
	draftsCollectionName = "advertisement_drafts"
)

// MongoAdvertisementRepository implements AdvertisementRepository for MongoDB.
type MongoAdvertisementRepository struct {
	client *mongo.Client
	ads    *mongo.Collection
	drafts *mongo.Collection
}

// NewMongoAdvertisementRepository creates a new MongoDB advertisement repository.
// The client is kept so batch downgrades can run inside a session transaction.
func NewMongoAdvertisementRepository(client *mongo.Client, db *mongo.Database) *MongoAdvertisementRepository {
	return &MongoAdvertisementRepository{
		client: client,
		ads:    db.Collection(adsCollectionName),
		drafts: db.Collection(draftsCollectionName),
	}
}

// FindAll returns a full snapshot of the live ads collection. The expiration
// predicate mixes tag and a polymorphic date comparison, so filtering happens
// in the scanner rather than in a store query.
func (r *MongoAdvertisementRepository) FindAll(ctx context.Context) ([]models.Advertisement, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.ads.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find advertisements: %w", err)
	}
	defer cursor.Close(ctx)

	var ads []models.Advertisement
	if err = cursor.All(ctx, &ads); err != nil {
		return nil, fmt.Errorf("failed to decode advertisements: %w", err)
	}
	return ads, nil
}

// GetByID retrieves a single ad from the live collection.
// It returns ErrAdvertisementNotFound if no ad matches the ID.
func (r *MongoAdvertisementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Advertisement, error) {
	var ad models.Advertisement
	err := r.ads.FindOne(ctx, bson.M{"_id": id}).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAdvertisementNotFound
		}
		return nil, fmt.Errorf("failed to find advertisement %s: %w", id.Hex(), err)
	}
	return &ad, nil
}

// Insert adds a new ad to the live collection, assigning an ID if empty.
func (r *MongoAdvertisementRepository) Insert(ctx context.Context, ad *models.Advertisement) error {
	if ad.ID.IsZero() {
		ad.ID = primitive.NewObjectID()
	}
	if _, err := r.ads.InsertOne(ctx, ad); err != nil {
		return fmt.Errorf("failed to insert advertisement: %w", err)
	}
	return nil
}

// Replace overwrites the stored ad with the given one.
func (r *MongoAdvertisementRepository) Replace(ctx context.Context, ad *models.Advertisement) error {
	result, err := r.ads.ReplaceOne(ctx, bson.M{"_id": ad.ID}, ad)
	if err != nil {
		return fmt.Errorf("failed to replace advertisement %s: %w", ad.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrAdvertisementNotFound
	}
	return nil
}

// Delete removes an ad from the live collection.
func (r *MongoAdvertisementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.ads.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete advertisement %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrAdvertisementNotFound
	}
	return nil
}

// InsertDraft adds a new draft, assigning an ID if empty.
func (r *MongoAdvertisementRepository) InsertDraft(ctx context.Context, ad *models.Advertisement) error {
	if ad.ID.IsZero() {
		ad.ID = primitive.NewObjectID()
	}
	if _, err := r.drafts.InsertOne(ctx, ad); err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	return nil
}

// GetDraft retrieves a draft by ID. Returns ErrDraftNotFound when missing.
func (r *MongoAdvertisementRepository) GetDraft(ctx context.Context, id primitive.ObjectID) (*models.Advertisement, error) {
	var ad models.Advertisement
	err := r.drafts.FindOne(ctx, bson.M{"_id": id}).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to find draft %s: %w", id.Hex(), err)
	}
	return &ad, nil
}

// DeleteDraft removes a draft after it has been published.
func (r *MongoAdvertisementRepository) DeleteDraft(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.drafts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// BulkDowngrade applies all downgrade updates as one ordered bulk write
// inside a session transaction, so the batch is all-or-nothing.
func (r *MongoAdvertisementRepository) BulkDowngrade(ctx context.Context, updates []DowngradeUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		set := bson.M{
			"tag":            u.Tag,
			"originalTag":    u.OriginalTag,
			"status":         u.Status,
			"approved":       u.Approved,
			"autoDowngraded": u.AutoDowngraded,
			"downgradedAt":   u.DowngradedAt,
			"updatedAt":      u.UpdatedAt,
			"expiryDate":     nil,
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(bson.M{"$set": set}))
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session for bulk downgrade: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.ads.BulkWrite(sc, writes, options.BulkWrite().SetOrdered(true))
	})
	if err != nil {
		return fmt.Errorf("failed to commit bulk downgrade of %d ads: %w", len(updates), err)
	}
	return nil
}
