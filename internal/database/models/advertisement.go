package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ad tags (visibility tiers).
const (
	TagFree     = "free"
	TagVIP      = "vip"
	TagVIPPrime = "vip-prime"
)

// Ad statuses (review/publication stages).
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Only plan unit in use.
const PlanUnitDay = "Day"

// Advertisement represents a classified ad as persisted in MongoDB.
// The bson field names are the contract with the existing collection
// schema and must not be renamed.
//
// ExpiryDate is intentionally typed as interface{}: historical documents
// store it as a BSON datetime, a native date, or an ISO-8601 string.
// Use expiration.ResolveExpiry to turn it into a time.Time.
type Advertisement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"userId"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description,omitempty"`
	Category       string             `bson:"category"`
	City           string             `bson:"city"`
	State          string             `bson:"state"`
	PhoneNumber    string             `bson:"phoneNumber,omitempty"`
	WhatsappNumber string             `bson:"whatsappNumber,omitempty"`
	PhotoURLs      []string           `bson:"photoUrls,omitempty"`
	Tag            string             `bson:"tag"`
	PlanDuration   int                `bson:"planDuration,omitempty"`
	PlanUnit       string             `bson:"planUnit,omitempty"`
	Status         string             `bson:"status"`
	Approved       bool               `bson:"approved"`
	ExpiryDate     interface{}        `bson:"expiryDate,omitempty"`
	OriginalTag    string             `bson:"originalTag,omitempty"`
	AutoDowngraded bool               `bson:"autoDowngraded,omitempty"`
	DowngradedAt   *time.Time         `bson:"downgradedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
	PublishedAt    *time.Time         `bson:"publishedAt,omitempty"`
}

// IsPremium reports whether the ad currently occupies a paid tier.
func (a *Advertisement) IsPremium() bool {
	return a.Tag == TagVIP || a.Tag == TagVIPPrime
}
