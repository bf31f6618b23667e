package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered marketplace user.
type User struct {
	ID         string    `bson:"_id"`
	Email      string    `bson:"email,omitempty"`
	Name       string    `bson:"name,omitempty"`
	Role       string    `bson:"role"`
	Banned     bool      `bson:"banned"`
	CreatedAt  time.Time `bson:"createdAt"`
	LastSeenAt time.Time `bson:"lastSeenAt"`
}
