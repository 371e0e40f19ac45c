// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the authentication identity behind a profile.
// PasswordHash never leaves the store layer.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	EmailCI       string             `bson:"email_ci" json:"-"`
	Name          string             `bson:"name" json:"name"`
	PasswordHash  string             `bson:"password_hash" json:"-"`
	EmailVerified bool               `bson:"email_verified" json:"emailVerified"`
	Status        string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Profile is the application-facing person record; one per User.
type Profile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	Email         string             `bson:"email" json:"email"`
	EmailCI       string             `bson:"email_ci" json:"-"` // folded for case-insensitive matching
	FirstName     string             `bson:"first_name" json:"firstName"`
	LastName      string             `bson:"last_name" json:"lastName"`
	EmailVerified bool               `bson:"email_verified" json:"emailVerified"`
	Enabled       bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DisplayName joins first and last name, falling back to the email.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	}
	return p.Email
}
