package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a reviewer account. The users collection is read-only in
// this service: accounts are provisioned out of band.
type User struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username string             `json:"username" bson:"username" validate:"required,min=3,max=100"`
	Name     string             `json:"name" bson:"name"`
	Password string             `json:"-" bson:"password"` // bcrypt hash, never serialized
}
