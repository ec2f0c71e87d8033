package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh document identifier in its 24-character hex form.
// Both storage backends use the same format so that IDs survive a switch of DB_DRIVER.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed document identifier.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
