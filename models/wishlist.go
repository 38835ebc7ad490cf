package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistEntry is unique per (UserID, Key).
type WishlistEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Key        string             `bson:"key" json:"key"`
	PropertyID string             `bson:"propertyId" json:"propertyId,omitempty"`
	Title      string             `bson:"title" json:"title"`
	Address    string             `bson:"address" json:"address"`
	Price      string             `bson:"price" json:"price"`
	Image      string             `bson:"image" json:"image,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type WishlistRequest struct {
	Key        string `json:"key" validate:"required"`
	PropertyID string `json:"propertyId"`
	Title      string `json:"title"`
	Address    string `json:"address"`
	Price      string `json:"price"`
	Image      string `json:"image"`
}
