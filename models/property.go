package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusForSale = "for-sale"
	StatusForRent = "for-rent"
	StatusPremium = "premium"
)

type Property struct {
	ExternalID string              `bson:"_id" json:"externalId"`
	Title      string              `bson:"title" json:"title" validate:"required"`
	Address    string              `bson:"address" json:"address"`
	City       string              `bson:"city" json:"city"`
	State      string              `bson:"state" json:"state"`
	Price      string              `bson:"price" json:"price"`
	PriceValue float64             `bson:"priceValue" json:"priceValue"`
	Status     string              `bson:"status" json:"status" validate:"omitempty,oneof=for-sale for-rent premium"`
	Type       string              `bson:"type" json:"type"`
	Bedrooms   int                 `bson:"bedrooms" json:"bedrooms"`
	Bathrooms  int                 `bson:"bathrooms" json:"bathrooms"`
	AreaSqFt   float64             `bson:"areaSqFt" json:"areaSqFt"`
	Details    string              `bson:"details" json:"details,omitempty"`
	Amenities  string              `bson:"amenities" json:"amenities"`
	Furnished  string              `bson:"furnished" json:"furnished"`
	ListedBy   string              `bson:"listedBy" json:"listedBy"`
	ImageURL   string              `bson:"imageUrl" json:"imageUrl,omitempty"`
	Images     []string            `bson:"images" json:"images,omitempty"`
	Lat        *float64            `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng        *float64            `bson:"lng,omitempty" json:"lng,omitempty"`
	IsVerified bool                `bson:"isVerified" json:"isVerified"`
	CreatedBy  *primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}
