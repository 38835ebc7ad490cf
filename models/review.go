package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	UserName   string             `bson:"userName" json:"userName"`
	UserAvatar string             `bson:"userAvatar" json:"userAvatar,omitempty"`
	PropertyID string             `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	Body       string             `bson:"body" json:"body"`
	Rating     int                `bson:"rating" json:"rating"`
	Images     []string           `bson:"images" json:"images,omitempty"`
	Verified   bool               `bson:"verified" json:"verified"`
	HelpfulYes int                `bson:"helpfulYes" json:"helpfulYes"`
	HelpfulNo  int                `bson:"helpfulNo" json:"helpfulNo"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type ReviewRequest struct {
	PropertyID string   `json:"propertyId"`
	Body       string   `json:"body" validate:"required"`
	Rating     int      `json:"rating" validate:"required,min=1,max=5"`
	Images     []string `json:"images"`
}

type HelpfulRequest struct {
	Type string `json:"type" validate:"required,oneof=yes no"`
}

type VerifyRequest struct {
	Verified bool `json:"verified"`
}

type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}
