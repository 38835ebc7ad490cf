package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationVisit   = "visit"
	NotificationPayment = "payment"
	NotificationShare   = "share"
	NotificationAccount = "account"
)

type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipientId" json:"recipientId"`
	SenderID    *primitive.ObjectID `bson:"senderId,omitempty" json:"senderId,omitempty"`
	Kind        string              `bson:"kind" json:"kind"`
	Title       string              `bson:"title" json:"title"`
	Body        string              `bson:"body" json:"body"`
	PropertyID  string              `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// ShareRequest sends a property to another registered user.
type ShareRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
	PropertyID     string `json:"propertyId" validate:"required"`
	Message        string `json:"message"`
}
