package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// PaymentOrder amounts are in the smallest currency unit (paise).
type PaymentOrder struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID    string             `bson:"orderId" json:"orderId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Email      string             `bson:"email" json:"email"`
	PropertyID string             `bson:"propertyId" json:"propertyId"`
	Amount     int64              `bson:"amount" json:"amount"`
	Currency   string             `bson:"currency" json:"currency"`
	Receipt    string             `bson:"receipt" json:"receipt"`
	Status     string             `bson:"status" json:"status"`
	PaymentID  string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Signature  string             `bson:"signature,omitempty" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	PaidAt     *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

type CreateOrderRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	KeyID    string `json:"keyId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type PaymentLookupRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
}
