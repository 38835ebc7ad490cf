package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VisitUpcoming  = "Upcoming"
	VisitCompleted = "Completed"
)

// Visit keeps a snapshot of the property so it survives later edits of the
// listing.
type Visit struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID           string             `bson:"uid" json:"uid"`
	UserName      string             `bson:"userName" json:"userName"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	PropertyID    string             `bson:"propertyId" json:"propertyId"`
	PropertyName  string             `bson:"propertyName" json:"propertyName"`
	PropertyImage string             `bson:"propertyImage" json:"propertyImage"`
	Address       string             `bson:"address" json:"address"`
	Lat           *float64           `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng           *float64           `bson:"lng,omitempty" json:"lng,omitempty"`
	Beds          int                `bson:"beds" json:"beds"`
	Baths         int                `bson:"baths" json:"baths"`
	Area          string             `bson:"area" json:"area"`
	Date          string             `bson:"date" json:"date"`
	Time          string             `bson:"time" json:"time"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

type VisitRequest struct {
	UID           string   `json:"uid"`
	UserName      string   `json:"userName" validate:"required"`
	UserEmail     string   `json:"userEmail" validate:"required,email"`
	PropertyID    string   `json:"propertyId"`
	PropertyName  string   `json:"propertyName" validate:"required"`
	PropertyImage string   `json:"propertyImage"`
	Address       string   `json:"address"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
	Beds          int      `json:"beds"`
	Baths         int      `json:"baths"`
	Area          string   `json:"area"`
	Date          string   `json:"date" validate:"required"`
	Time          string   `json:"time" validate:"required"`
	Status        string   `json:"status" validate:"omitempty,oneof=Upcoming Completed"`
}

const VisitDateLayout = "2006-01-02"

// DeriveVisitStatus compares the calendar date of a visit with now in now's
// location. A visit today is still upcoming.
func DeriveVisitStatus(date string, now time.Time) string {
	d, err := time.ParseInLocation(VisitDateLayout, date, now.Location())
	if err != nil {
		return VisitUpcoming
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return VisitCompleted
	}
	return VisitUpcoming
}
