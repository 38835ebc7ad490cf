package handlers

import (
	"EstateHub/models"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VisitController struct {
	collection *mongo.Collection
	notifier   Notifier
	now        func() time.Time
}

func NewVisitController(collection *mongo.Collection, notifier Notifier) *VisitController {
	return &VisitController{collection: collection, notifier: notifier, now: time.Now}
}

// targetUID resolves the uid query parameter. Members may only address
// their own visits.
func targetUID(c echo.Context) (string, bool) {
	own := currentUserID(c).Hex()
	uid := c.QueryParam("uid")
	if uid == "" || uid == own {
		return own, true
	}
	return uid, models.IsStaffRole(currentRole(c))
}

func (vc *VisitController) ListVisits(c echo.Context) error {
	uid, ok := targetUID(c)
	if !ok {
		return errorJSON(c, http.StatusForbidden, "Access denied")
	}
	ctx := c.Request().Context()
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := vc.collection.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch visits")
	}
	defer cursor.Close(ctx)

	now := vc.now()
	visits := []models.Visit{}
	for cursor.Next(ctx) {
		var v models.Visit
		if err := cursor.Decode(&v); err != nil {
			continue
		}
		v.Status = models.DeriveVisitStatus(v.Date, now)
		visits = append(visits, v)
	}
	return c.JSON(http.StatusOK, visits)
}

func (vc *VisitController) CreateVisit(c echo.Context) error {
	userID := currentUserID(c)
	var req models.VisitRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if _, err := time.Parse(models.VisitDateLayout, req.Date); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Date must be YYYY-MM-DD")
	}

	now := vc.now()
	visit := models.Visit{
		ID:            primitive.NewObjectID(),
		UID:           userID.Hex(),
		UserName:      req.UserName,
		UserEmail:     req.UserEmail,
		PropertyID:    req.PropertyID,
		PropertyName:  req.PropertyName,
		PropertyImage: req.PropertyImage,
		Address:       req.Address,
		Lat:           req.Lat,
		Lng:           req.Lng,
		Beds:          req.Beds,
		Baths:         req.Baths,
		Area:          req.Area,
		Date:          req.Date,
		Time:          req.Time,
		Status:        models.DeriveVisitStatus(req.Date, now),
		CreatedAt:     now,
	}
	if _, err := vc.collection.InsertOne(c.Request().Context(), visit); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to schedule visit")
	}

	if vc.notifier != nil {
		vc.notifier.Notify(userID, models.NotificationVisit, "Visit scheduled",
			visit.PropertyName+" on "+visit.Date+" at "+visit.Time, visit.PropertyID)
	}
	return c.JSON(http.StatusCreated, visit)
}

func (vc *VisitController) DeleteVisit(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid visit ID")
	}
	filter := bson.M{"_id": id}
	if !models.IsStaffRole(currentRole(c)) {
		filter["uid"] = currentUserID(c).Hex()
	}
	res, err := vc.collection.DeleteOne(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete visit")
	}
	if res.DeletedCount == 0 {
		return errorJSON(c, http.StatusNotFound, "Visit not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Visit deleted successfully"})
}

func (vc *VisitController) DeleteAllVisits(c echo.Context) error {
	uid, ok := targetUID(c)
	if !ok {
		return errorJSON(c, http.StatusForbidden, "Access denied")
	}
	res, err := vc.collection.DeleteMany(c.Request().Context(), bson.M{"uid": uid})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete visits")
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": res.DeletedCount})
}
