package handlers

import (
	"EstateHub/models"
	"EstateHub/tasks"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Notifier queues an in-app notification. Delivery is best-effort.
type Notifier interface {
	Notify(recipient primitive.ObjectID, kind, title, body, propertyID string)
}

type NotificationController struct {
	collection     *mongo.Collection
	userCollection *mongo.Collection
	runner         *tasks.Runner
}

func NewNotificationController(collection, userCollection *mongo.Collection, runner *tasks.Runner) *NotificationController {
	return &NotificationController{
		collection:     collection,
		userCollection: userCollection,
		runner:         runner,
	}
}

// Notify stores the notification from a background task; a failed insert
// is logged by the runner and otherwise dropped.
func (nc *NotificationController) Notify(recipient primitive.ObjectID, kind, title, body, propertyID string) {
	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipient,
		Kind:        kind,
		Title:       title,
		Body:        body,
		PropertyID:  propertyID,
		CreatedAt:   time.Now(),
	}
	nc.runner.Go("notify-"+kind, func(ctx context.Context) error {
		_, err := nc.collection.InsertOne(ctx, n)
		return err
	})
}

// ShareProperty sends a property to another registered user by e-mail.
func (nc *NotificationController) ShareProperty(c echo.Context) error {
	senderID := currentUserID(c)
	var req models.ShareRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	var recipient models.User
	err := nc.userCollection.FindOne(ctx, bson.M{"email": normalizeEmail(req.RecipientEmail)}).Decode(&recipient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Recipient not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to find recipient")
	}

	senderName, _ := c.Get("user_name").(string)
	body := req.Message
	if body == "" {
		body = senderName + " thinks you will like this property"
	}
	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipient.ID,
		SenderID:    &senderID,
		Kind:        models.NotificationShare,
		Title:       "A property was shared with you",
		Body:        body,
		PropertyID:  req.PropertyID,
		CreatedAt:   time.Now(),
	}
	if _, err := nc.collection.InsertOne(ctx, n); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to share property")
	}
	return c.JSON(http.StatusCreated, n)
}

func (nc *NotificationController) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := nc.collection.Find(ctx, bson.M{"recipientId": currentUserID(c)}, opts)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch notifications")
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	for cursor.Next(ctx) {
		var n models.Notification
		if err := cursor.Decode(&n); err != nil {
			continue
		}
		notifications = append(notifications, n)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (nc *NotificationController) MarkRead(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid notification ID")
	}
	res, err := nc.collection.UpdateOne(c.Request().Context(),
		bson.M{"_id": id, "recipientId": currentUserID(c)},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to update notification")
	}
	if res.MatchedCount == 0 {
		return errorJSON(c, http.StatusNotFound, "Notification not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
