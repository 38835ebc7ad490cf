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

type WishlistController struct {
	collection *mongo.Collection
}

func NewWishlistController(collection *mongo.Collection) *WishlistController {
	return &WishlistController{collection: collection}
}

// AddToWishlist is idempotent: a repeated add for the same key answers 200
// with the stored entry instead of creating a duplicate.
func (wc *WishlistController) AddToWishlist(c echo.Context) error {
	userID := currentUserID(c)
	var req models.WishlistRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	filter := bson.M{"userId": userID, "key": req.Key}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        primitive.NewObjectID(),
		"propertyId": req.PropertyID,
		"title":      req.Title,
		"address":    req.Address,
		"price":      req.Price,
		"image":      req.Image,
		"createdAt":  time.Now(),
	}}
	res, err := wc.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusOK, map[string]string{"key": req.Key})
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to add to wishlist")
	}

	status := http.StatusOK
	if res.UpsertedCount > 0 {
		status = http.StatusCreated
	}
	return c.JSON(status, map[string]string{"key": req.Key})
}

func (wc *WishlistController) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := wc.collection.Find(ctx, bson.M{"userId": currentUserID(c)}, opts)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch wishlist")
	}
	defer cursor.Close(ctx)

	entries := []models.WishlistEntry{}
	for cursor.Next(ctx) {
		var entry models.WishlistEntry
		if err := cursor.Decode(&entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return c.JSON(http.StatusOK, entries)
}

// RemoveFromWishlist succeeds even when the key is already gone.
func (wc *WishlistController) RemoveFromWishlist(c echo.Context) error {
	key := pathParam(c, "key")
	if key == "" {
		return errorJSON(c, http.StatusBadRequest, "Wishlist key is required")
	}
	_, err := wc.collection.DeleteOne(c.Request().Context(), bson.M{"userId": currentUserID(c), "key": key})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to remove from wishlist")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Removed from wishlist"})
}
