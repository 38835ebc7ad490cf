package handlers

import (
	"EstateHub/models"
	"EstateHub/storage"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const maxReviewImageBytes = 5 << 20

type ReviewController struct {
	collection *mongo.Collection
	uploader   storage.ImageUploader
	logger     *zap.Logger
}

func NewReviewController(collection *mongo.Collection, uploader storage.ImageUploader, logger *zap.Logger) *ReviewController {
	return &ReviewController{
		collection: collection,
		uploader:   uploader,
		logger:     logger.With(zap.String("component", "reviews")),
	}
}

func (rc *ReviewController) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	filter := bson.M{}
	if propertyID := c.QueryParam("propertyId"); propertyID != "" {
		filter["propertyId"] = propertyID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := rc.collection.Find(ctx, filter, opts)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch reviews")
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	for cursor.Next(ctx) {
		var r models.Review
		if err := cursor.Decode(&r); err != nil {
			continue
		}
		reviews = append(reviews, r)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (rc *ReviewController) CreateReview(c echo.Context) error {
	var req models.ReviewRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return errorJSON(c, http.StatusBadRequest, "Review text is required")
	}

	name, _ := c.Get("user_name").(string)
	review := models.Review{
		ID:         primitive.NewObjectID(),
		UserID:     currentUserID(c),
		UserName:   name,
		PropertyID: req.PropertyID,
		Body:       body,
		Rating:     req.Rating,
		Images:     req.Images,
		CreatedAt:  time.Now(),
	}
	if _, err := rc.collection.InsertOne(c.Request().Context(), review); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to submit review")
	}
	return c.JSON(http.StatusCreated, review)
}

func (rc *ReviewController) MarkHelpful(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid review ID")
	}
	var req models.HelpfulRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	field := "helpfulNo"
	if req.Type == "yes" {
		field = "helpfulYes"
	}

	var review models.Review
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = rc.collection.FindOneAndUpdate(c.Request().Context(), bson.M{"_id": id}, bson.M{"$inc": bson.M{field: 1}}, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Review not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to record vote")
	}
	return c.JSON(http.StatusOK, review)
}

func (rc *ReviewController) VerifyReview(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid review ID")
	}
	var req models.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	var review models.Review
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = rc.collection.FindOneAndUpdate(c.Request().Context(), bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": req.Verified}}, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Review not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to update review")
	}
	return c.JSON(http.StatusOK, review)
}

func (rc *ReviewController) DeleteReview(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid review ID")
	}
	filter := bson.M{"_id": id}
	if !models.IsStaffRole(currentRole(c)) {
		filter["userId"] = currentUserID(c)
	}
	res, err := rc.collection.DeleteOne(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete review")
	}
	if res.DeletedCount == 0 {
		return errorJSON(c, http.StatusNotFound, "Review not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

func (rc *ReviewController) DeleteAllReviews(c echo.Context) error {
	res, err := rc.collection.DeleteMany(c.Request().Context(), bson.M{})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete reviews")
	}
	rc.logger.Info("reviews purged", zap.Int64("deleted", res.DeletedCount), zap.String("by", currentEmail(c)))
	return c.JSON(http.StatusOK, map[string]int64{"deleted": res.DeletedCount})
}

func (rc *ReviewController) UploadImage(c echo.Context) error {
	if rc.uploader == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Image uploads are not configured")
	}
	file, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Image file is required")
	}
	if file.Size > maxReviewImageBytes {
		return errorJSON(c, http.StatusRequestEntityTooLarge, "Image must be 5MB or smaller")
	}
	src, err := file.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Failed to read image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxReviewImageBytes+1))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Failed to read image")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return errorJSON(c, http.StatusBadRequest, "Only image files are allowed")
	}

	url, err := rc.uploader.UploadImage(c.Request().Context(), "reviews", data, contentType)
	if err != nil {
		rc.logger.Error("review image upload failed", zap.Error(err))
		return errorJSON(c, http.StatusBadGateway, "Failed to upload image")
	}
	return c.JSON(http.StatusOK, models.UploadResponse{ImageURL: url})
}
