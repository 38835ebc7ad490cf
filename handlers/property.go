package handlers

import (
	"EstateHub/models"
	"EstateHub/utils"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const propertiesCachePrefix = "properties"

type PropertyController struct {
	collection *mongo.Collection
	cacheTTL   time.Duration
	logger     *zap.Logger
}

func NewPropertyController(collection *mongo.Collection, cacheTTL time.Duration, logger *zap.Logger) *PropertyController {
	return &PropertyController{
		collection: collection,
		cacheTTL:   cacheTTL,
		logger:     logger.With(zap.String("component", "properties")),
	}
}

func (pc *PropertyController) invalidateCache(c echo.Context) {
	if err := utils.InvalidatePrefix(c.Request().Context(), propertiesCachePrefix); err != nil {
		pc.logger.Warn("listing cache invalidation failed", zap.Error(err))
	}
}

func fillDerived(p *models.Property) {
	if p.PriceValue == 0 {
		p.PriceValue = float64(utils.ExtractPrice(p.Price))
	}
	if p.ImageURL == "" && len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}
}

func (pc *PropertyController) CreateProperty(c echo.Context) error {
	userID := currentUserID(c)
	var property models.Property
	if ok, err := bindAndValidate(c, &property); !ok {
		return err
	}
	if !utils.IsValidExternalID(property.ExternalID) {
		return errorJSON(c, http.StatusBadRequest, "Invalid externalId: must be PROP followed by a number greater than 1000")
	}

	now := time.Now()
	property.CreatedBy = &userID
	property.CreatedAt = now
	property.UpdatedAt = now
	fillDerived(&property)

	if _, err := pc.collection.InsertOne(c.Request().Context(), property); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errorJSON(c, http.StatusConflict, "Property with this externalId already exists")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to create property")
	}
	pc.invalidateCache(c)
	return c.JSON(http.StatusCreated, property)
}

func (pc *PropertyController) GetProperty(c echo.Context) error {
	id := c.Param("id")
	if !utils.IsValidExternalID(id) {
		return errorJSON(c, http.StatusBadRequest, "Invalid property ID")
	}
	var property models.Property
	err := pc.collection.FindOne(c.Request().Context(), bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Property not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch property")
	}
	return c.JSON(http.StatusOK, property)
}

func (pc *PropertyController) UpdateProperty(c echo.Context) error {
	id := c.Param("id")
	if !utils.IsValidExternalID(id) {
		return errorJSON(c, http.StatusBadRequest, "Invalid property ID")
	}
	var update models.Property
	if ok, err := bindAndValidate(c, &update); !ok {
		return err
	}
	fillDerived(&update)
	ctx := c.Request().Context()

	updateDoc := bson.M{
		"title":      update.Title,
		"address":    update.Address,
		"city":       update.City,
		"state":      update.State,
		"price":      update.Price,
		"priceValue": update.PriceValue,
		"status":     update.Status,
		"type":       update.Type,
		"bedrooms":   update.Bedrooms,
		"bathrooms":  update.Bathrooms,
		"areaSqFt":   update.AreaSqFt,
		"details":    update.Details,
		"amenities":  update.Amenities,
		"furnished":  update.Furnished,
		"listedBy":   update.ListedBy,
		"imageUrl":   update.ImageURL,
		"images":     update.Images,
		"lat":        update.Lat,
		"lng":        update.Lng,
		"isVerified": update.IsVerified,
		"updatedAt":  time.Now(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property models.Property
	err := pc.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updateDoc}, opts).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "Property not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to update property")
	}
	pc.invalidateCache(c)
	return c.JSON(http.StatusOK, property)
}

func (pc *PropertyController) DeleteProperty(c echo.Context) error {
	id := c.Param("id")
	if !utils.IsValidExternalID(id) {
		return errorJSON(c, http.StatusBadRequest, "Invalid property ID")
	}
	res, err := pc.collection.DeleteOne(c.Request().Context(), bson.M{"_id": id})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete property")
	}
	if res.DeletedCount == 0 {
		return errorJSON(c, http.StatusNotFound, "Property not found")
	}
	pc.invalidateCache(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Property deleted successfully"})
}

// buildListingQuery maps query parameters onto a Mongo filter. Only the
// parameters it understands are returned in the cache key map.
func buildListingQuery(c echo.Context) (bson.M, map[string]string) {
	query := bson.M{}
	keyParams := map[string]string{}

	if title := c.QueryParam("title"); title != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(title), Options: "i"}
		keyParams["title"] = title
	}
	if status := c.QueryParam("status"); status != "" {
		query["status"] = status
		keyParams["status"] = status
	}
	if city := c.QueryParam("city"); city != "" {
		query["city"] = city
		keyParams["city"] = city
	}
	priceRange := bson.M{}
	if priceMin := c.QueryParam("price_min"); priceMin != "" {
		if min, err := strconv.ParseFloat(priceMin, 64); err == nil {
			priceRange["$gte"] = min
			keyParams["price_min"] = priceMin
		}
	}
	if priceMax := c.QueryParam("price_max"); priceMax != "" {
		if max, err := strconv.ParseFloat(priceMax, 64); err == nil {
			priceRange["$lte"] = max
			keyParams["price_max"] = priceMax
		}
	}
	if len(priceRange) > 0 {
		query["priceValue"] = priceRange
	}
	if bedrooms := c.QueryParam("bedrooms"); bedrooms != "" {
		if num, err := strconv.Atoi(bedrooms); err == nil {
			query["bedrooms"] = num
			keyParams["bedrooms"] = bedrooms
		}
	}
	if isVerified := c.QueryParam("is_verified"); isVerified == "true" || isVerified == "false" {
		query["isVerified"] = isVerified == "true"
		keyParams["is_verified"] = isVerified
	}
	if p := c.QueryParam("page"); p != "" {
		keyParams["page"] = p
	}
	if l := c.QueryParam("limit"); l != "" {
		keyParams["limit"] = l
	}
	return query, keyParams
}

// ListProperties returns every matching listing unless page or limit is
// given.
func (pc *PropertyController) ListProperties(c echo.Context) error {
	ctx := c.Request().Context()
	query, keyParams := buildListingQuery(c)
	cacheKey := utils.GenerateQueryCacheKey(propertiesCachePrefix, keyParams)

	var cached []models.Property
	if found, err := utils.GetCached(ctx, cacheKey, &cached); err != nil {
		pc.logger.Warn("listing cache read failed", zap.Error(err))
	} else if found {
		return c.JSON(http.StatusOK, cached)
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	_, hasPage := keyParams["page"]
	_, hasLimit := keyParams["limit"]
	if hasPage || hasLimit {
		page, limit := 1, 10
		if num, err := strconv.Atoi(c.QueryParam("page")); err == nil && num > 0 {
			page = num
		}
		if num, err := strconv.Atoi(c.QueryParam("limit")); err == nil && num > 0 {
			limit = num
		}
		findOpts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}

	cursor, err := pc.collection.Find(ctx, query, findOpts)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch properties")
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	for cursor.Next(ctx) {
		var property models.Property
		if err := cursor.Decode(&property); err != nil {
			continue
		}
		properties = append(properties, property)
	}

	if err := utils.SetCached(ctx, cacheKey, properties, pc.cacheTTL); err != nil {
		pc.logger.Warn("listing cache write failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, properties)
}
