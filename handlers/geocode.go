package handlers

import (
	"EstateHub/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var ErrAddressNotFound = errors.New("address not found")

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// NominatimGeocoder queries an OpenStreetMap Nominatim compatible endpoint.
type NominatimGeocoder struct {
	Endpoint   string
	UserAgent  string
	HTTPClient *http.Client
}

func NewNominatimGeocoder(endpoint string) *NominatimGeocoder {
	return &NominatimGeocoder{
		Endpoint:   endpoint,
		UserAgent:  "EstateHub/1.0",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, err
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocode status: %s", resp.Status)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, fmt.Errorf("decode geocode: %w", err)
	}
	if len(results) == 0 {
		return Coordinates{}, ErrAddressNotFound
	}
	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return Coordinates{}, fmt.Errorf("geocode: malformed coordinates")
	}
	return Coordinates{Lat: lat, Lng: lng}, nil
}

type GeocodeController struct {
	geocoder Geocoder
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewGeocodeController(geocoder Geocoder, cacheTTL time.Duration, logger *zap.Logger) *GeocodeController {
	return &GeocodeController{
		geocoder: geocoder,
		cacheTTL: cacheTTL,
		logger:   logger.With(zap.String("component", "geocode")),
	}
}

func (gc *GeocodeController) Geocode(c echo.Context) error {
	address := strings.TrimSpace(c.QueryParam("address"))
	if address == "" {
		return errorJSON(c, http.StatusBadRequest, "Address is required")
	}
	ctx := c.Request().Context()
	cacheKey := utils.GenerateQueryCacheKey("geocode", map[string]string{"address": strings.ToLower(address)})

	var coords Coordinates
	if found, err := utils.GetCached(ctx, cacheKey, &coords); err == nil && found {
		return c.JSON(http.StatusOK, coords)
	}

	coords, err := gc.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return errorJSON(c, http.StatusNotFound, "Address not found")
		}
		gc.logger.Warn("geocoding failed", zap.String("address", address), zap.Error(err))
		return errorJSON(c, http.StatusBadGateway, "Geocoding failed")
	}
	if err := utils.SetCached(ctx, cacheKey, coords, gc.cacheTTL); err != nil {
		gc.logger.Warn("geocode cache write failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, coords)
}
