// Package discovery is the browsing and booking side of the client: it
// ingests listings, filters them and drives wishlist, visit, review and
// payment actions against the API.
package discovery

import (
	"EstateHub/client"
	"EstateHub/utils"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

type Coordinates = client.Coordinates

// Listing is the one internal shape every listing is converted to at
// ingestion. Nothing downstream looks at raw field names.
type Listing struct {
	Identifier string
	ID         string
	Title      string
	Address    string
	City       string
	Price      string
	PriceValue int64
	Status     string
	Beds       int
	Baths      int
	Area       string
	Details    string
	Images     []string
	Location   *Coordinates
	Verified   bool
}

// Key is the wishlist key: identifier, else id, else title and address.
func (l Listing) Key() string {
	if l.Identifier != "" {
		return l.Identifier
	}
	if l.ID != "" {
		return l.ID
	}
	return l.Title + "|" + l.Address
}

func (l Listing) Image() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		case map[string]interface{}:
			// extended JSON {"$oid": "..."}
			if oid, ok := v["$oid"].(string); ok && oid != "" {
				return oid
			}
		}
	}
	return ""
}

func firstNumber(raw map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func collectImages(raw map[string]interface{}) []string {
	var images []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		images = append(images, s)
	}
	for _, k := range []string{"imageUrl", "image", "image_url"} {
		if s, ok := raw[k].(string); ok {
			add(s)
		}
	}
	switch v := raw["images"].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}
	return images
}

// parseDetails reads strings such as "3 Beds | 2 Baths | 1,200 sq ft".
func parseDetails(details string) (beds, baths int, area string) {
	for _, part := range strings.Split(details, "|") {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)
		switch {
		case strings.Contains(lower, "bath"):
			baths = leadingInt(part)
		case strings.Contains(lower, "bed") || strings.Contains(lower, "bhk"):
			beds = leadingInt(part)
		case strings.Contains(lower, "sq") || strings.Contains(lower, "area"):
			area = part
		}
	}
	return beds, baths, area
}

func leadingInt(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	n, _ := strconv.Atoi(digits.String())
	return n
}

// NormalizeListing converts a raw API object into a Listing. Explicit
// bed, bath and area fields win over the pipe-delimited details string.
func NormalizeListing(raw map[string]interface{}) Listing {
	l := Listing{
		Identifier: firstString(raw, "identifier", "externalId", "external_id"),
		ID:         firstString(raw, "id", "_id"),
		Title:      firstString(raw, "title", "name"),
		Address:    firstString(raw, "address", "location"),
		City:       firstString(raw, "city"),
		Status:     firstString(raw, "status", "category"),
		Details:    firstString(raw, "details"),
		Images:     collectImages(raw),
	}
	if l.Identifier == l.ID {
		l.ID = ""
	}

	switch v := raw["price"].(type) {
	case string:
		l.Price = strings.TrimSpace(v)
	case float64:
		l.Price = utils.FormatRupees(int64(v))
	}
	if pv, ok := firstNumber(raw, "priceValue", "price_value"); ok && pv > 0 {
		l.PriceValue = int64(pv)
	} else {
		l.PriceValue = utils.ExtractPrice(l.Price)
	}

	if n, ok := firstNumber(raw, "bedrooms", "beds"); ok {
		l.Beds = int(n)
	}
	if n, ok := firstNumber(raw, "bathrooms", "baths"); ok {
		l.Baths = int(n)
	}
	if n, ok := firstNumber(raw, "areaSqFt", "area_sqft", "sqft"); ok && n > 0 {
		l.Area = strconv.FormatFloat(n, 'f', -1, 64) + " sq ft"
	} else if s := firstString(raw, "area"); s != "" {
		l.Area = s
	}
	if l.Details != "" {
		beds, baths, area := parseDetails(l.Details)
		if l.Beds == 0 {
			l.Beds = beds
		}
		if l.Baths == 0 {
			l.Baths = baths
		}
		if l.Area == "" {
			l.Area = area
		}
	}

	lat, hasLat := firstNumber(raw, "lat", "latitude")
	lng, hasLng := firstNumber(raw, "lng", "lon", "longitude")
	if hasLat && hasLng {
		l.Location = &Coordinates{Lat: lat, Lng: lng}
	}
	if v, ok := raw["isVerified"].(bool); ok {
		l.Verified = v
	}
	return l
}

func NormalizeListings(raw []map[string]interface{}) []Listing {
	out := make([]Listing, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeListing(r))
	}
	return out
}
