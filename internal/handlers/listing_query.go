package handlers

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultListPage  = 1
	defaultListLimit = 12
	maxListLimit     = 50
)

// sortFields maps the public sort keys onto stored field paths.
// Popularity sorts on the booking counter.
var sortFields = map[string]string{
	"price":      "price",
	"rating":     "rating.average",
	"createdAt":  "created_at",
	"popularity": "metadata.bookings",
}

// listServicesQuery is the parsed and validated form of a listing search.
type listServicesQuery struct {
	Page      int
	Limit     int
	Category  string
	Location  string
	Search    string
	SortBy    string
	SortOrder string
	MinPrice  *float64
	MaxPrice  *float64
}

// parseListServicesQuery validates every query parameter up front. Any
// invalid parameter fails the whole request; valid filters are never
// partially applied.
func parseListServicesQuery(values url.Values) (*listServicesQuery, []FieldError) {
	q := &listServicesQuery{
		Page:      defaultListPage,
		Limit:     defaultListLimit,
		SortBy:    "createdAt",
		SortOrder: "desc",
	}
	var errs []FieldError

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			errs = append(errs, FieldError{Field: "page", Message: "Page must be a positive integer"})
		} else {
			q.Page = page
		}
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			errs = append(errs, FieldError{Field: "limit", Message: "Limit must be between 1 and 50"})
		} else {
			q.Limit = limit
		}
	}

	if raw := values.Get("category"); raw != "" {
		if !models.ValidCategory(raw) {
			errs = append(errs, FieldError{Field: "category", Message: "Invalid category"})
		} else {
			q.Category = raw
		}
	}

	if raw := values.Get("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || min < 0 {
			errs = append(errs, FieldError{Field: "minPrice", Message: "Min price must be a positive number"})
		} else {
			q.MinPrice = &min
		}
	}

	if raw := values.Get("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil || max < 0 {
			errs = append(errs, FieldError{Field: "maxPrice", Message: "Max price must be a positive number"})
		} else {
			q.MaxPrice = &max
		}
	}

	q.Location = strings.TrimSpace(values.Get("location"))
	q.Search = strings.TrimSpace(values.Get("search"))

	if raw := values.Get("sortBy"); raw != "" {
		if _, ok := sortFields[raw]; !ok {
			errs = append(errs, FieldError{Field: "sortBy", Message: "Invalid sort option"})
		} else {
			q.SortBy = raw
		}
	}

	if raw := values.Get("sortOrder"); raw != "" {
		if raw != "asc" && raw != "desc" {
			errs = append(errs, FieldError{Field: "sortOrder", Message: "Sort order must be asc or desc"})
		} else {
			q.SortOrder = raw
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return q, nil
}

// Filter builds the Mongo filter. Only active and verified listings are ever
// eligible for public search, regardless of other filters.
func (q *listServicesQuery) Filter() bson.M {
	filter := bson.M{"is_active": true, "is_verified": true}

	if q.Category != "" {
		filter["category"] = q.Category
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}

	if q.Location != "" {
		pattern := regexp.QuoteMeta(q.Location)
		filter["$or"] = []bson.M{
			{"location.address.city": primitive.Regex{Pattern: pattern, Options: "i"}},
			{"location.address.state": primitive.Regex{Pattern: pattern, Options: "i"}},
		}
	}

	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}

	return filter
}

// Sort builds the Mongo sort document.
func (q *listServicesQuery) Sort() bson.D {
	order := -1
	if q.SortOrder == "asc" {
		order = 1
	}
	return bson.D{{Key: sortFields[q.SortBy], Value: order}}
}

// Skip returns the number of documents to skip for the requested page.
func (q *listServicesQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}
