package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/database"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/middleware"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// providerSummary is the provider payload embedded in listing responses.
// Contact fields are only filled on detail reads.
type providerSummary struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	BusinessName string          `json:"businessName,omitempty"`
	BusinessType string          `json:"businessType,omitempty"`
	ProfileImage string          `json:"profileImage,omitempty"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Address      *models.Address `json:"address,omitempty"`
}

// listedService replaces the raw provider ObjectID with the provider summary.
type listedService struct {
	models.Service
	Provider *providerSummary `json:"provider"`
}

func summarizeProvider(u *models.User, includeContact bool) *providerSummary {
	s := &providerSummary{
		ID:           u.ID.Hex(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		BusinessName: u.BusinessName,
		BusinessType: u.BusinessType,
		ProfileImage: u.ProfileImage,
	}
	if includeContact {
		s.Email = u.Email
		s.Phone = u.Phone
		addr := u.Address
		s.Address = &addr
	}
	return s
}

// attachProviders joins each service with its provider record.
func attachProviders(ctx context.Context, svcs []models.Service, includeContact bool) ([]listedService, error) {
	ids := make([]primitive.ObjectID, 0, len(svcs))
	seen := make(map[primitive.ObjectID]bool)
	for _, s := range svcs {
		if !seen[s.Provider] {
			seen[s.Provider] = true
			ids = append(ids, s.Provider)
		}
	}

	providers := make(map[primitive.ObjectID]*models.User)
	if len(ids) > 0 {
		cursor, err := database.DB.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		for i := range users {
			providers[users[i].ID] = &users[i]
		}
	}

	out := make([]listedService, 0, len(svcs))
	for _, s := range svcs {
		ls := listedService{Service: s}
		if u, ok := providers[s.Provider]; ok {
			ls.Provider = summarizeProvider(u, includeContact)
		}
		out = append(out, ls)
	}
	return out, nil
}

// ListServices handles the filtered, paginated public listing search.
func ListServices(w http.ResponseWriter, r *http.Request) {
	query, errs := parseListServicesQuery(r.URL.Query())
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := query.Filter()
	collection := database.DB.Collection("services")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		writeServerError(w, "Get services error", err)
		return
	}

	findOptions := options.Find().
		SetSort(query.Sort()).
		SetSkip(query.Skip()).
		SetLimit(int64(query.Limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		writeServerError(w, "Get services error", err)
		return
	}
	defer cursor.Close(ctx)

	var svcs []models.Service
	if err := cursor.All(ctx, &svcs); err != nil {
		writeServerError(w, "Get services error", err)
		return
	}

	results, err := attachProviders(ctx, svcs, false)
	if err != nil {
		writeServerError(w, "Get services error", err)
		return
	}

	writeData(w, http.StatusOK, "", map[string]interface{}{
		"services":   results,
		"pagination": paginationMeta(query.Page, query.Limit, total),
	})
}

// GetService returns one listing and atomically increments its view counter.
// Anonymous views count; the increment happens exactly once per fetch.
func GetService(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var svc models.Service
	err = database.DB.Collection("services").FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"metadata.views": 1}},
		updateReturnAfter(),
	).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Service not found")
			return
		}
		writeServerError(w, "Get service error", err)
		return
	}

	results, err := attachProviders(ctx, []models.Service{svc}, true)
	if err != nil {
		writeServerError(w, "Get service error", err)
		return
	}

	writeData(w, http.StatusOK, "", map[string]interface{}{"service": results[0]})
}

// CreateServiceRequest is the body for creating a listing.
type CreateServiceRequest struct {
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Category     string                  `json:"category"`
	Subcategory  string                  `json:"subcategory,omitempty"`
	Price        *float64                `json:"price"`
	PriceType    string                  `json:"priceType"`
	Duration     *float64                `json:"duration"`
	Capacity     *models.Capacity        `json:"capacity,omitempty"`
	Location     *models.ServiceLocation `json:"location,omitempty"`
	Availability *models.Availability    `json:"availability,omitempty"`
	Images       []models.ServiceImage   `json:"images,omitempty"`
	Features     []string                `json:"features,omitempty"`
	Requirements []string                `json:"requirements,omitempty"`
	Tags         []string                `json:"tags,omitempty"`
}

func validateCreateService(req *CreateServiceRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Service title is required"})
	} else if utf8.RuneCountInString(req.Title) > 100 {
		errs = append(errs, FieldError{Field: "title", Message: "Title cannot exceed 100 characters"})
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "Service description is required"})
	} else if utf8.RuneCountInString(req.Description) > 1000 {
		errs = append(errs, FieldError{Field: "description", Message: "Description cannot exceed 1000 characters"})
	}
	if !models.ValidCategory(req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "Invalid category"})
	}
	if req.Price == nil || *req.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "Price must be a positive number"})
	}
	if !models.ValidPriceType(req.PriceType) {
		errs = append(errs, FieldError{Field: "priceType", Message: "Invalid price type"})
	}
	if req.Duration == nil || *req.Duration < 0.5 {
		errs = append(errs, FieldError{Field: "duration", Message: "Duration must be at least 0.5 hours"})
	}
	if req.Capacity != nil {
		if req.Capacity.Min != nil && *req.Capacity.Min < 1 {
			errs = append(errs, FieldError{Field: "capacity.min", Message: "Min capacity must be at least 1"})
		}
		if req.Capacity.Max != nil && *req.Capacity.Max < 1 {
			errs = append(errs, FieldError{Field: "capacity.max", Message: "Max capacity must be at least 1"})
		}
	}
	if req.Location != nil && req.Location.Type != "" && !models.ValidLocationType(req.Location.Type) {
		errs = append(errs, FieldError{Field: "location.type", Message: "Invalid location type"})
	}

	return errs
}

// CreateService creates a listing owned by the authenticated provider.
// The provider field always comes from the caller identity, never the body.
func CreateService(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	if caller.Role != models.RoleServiceProvider && caller.Role != models.RoleVenueOwner {
		writeError(w, http.StatusForbidden, "Only service providers can create services")
		return
	}

	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateCreateService(&req); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	now := time.Now()
	svc := models.Service{
		CreatedAt:    now,
		UpdatedAt:    now,
		Provider:     caller.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Category:     req.Category,
		Subcategory:  strings.TrimSpace(req.Subcategory),
		Price:        *req.Price,
		PriceType:    req.PriceType,
		Duration:     *req.Duration,
		Images:       req.Images,
		Features:     req.Features,
		Requirements: req.Requirements,
		Tags:         req.Tags,
		IsActive:     true,
		Availability: models.DefaultAvailability(),
		Location:     models.ServiceLocation{Type: "both", Address: models.Address{Country: "US"}},
	}
	if req.Capacity != nil {
		svc.Capacity = *req.Capacity
	}
	if req.Location != nil {
		svc.Location = *req.Location
		if svc.Location.Type == "" {
			svc.Location.Type = "both"
		}
		if svc.Location.Address.Country == "" {
			svc.Location.Address.Country = "US"
		}
	}
	if req.Availability != nil {
		svc.Availability = *req.Availability
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := database.DB.Collection("services").InsertOne(ctx, svc)
	if err != nil {
		writeServerError(w, "Create service error", err)
		return
	}
	svc.ID = result.InsertedID.(primitive.ObjectID)

	results, err := attachProviders(ctx, []models.Service{svc}, false)
	if err != nil {
		writeServerError(w, "Create service error", err)
		return
	}

	writeData(w, http.StatusCreated, "Service created successfully", map[string]interface{}{"service": results[0]})
}

// UpdateServiceRequest carries the allow-listed mutable fields; anything else
// submitted is silently ignored.
type UpdateServiceRequest struct {
	Title        *string                 `json:"title"`
	Description  *string                 `json:"description"`
	Category     *string                 `json:"category"`
	Subcategory  *string                 `json:"subcategory"`
	Price        *float64                `json:"price"`
	PriceType    *string                 `json:"priceType"`
	Duration     *float64                `json:"duration"`
	Capacity     *models.Capacity        `json:"capacity"`
	Location     *models.ServiceLocation `json:"location"`
	Availability *models.Availability    `json:"availability"`
	Images       []models.ServiceImage   `json:"images"`
	Features     []string                `json:"features"`
	Requirements []string                `json:"requirements"`
	Tags         []string                `json:"tags"`
}

func validateServiceUpdate(req *UpdateServiceRequest) []FieldError {
	var errs []FieldError

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			errs = append(errs, FieldError{Field: "title", Message: "Title cannot be empty"})
		} else if utf8.RuneCountInString(*req.Title) > 100 {
			errs = append(errs, FieldError{Field: "title", Message: "Title cannot exceed 100 characters"})
		}
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			errs = append(errs, FieldError{Field: "description", Message: "Description cannot be empty"})
		} else if utf8.RuneCountInString(*req.Description) > 1000 {
			errs = append(errs, FieldError{Field: "description", Message: "Description cannot exceed 1000 characters"})
		}
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "Invalid category"})
	}
	if req.Price != nil && *req.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "Price must be a positive number"})
	}
	if req.PriceType != nil && !models.ValidPriceType(*req.PriceType) {
		errs = append(errs, FieldError{Field: "priceType", Message: "Invalid price type"})
	}
	if req.Duration != nil && *req.Duration < 0.5 {
		errs = append(errs, FieldError{Field: "duration", Message: "Duration must be at least 0.5 hours"})
	}

	return errs
}

func buildServiceUpdate(req *UpdateServiceRequest) bson.M {
	updates := bson.M{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Subcategory != nil {
		updates["subcategory"] = strings.TrimSpace(*req.Subcategory)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.PriceType != nil {
		updates["price_type"] = *req.PriceType
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Availability != nil {
		updates["availability"] = *req.Availability
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.Features != nil {
		updates["features"] = req.Features
	}
	if req.Requirements != nil {
		updates["requirements"] = req.Requirements
	}
	if req.Tags != nil {
		updates["tags"] = req.Tags
	}
	return updates
}

// canModifyService reports whether the caller owns the listing or is admin.
func canModifyService(caller *models.User, svc *models.Service) bool {
	return caller.Role == models.RoleAdmin || svc.Provider == caller.ID
}

// UpdateService applies allow-listed updates after an ownership check.
func UpdateService(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateServiceUpdate(&req); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Service
	err = database.DB.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Service not found")
			return
		}
		writeServerError(w, "Update service error", err)
		return
	}

	if !canModifyService(caller, &existing) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	updates := buildServiceUpdate(&req)
	updates["updated_at"] = time.Now()

	var svc models.Service
	err = database.DB.Collection("services").FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
		updateReturnAfter(),
	).Decode(&svc)
	if err != nil {
		writeServerError(w, "Update service error", err)
		return
	}

	results, err := attachProviders(ctx, []models.Service{svc}, false)
	if err != nil {
		writeServerError(w, "Update service error", err)
		return
	}

	writeData(w, http.StatusOK, "Service updated successfully", map[string]interface{}{"service": results[0]})
}

// DeleteService soft-deletes a listing; the record is retained.
func DeleteService(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Service
	err = database.DB.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Service not found")
			return
		}
		writeServerError(w, "Delete service error", err)
		return
	}

	if !canModifyService(caller, &existing) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	_, err = database.DB.Collection("services").UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	if err != nil {
		writeServerError(w, "Delete service error", err)
		return
	}

	writeMessage(w, http.StatusOK, "Service deactivated successfully")
}

// ListProviderServices returns a provider's active listings, newest first.
// Public access, no pagination.
func ListProviderServices(w http.ResponseWriter, r *http.Request) {
	providerID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "providerId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Provider not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := database.DB.Collection("services").Find(ctx, bson.M{
		"provider":  providerID,
		"is_active": true,
	}, findOptions)
	if err != nil {
		writeServerError(w, "Get provider services error", err)
		return
	}
	defer cursor.Close(ctx)

	var svcs []models.Service
	if err := cursor.All(ctx, &svcs); err != nil {
		writeServerError(w, "Get provider services error", err)
		return
	}

	results, err := attachProviders(ctx, svcs, false)
	if err != nil {
		writeServerError(w, "Get provider services error", err)
		return
	}

	writeData(w, http.StatusOK, "", map[string]interface{}{"services": results})
}

type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var categoryLabels = map[string]string{
	"catering":       "Catering",
	"event_planning": "Event Planning",
	"staffing":       "Staffing",
	"cleaning":       "Cleaning",
	"maintenance":    "Maintenance",
	"security":       "Security",
	"entertainment":  "Entertainment",
	"photography":    "Photography",
	"floral":         "Floral",
	"transportation": "Transportation",
	"other":          "Other",
}

// ListCategories returns the static category enumeration.
func ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := make([]categoryOption, 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, categoryOption{Value: c, Label: categoryLabels[c]})
	}
	writeData(w, http.StatusOK, "", map[string]interface{}{"categories": categories})
}
