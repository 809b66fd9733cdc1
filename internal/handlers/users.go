package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/database"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/middleware"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listUsersQuery struct {
	Page   int
	Limit  int
	Role   string
	Search string
}

func parseListUsersQuery(values url.Values) (*listUsersQuery, []FieldError) {
	q := &listUsersQuery{Page: 1, Limit: 10}
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
		if err != nil || limit < 1 || limit > 100 {
			errs = append(errs, FieldError{Field: "limit", Message: "Limit must be between 1 and 100"})
		} else {
			q.Limit = limit
		}
	}
	if raw := values.Get("role"); raw != "" {
		if !models.ValidRole(raw) {
			errs = append(errs, FieldError{Field: "role", Message: "Invalid role"})
		} else {
			q.Role = raw
		}
	}
	q.Search = strings.TrimSpace(values.Get("search"))

	return q, errs
}

func (q *listUsersQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Role != "" {
		filter["role"] = q.Role
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"first_name": pattern},
			{"last_name": pattern},
			{"email": pattern},
			{"business_name": pattern},
		}
	}
	return filter
}

// ListUsers returns a paginated user directory. Admin only.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	query, errs := parseListUsersQuery(r.URL.Query())
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := query.Filter()
	collection := database.DB.Collection("users")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		writeServerError(w, "Get users error", err)
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((query.Page - 1) * query.Limit)).
		SetLimit(int64(query.Limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		writeServerError(w, "Get users error", err)
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		writeServerError(w, "Get users error", err)
		return
	}

	writeData(w, http.StatusOK, "", map[string]interface{}{
		"users":      users,
		"pagination": paginationMeta(query.Page, query.Limit, total),
	})
}

// canAccessUser reports whether the caller is the target user or an admin.
func canAccessUser(caller *models.User, targetID primitive.ObjectID) bool {
	return caller.Role == models.RoleAdmin || caller.ID == targetID
}

// GetUser returns a single user record. Self or admin.
func GetUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServerError(w, "Get user error", err)
		return
	}

	if !canAccessUser(caller, id) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	writeData(w, http.StatusOK, "", map[string]interface{}{"user": user})
}

// UpdateUserRequest carries the mutable user fields. Role, isActive and
// isVerified only take effect when the caller is an admin.
type UpdateUserRequest struct {
	FirstName    *string             `json:"firstName"`
	LastName     *string             `json:"lastName"`
	Phone        *string             `json:"phone"`
	BusinessName *string             `json:"businessName"`
	BusinessType *string             `json:"businessType"`
	Address      *models.Address     `json:"address"`
	Preferences  *models.Preferences `json:"preferences"`
	Role         *string             `json:"role"`
	IsActive     *bool               `json:"isActive"`
	IsVerified   *bool               `json:"isVerified"`
}

func validateUserUpdate(req *UpdateUserRequest, isAdmin bool) []FieldError {
	var errs []FieldError

	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		errs = append(errs, FieldError{Field: "firstName", Message: "First name cannot be empty"})
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) == "" {
		errs = append(errs, FieldError{Field: "lastName", Message: "Last name cannot be empty"})
	}
	if req.Phone != nil && *req.Phone != "" && !validPhone(*req.Phone) {
		errs = append(errs, FieldError{Field: "phone", Message: "Please provide a valid phone number"})
	}
	if req.BusinessType != nil && *req.BusinessType != "" && !models.ValidBusinessType(*req.BusinessType) {
		errs = append(errs, FieldError{Field: "businessType", Message: "Invalid business type"})
	}
	if isAdmin && req.Role != nil && !models.ValidRole(*req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "Invalid role"})
	}

	return errs
}

// buildUserUpdate maps the allow-listed request fields onto a $set document.
// Admin-only fields are dropped for non-admin callers rather than rejected.
func buildUserUpdate(req *UpdateUserRequest, isAdmin bool) bson.M {
	updates := bson.M{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.BusinessName != nil {
		updates["business_name"] = strings.TrimSpace(*req.BusinessName)
	}
	if req.BusinessType != nil {
		updates["business_type"] = *req.BusinessType
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Preferences != nil {
		updates["preferences"] = *req.Preferences
	}
	if isAdmin {
		if req.Role != nil {
			updates["role"] = *req.Role
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if req.IsVerified != nil {
			updates["is_verified"] = *req.IsVerified
		}
	}
	return updates
}

// UpdateUser updates a user record. Self or admin; admin may additionally
// change role, isActive and isVerified.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	isAdmin := caller.Role == models.RoleAdmin
	if errs := validateUserUpdate(&req, isAdmin); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := database.DB.Collection("users").CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		writeServerError(w, "Update user error", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if !canAccessUser(caller, id) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	updates := buildUserUpdate(&req, isAdmin)
	updates["updated_at"] = time.Now()

	var user models.User
	err = database.DB.Collection("users").FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
		updateReturnAfter(),
	).Decode(&user)
	if err != nil {
		writeServerError(w, "Update user error", err)
		return
	}

	writeData(w, http.StatusOK, "User updated successfully", map[string]interface{}{"user": user})
}

// DeleteUser soft-deletes an account. Self or admin.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := database.DB.Collection("users").CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		writeServerError(w, "Delete user error", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if !canAccessUser(caller, id) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	_, err = database.DB.Collection("users").UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	if err != nil {
		writeServerError(w, "Delete user error", err)
		return
	}

	writeMessage(w, http.StatusOK, "User deactivated successfully")
}

type roleCount struct {
	Role  string `bson:"_id" json:"role"`
	Count int64  `bson:"count" json:"count"`
}

type businessTypeCount struct {
	BusinessType string `bson:"_id" json:"businessType"`
	Count        int64  `bson:"count" json:"count"`
}

type recentUser struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"first_name" json:"firstName"`
	LastName  string             `bson:"last_name" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// GetUserStats aggregates overview counters for the admin dashboard.
func GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	collection := database.DB.Collection("users")

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}
	active, err := collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}
	verified, err := collection.CountDocuments(ctx, bson.M{"is_verified": true})
	if err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}

	byRole := []roleCount{}
	cursor, err := collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}
	if err := cursor.All(ctx, &byRole); err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}

	byBusinessType := []businessTypeCount{}
	cursor, err = collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"business_type": bson.M{"$exists": true, "$ne": ""}}}},
		{{Key: "$group", Value: bson.M{"_id": "$business_type", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}
	if err := cursor.All(ctx, &byBusinessType); err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}

	recent := []recentUser{}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{
			"first_name": 1, "last_name": 1, "email": 1, "role": 1, "created_at": 1,
		})
	cursor, err = collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}
	if err := cursor.All(ctx, &recent); err != nil {
		writeServerError(w, "Get user stats error", err)
		return
	}

	writeData(w, http.StatusOK, "", map[string]interface{}{
		"overview": map[string]interface{}{
			"totalUsers":    total,
			"activeUsers":   active,
			"verifiedUsers": verified,
			"inactiveUsers": total - active,
		},
		"usersByRole":         byRole,
		"usersByBusinessType": byBusinessType,
		"recentUsers":         recent,
	})
}
