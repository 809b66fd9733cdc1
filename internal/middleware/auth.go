package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/database"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type contextKey string

const userContextKey contextKey = "authUser"

// findUserByID resolves a token subject against the users collection.
// Package variable so tests can stub the store.
var findUserByID = func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserFromContext returns the authenticated user attached by RequireAuth or
// OptionalAuth, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// withUser attaches the resolved identity to the request context.
func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// resolveUser runs the full bearer-token pipeline: header extraction, token
// verification, user lookup, active check. On failure it returns the status
// code and message the mandatory middleware should respond with.
func resolveUser(r *http.Request) (*models.User, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, http.StatusUnauthorized, "No token provided, authorization denied"
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return nil, http.StatusUnauthorized, "No token provided, authorization denied"
	}

	userID, err := services.VerifyToken(token)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "Token has expired"
		}
		return nil, http.StatusUnauthorized, "Token is not valid"
	}

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusUnauthorized, "Token is not valid"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := findUserByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, http.StatusUnauthorized, "Token is not valid - user not found"
		}
		// Store failure is a server error, not an authentication failure;
		// clients may retry these.
		log.Printf("Auth middleware error: %v", err)
		return nil, http.StatusInternalServerError, "Server error in authentication"
	}

	if !user.IsActive {
		return nil, http.StatusUnauthorized, "Account is deactivated"
	}

	return user, 0, ""
}

// RequireAuth rejects requests without a valid bearer token for an active
// user, and attaches the resolved user to the request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, status, message := resolveUser(r)
		if user == nil {
			writeAuthError(w, status, message)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// OptionalAuth attempts the same resolution but never fails the request:
// any missing/invalid/expired token or inactive user leaves the request
// anonymous and the pipeline continues.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := resolveUser(r)
		if user != nil {
			r = withUser(r, user)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route to the given roles. Must run after RequireAuth.
// No hierarchy among roles; each route enumerates its acceptable set.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
