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
	"github.com/Marshflair1988/ServiceIndustryApplication/internal/services"
	"github.com/Marshflair1988/ServiceIndustryApplication/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type RegisterRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role,omitempty"`
	BusinessName string `json:"businessName,omitempty"`
	BusinessType string `json:"businessType,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authUser is the trimmed user payload returned with a token.
type authUser struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	BusinessName string     `json:"businessName,omitempty"`
	BusinessType string     `json:"businessType,omitempty"`
	IsVerified   bool       `json:"isVerified"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func toAuthUser(u *models.User) authUser {
	return authUser{
		ID:           u.ID.Hex(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         u.Role,
		BusinessName: u.BusinessName,
		BusinessType: u.BusinessType,
		IsVerified:   u.IsVerified,
		LastLogin:    u.LastLogin,
	}
}

func validateRegister(req *RegisterRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.FirstName) == "" {
		errs = append(errs, FieldError{Field: "firstName", Message: "First name is required"})
	} else if utf8.RuneCountInString(req.FirstName) > 50 {
		errs = append(errs, FieldError{Field: "firstName", Message: "First name cannot exceed 50 characters"})
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs = append(errs, FieldError{Field: "lastName", Message: "Last name is required"})
	} else if utf8.RuneCountInString(req.LastName) > 50 {
		errs = append(errs, FieldError{Field: "lastName", Message: "Last name cannot exceed 50 characters"})
	}
	if !validEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if req.Role != "" && !models.ValidRegistrationRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "Invalid role"})
	}
	if req.BusinessType != "" && !models.ValidBusinessType(req.BusinessType) {
		errs = append(errs, FieldError{Field: "businessType", Message: "Invalid business type"})
	}
	if req.Phone != "" && !validPhone(req.Phone) {
		errs = append(errs, FieldError{Field: "phone", Message: "Please provide a valid phone number"})
	}

	return errs
}

// Register creates a new user and returns a signed token.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateRegister(&req); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	email := normalizeEmail(req.Email)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Check if user already exists
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		writeError(w, http.StatusBadRequest, "User already exists with this email")
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		writeServerError(w, "Registration error", err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeServerError(w, "Registration error", err)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	businessType := req.BusinessType
	if businessType == "" {
		businessType = "other"
	}

	now := time.Now()
	user := models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Password:     hashedPassword,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		BusinessName: strings.TrimSpace(req.BusinessName),
		BusinessType: businessType,
		IsActive:     true,
		Preferences:  models.DefaultPreferences(),
	}

	result, err := database.DB.Collection("users").InsertOne(ctx, user)
	if err != nil {
		// The unique index catches a registration race on the same email
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		writeServerError(w, "Registration error", err)
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	token, err := services.IssueToken(user.ID.Hex())
	if err != nil {
		writeServerError(w, "Registration error", err)
		return
	}

	writeData(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  toAuthUser(&user),
		"token": token,
	})
}

// Login verifies credentials, updates lastLogin and returns a token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []FieldError
	if !validEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServerError(w, "Login error", err)
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated. Please contact support.")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	_, err = database.DB.Collection("users").UpdateByID(ctx, user.ID, bson.M{
		"$set": bson.M{"last_login": now, "updated_at": now},
	})
	if err != nil {
		writeServerError(w, "Login error", err)
		return
	}
	user.LastLogin = &now

	token, err := services.IssueToken(user.ID.Hex())
	if err != nil {
		writeServerError(w, "Login error", err)
		return
	}

	writeData(w, http.StatusOK, "Login successful", map[string]interface{}{
		"user":  toAuthUser(&user),
		"token": token,
	})
}

// GetMe returns the caller's full record.
func GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	writeData(w, http.StatusOK, "", map[string]interface{}{"user": user})
}

// Logout is a no-op server-side; tokens are stateless and the client
// discards its copy.
func Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logout successful")
}

// UpdateProfileRequest carries the allow-listed profile fields. Anything else
// in the body is silently ignored.
type UpdateProfileRequest struct {
	FirstName    *string         `json:"firstName"`
	LastName     *string         `json:"lastName"`
	Phone        *string         `json:"phone"`
	BusinessName *string         `json:"businessName"`
	BusinessType *string         `json:"businessType"`
	Address      *models.Address `json:"address"`
}

func validateProfileUpdate(req *UpdateProfileRequest) []FieldError {
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
	if req.BusinessType != nil && !models.ValidBusinessType(*req.BusinessType) {
		errs = append(errs, FieldError{Field: "businessType", Message: "Invalid business type"})
	}
	return errs
}

func buildProfileUpdate(req *UpdateProfileRequest) bson.M {
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
	return updates
}

// UpdateProfile updates the caller's allow-listed profile fields.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateProfileUpdate(&req); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	updates := buildProfileUpdate(&req)
	updates["updated_at"] = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOneAndUpdate(
		ctx,
		bson.M{"_id": caller.ID},
		bson.M{"$set": updates},
		updateReturnAfter(),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServerError(w, "Profile update error", err)
		return
	}

	writeData(w, http.StatusOK, "Profile updated successfully", map[string]interface{}{"user": user})
}
