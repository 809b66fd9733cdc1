package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. A closed set; endpoints enumerate the roles they accept.
const (
	RoleCustomer        = "customer"
	RoleServiceProvider = "service_provider"
	RoleVenueOwner      = "venue_owner"
	RoleAdmin           = "admin"
)

// Roles lists every valid user role.
var Roles = []string{RoleCustomer, RoleServiceProvider, RoleVenueOwner, RoleAdmin}

// RegistrationRoles are the roles a caller may pick at signup.
// Admin accounts are created directly in the database.
var RegistrationRoles = []string{RoleCustomer, RoleServiceProvider, RoleVenueOwner}

// BusinessTypes is the closed set of provider business types.
var BusinessTypes = []string{"restaurant", "hotel", "bar", "cafe", "catering", "event_venue", "other"}

func ValidRole(role string) bool {
	return contains(Roles, role)
}

func ValidRegistrationRole(role string) bool {
	return contains(RegistrationRoles, role)
}

func ValidBusinessType(bt string) bool {
	return contains(BusinessTypes, bt)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Address is shared by user profiles and service locations.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type NotificationPreferences struct {
	Email bool `bson:"email" json:"email"`
	SMS   bool `bson:"sms" json:"sms"`
	Push  bool `bson:"push" json:"push"`
}

type PrivacyPreferences struct {
	ProfileVisibility string `bson:"profile_visibility" json:"profileVisibility"` // public | private
}

type Preferences struct {
	Notifications NotificationPreferences `bson:"notifications" json:"notifications"`
	Privacy       PrivacyPreferences      `bson:"privacy" json:"privacy"`
}

// DefaultPreferences returns the preference sub-document new users start with.
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: NotificationPreferences{Email: true, SMS: false, Push: true},
		Privacy:       PrivacyPreferences{ProfileVisibility: "public"},
	}
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Password  string `bson:"password" json:"-"` // argon2id hash, never serialized
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`

	Role         string  `bson:"role" json:"role"`
	BusinessName string  `bson:"business_name,omitempty" json:"businessName,omitempty"`
	BusinessType string  `bson:"business_type,omitempty" json:"businessType,omitempty"`
	Address      Address `bson:"address,omitempty" json:"address,omitempty"`
	ProfileImage string  `bson:"profile_image,omitempty" json:"profileImage,omitempty"`

	IsVerified bool       `bson:"is_verified" json:"isVerified"`
	IsActive   bool       `bson:"is_active" json:"isActive"`
	LastLogin  *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`

	Preferences Preferences `bson:"preferences" json:"preferences"`
}
