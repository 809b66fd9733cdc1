package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the closed set of service categories.
var Categories = []string{
	"catering",
	"event_planning",
	"staffing",
	"cleaning",
	"maintenance",
	"security",
	"entertainment",
	"photography",
	"floral",
	"transportation",
	"other",
}

// PriceTypes enumerates how a price is applied.
var PriceTypes = []string{"hourly", "daily", "per_event", "per_person", "fixed"}

// LocationTypes describes where the service is delivered.
var LocationTypes = []string{"on_site", "off_site", "both"}

func ValidCategory(c string) bool {
	return contains(Categories, c)
}

func ValidPriceType(pt string) bool {
	return contains(PriceTypes, pt)
}

func ValidLocationType(lt string) bool {
	return contains(LocationTypes, lt)
}

type Capacity struct {
	Min *int `bson:"min,omitempty" json:"min,omitempty"`
	Max *int `bson:"max,omitempty" json:"max,omitempty"`
}

type ServiceLocation struct {
	Type         string  `bson:"type,omitempty" json:"type,omitempty"` // on_site | off_site | both
	Address      Address `bson:"address,omitempty" json:"address,omitempty"`
	TravelRadius float64 `bson:"travel_radius,omitempty" json:"travelRadius,omitempty"` // miles
}

type DayAvailability struct {
	Start     string `bson:"start,omitempty" json:"start,omitempty"` // "09:00"
	End       string `bson:"end,omitempty" json:"end,omitempty"`
	Available bool   `bson:"available" json:"available"`
}

type Availability struct {
	Monday    DayAvailability `bson:"monday" json:"monday"`
	Tuesday   DayAvailability `bson:"tuesday" json:"tuesday"`
	Wednesday DayAvailability `bson:"wednesday" json:"wednesday"`
	Thursday  DayAvailability `bson:"thursday" json:"thursday"`
	Friday    DayAvailability `bson:"friday" json:"friday"`
	Saturday  DayAvailability `bson:"saturday" json:"saturday"`
	Sunday    DayAvailability `bson:"sunday" json:"sunday"`
}

// DefaultAvailability marks every weekday available with no set hours.
func DefaultAvailability() Availability {
	day := DayAvailability{Available: true}
	return Availability{
		Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
		Friday: day, Saturday: day, Sunday: day,
	}
}

type ServiceImage struct {
	URL       string `bson:"url" json:"url"`
	Alt       string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool   `bson:"is_primary" json:"isPrimary"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"` // within [0,5]
	Count   int64   `bson:"count" json:"count"`
}

// ServiceMetadata holds counters mutated by read/booking side effects,
// never directly by the owner.
type ServiceMetadata struct {
	Views      int64      `bson:"views" json:"views"`
	Bookings   int64      `bson:"bookings" json:"bookings"`
	LastBooked *time.Time `bson:"last_booked,omitempty" json:"lastBooked,omitempty"`
}

// Service is a provider-owned listing. Publicly visible only when both
// IsActive and IsVerified are true.
type Service struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	Provider primitive.ObjectID `bson:"provider" json:"provider"`

	Title       string `bson:"title" json:"title"`             // <=100 chars
	Description string `bson:"description" json:"description"` // <=1000 chars
	Category    string `bson:"category" json:"category"`
	Subcategory string `bson:"subcategory,omitempty" json:"subcategory,omitempty"`

	Price     float64  `bson:"price" json:"price"`
	PriceType string   `bson:"price_type" json:"priceType"`
	Duration  float64  `bson:"duration" json:"duration"` // hours, >= 0.5
	Capacity  Capacity `bson:"capacity,omitempty" json:"capacity,omitempty"`

	Location     ServiceLocation `bson:"location,omitempty" json:"location,omitempty"`
	Availability Availability    `bson:"availability" json:"availability"`

	Images       []ServiceImage `bson:"images,omitempty" json:"images,omitempty"`
	Features     []string       `bson:"features,omitempty" json:"features,omitempty"`
	Requirements []string       `bson:"requirements,omitempty" json:"requirements,omitempty"`
	Tags         []string       `bson:"tags,omitempty" json:"tags,omitempty"`

	IsActive   bool `bson:"is_active" json:"isActive"`
	IsVerified bool `bson:"is_verified" json:"isVerified"`

	Rating   Rating          `bson:"rating" json:"rating"`
	Metadata ServiceMetadata `bson:"metadata" json:"metadata"`
}
