package handlers

import (
	"strings"
	"testing"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(f float64) *float64 { return &f }

func validCreateServiceRequest() CreateServiceRequest {
	return CreateServiceRequest{
		Title:       "Wedding Catering",
		Description: "Full-service catering for weddings up to 200 guests.",
		Category:    "catering",
		Price:       floatPtr(1500),
		PriceType:   "per_event",
		Duration:    floatPtr(6),
	}
}

func TestValidateCreateService(t *testing.T) {
	longString := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	tests := []struct {
		name      string
		mutate    func(r *CreateServiceRequest)
		wantField string
	}{
		{"valid", func(r *CreateServiceRequest) {}, ""},
		{"missing title", func(r *CreateServiceRequest) { r.Title = " " }, "title"},
		{"title too long", func(r *CreateServiceRequest) { r.Title = longString(101) }, "title"},
		// 100 two-byte runes: limits count characters, not bytes
		{"multibyte title at limit", func(r *CreateServiceRequest) { r.Title = strings.Repeat("é", 100) }, ""},
		{"multibyte title over limit", func(r *CreateServiceRequest) { r.Title = strings.Repeat("é", 101) }, "title"},
		{"missing description", func(r *CreateServiceRequest) { r.Description = "" }, "description"},
		{"description too long", func(r *CreateServiceRequest) { r.Description = longString(1001) }, "description"},
		{"unknown category", func(r *CreateServiceRequest) { r.Category = "plumbing" }, "category"},
		{"missing price", func(r *CreateServiceRequest) { r.Price = nil }, "price"},
		{"negative price", func(r *CreateServiceRequest) { r.Price = floatPtr(-1) }, "price"},
		{"free service allowed", func(r *CreateServiceRequest) { r.Price = floatPtr(0) }, ""},
		{"unknown price type", func(r *CreateServiceRequest) { r.PriceType = "weekly" }, "priceType"},
		{"missing duration", func(r *CreateServiceRequest) { r.Duration = nil }, "duration"},
		{"duration below half hour", func(r *CreateServiceRequest) { r.Duration = floatPtr(0.25) }, "duration"},
		{
			"zero capacity",
			func(r *CreateServiceRequest) {
				zero := 0
				r.Capacity = &models.Capacity{Min: &zero}
			},
			"capacity.min",
		},
		{
			"bad location type",
			func(r *CreateServiceRequest) {
				r.Location = &models.ServiceLocation{Type: "virtual"}
			},
			"location.type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateServiceRequest()
			tt.mutate(&req)
			errs := validateCreateService(&req)

			if tt.wantField == "" {
				if len(errs) > 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Field != tt.wantField {
				t.Errorf("errors = %v, want one on %q", errs, tt.wantField)
			}
		})
	}
}

func TestBuildServiceUpdateAllowList(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	req := UpdateServiceRequest{
		Title: strPtr("  Updated Title "),
		Price: floatPtr(99.50),
		Tags:  []string{"outdoor", "summer"},
	}
	updates := buildServiceUpdate(&req)

	if updates["title"] != "Updated Title" {
		t.Errorf("title = %v, want trimmed value", updates["title"])
	}
	if updates["price"] != 99.50 {
		t.Errorf("price = %v, want 99.50", updates["price"])
	}
	if _, ok := updates["tags"]; !ok {
		t.Error("tags missing from update")
	}
	// Owner, rating, counters and visibility flags are never client-writable
	for _, forbidden := range []string{"provider", "rating", "metadata", "is_active", "is_verified", "description"} {
		if _, ok := updates[forbidden]; ok {
			t.Errorf("update contains %q, which must not be settable", forbidden)
		}
	}
}

func TestValidateServiceUpdate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name      string
		req       UpdateServiceRequest
		wantField string
	}{
		{"empty request", UpdateServiceRequest{}, ""},
		{"blank title", UpdateServiceRequest{Title: strPtr(" ")}, "title"},
		{"multibyte title at limit", UpdateServiceRequest{Title: strPtr(strings.Repeat("é", 100))}, ""},
		{"bad category", UpdateServiceRequest{Category: strPtr("plumbing")}, "category"},
		{"negative price", UpdateServiceRequest{Price: floatPtr(-10)}, "price"},
		{"short duration", UpdateServiceRequest{Duration: floatPtr(0.1)}, "duration"},
		{"bad price type", UpdateServiceRequest{PriceType: strPtr("weekly")}, "priceType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateServiceUpdate(&tt.req)
			if tt.wantField == "" {
				if len(errs) > 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Field != tt.wantField {
				t.Errorf("errors = %v, want one on %q", errs, tt.wantField)
			}
		})
	}
}

func TestCanModifyService(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	svc := &models.Service{Provider: owner}

	tests := []struct {
		name   string
		caller *models.User
		want   bool
	}{
		{"owner", &models.User{ID: owner, Role: models.RoleServiceProvider}, true},
		{"admin", &models.User{ID: other, Role: models.RoleAdmin}, true},
		{"other provider", &models.User{ID: other, Role: models.RoleServiceProvider}, false},
		{"customer", &models.User{ID: other, Role: models.RoleCustomer}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canModifyService(tt.caller, svc); got != tt.want {
				t.Errorf("canModifyService() = %v, want %v", got, tt.want)
			}
		})
	}
}
