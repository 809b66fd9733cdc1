package handlers

import (
	"net/url"
	"testing"

	"github.com/Marshflair1988/ServiceIndustryApplication/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseListUsersQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantField string
	}{
		{"defaults", url.Values{}, ""},
		{"valid full", url.Values{"page": {"2"}, "limit": {"50"}, "role": {"admin"}, "search": {"ada"}}, ""},
		{"page zero", url.Values{"page": {"0"}}, "page"},
		{"limit over max", url.Values{"limit": {"101"}}, "limit"},
		{"unknown role", url.Values{"role": {"superuser"}}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, errs := parseListUsersQuery(tt.query)
			if tt.wantField == "" {
				if len(errs) > 0 {
					t.Fatalf("unexpected errors: %v", errs)
				}
				if tt.name == "defaults" && (q.Page != 1 || q.Limit != 10) {
					t.Errorf("defaults = %d/%d, want 1/10", q.Page, q.Limit)
				}
				return
			}
			if len(errs) != 1 || errs[0].Field != tt.wantField {
				t.Errorf("errors = %v, want one on %q", errs, tt.wantField)
			}
		})
	}
}

func TestListUsersFilterSearch(t *testing.T) {
	q, _ := parseListUsersQuery(url.Values{"role": {"service_provider"}, "search": {"smith"}})
	filter := q.Filter()

	if filter["role"] != "service_provider" {
		t.Errorf("role = %v", filter["role"])
	}
	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 4 {
		t.Fatalf("$or = %v, want four search clauses", filter["$or"])
	}
	wantFields := []string{"first_name", "last_name", "email", "business_name"}
	for i, field := range wantFields {
		re, ok := or[i][field].(primitive.Regex)
		if !ok {
			t.Errorf("clause %d missing regex on %q: %v", i, field, or[i])
			continue
		}
		if re.Pattern != "smith" || re.Options != "i" {
			t.Errorf("regex on %q = %v, want case-insensitive 'smith'", field, re)
		}
	}
}

func TestBuildUserUpdateAdminGating(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	req := UpdateUserRequest{
		FirstName:  strPtr("Grace"),
		Role:       strPtr(models.RoleAdmin),
		IsActive:   boolPtr(false),
		IsVerified: boolPtr(true),
	}

	asUser := buildUserUpdate(&req, false)
	if asUser["first_name"] != "Grace" {
		t.Errorf("first_name = %v", asUser["first_name"])
	}
	// Privilege fields silently dropped for non-admin callers
	for _, forbidden := range []string{"role", "is_active", "is_verified"} {
		if _, ok := asUser[forbidden]; ok {
			t.Errorf("non-admin update contains %q", forbidden)
		}
	}

	asAdmin := buildUserUpdate(&req, true)
	if asAdmin["role"] != models.RoleAdmin {
		t.Errorf("admin role update = %v", asAdmin["role"])
	}
	if asAdmin["is_active"] != false {
		t.Errorf("admin is_active update = %v", asAdmin["is_active"])
	}
	if asAdmin["is_verified"] != true {
		t.Errorf("admin is_verified update = %v", asAdmin["is_verified"])
	}
}

func TestValidateUserUpdate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name      string
		req       UpdateUserRequest
		isAdmin   bool
		wantField string
	}{
		{"empty request", UpdateUserRequest{}, false, ""},
		{"blank first name", UpdateUserRequest{FirstName: strPtr("")}, false, "firstName"},
		{"bad phone", UpdateUserRequest{Phone: strPtr("letters")}, false, "phone"},
		{"bad business type", UpdateUserRequest{BusinessType: strPtr("arcade")}, false, "businessType"},
		{"bad role as admin", UpdateUserRequest{Role: strPtr("superuser")}, true, "role"},
		{"bad role ignored for non-admin", UpdateUserRequest{Role: strPtr("superuser")}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateUserUpdate(&tt.req, tt.isAdmin)
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

func TestCanAccessUser(t *testing.T) {
	self := primitive.NewObjectID()
	other := primitive.NewObjectID()

	tests := []struct {
		name   string
		caller *models.User
		target primitive.ObjectID
		want   bool
	}{
		{"self", &models.User{ID: self, Role: models.RoleCustomer}, self, true},
		{"admin on anyone", &models.User{ID: self, Role: models.RoleAdmin}, other, true},
		{"other user", &models.User{ID: self, Role: models.RoleCustomer}, other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canAccessUser(tt.caller, tt.target); got != tt.want {
				t.Errorf("canAccessUser() = %v, want %v", got, tt.want)
			}
		})
	}
}
