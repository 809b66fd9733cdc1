package handlers

import (
	"net/url"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseListServicesQueryDefaults(t *testing.T) {
	q, errs := parseListServicesQuery(url.Values{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if q.Page != 1 || q.Limit != 12 {
		t.Errorf("page/limit = %d/%d, want 1/12", q.Page, q.Limit)
	}
	if q.SortBy != "createdAt" || q.SortOrder != "desc" {
		t.Errorf("sort = %s/%s, want createdAt/desc", q.SortBy, q.SortOrder)
	}
}

func TestParseListServicesQueryInvalid(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantField string
	}{
		{"page zero", url.Values{"page": {"0"}}, "page"},
		{"page not a number", url.Values{"page": {"abc"}}, "page"},
		{"limit zero", url.Values{"limit": {"0"}}, "limit"},
		{"limit over max", url.Values{"limit": {"51"}}, "limit"},
		{"unknown category", url.Values{"category": {"plumbing"}}, "category"},
		{"negative min price", url.Values{"minPrice": {"-5"}}, "minPrice"},
		{"min price not a number", url.Values{"minPrice": {"cheap"}}, "minPrice"},
		{"negative max price", url.Values{"maxPrice": {"-1"}}, "maxPrice"},
		{"unknown sort field", url.Values{"sortBy": {"distance"}}, "sortBy"},
		{"bad sort order", url.Values{"sortOrder": {"sideways"}}, "sortOrder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, errs := parseListServicesQuery(tt.query)
			if q != nil {
				t.Error("expected nil query on validation failure")
			}
			if len(errs) != 1 {
				t.Fatalf("errors = %v, want exactly one", errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("error field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestParseListServicesQueryCollectsAllErrors(t *testing.T) {
	_, errs := parseListServicesQuery(url.Values{
		"page":  {"-1"},
		"limit": {"999"},
	})
	if len(errs) != 2 {
		t.Errorf("errors = %v, want two", errs)
	}
}

func TestListServicesFilterBase(t *testing.T) {
	q, _ := parseListServicesQuery(url.Values{})
	filter := q.Filter()

	if filter["is_active"] != true || filter["is_verified"] != true {
		t.Errorf("filter = %v, must always require active and verified", filter)
	}
	if len(filter) != 2 {
		t.Errorf("filter = %v, want only the visibility conditions", filter)
	}
}

func TestListServicesFilterPriceRange(t *testing.T) {
	q, errs := parseListServicesQuery(url.Values{
		"category": {"catering"},
		"minPrice": {"10"},
		"maxPrice": {"250.50"},
	})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	filter := q.Filter()
	if filter["category"] != "catering" {
		t.Errorf("category = %v, want catering", filter["category"])
	}
	price, ok := filter["price"].(bson.M)
	if !ok {
		t.Fatalf("price filter missing: %v", filter)
	}
	if price["$gte"] != 10.0 || price["$lte"] != 250.50 {
		t.Errorf("price = %v, want $gte 10 and $lte 250.50", price)
	}
}

func TestListServicesFilterLocation(t *testing.T) {
	q, _ := parseListServicesQuery(url.Values{"location": {"St. Louis"}})
	filter := q.Filter()

	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("$or = %v, want city and state clauses", filter["$or"])
	}
	re, ok := or[0]["location.address.city"].(primitive.Regex)
	if !ok {
		t.Fatalf("city clause = %v, want a regex", or[0])
	}
	// The dot in "St." must be escaped, not treated as a wildcard
	if re.Pattern != `St\. Louis` {
		t.Errorf("pattern = %q, want quoted literal", re.Pattern)
	}
	if re.Options != "i" {
		t.Errorf("options = %q, want case-insensitive", re.Options)
	}
}

func TestListServicesFilterTextSearch(t *testing.T) {
	q, _ := parseListServicesQuery(url.Values{"search": {"wedding catering"}})
	filter := q.Filter()

	text, ok := filter["$text"].(bson.M)
	if !ok {
		t.Fatalf("$text missing: %v", filter)
	}
	if text["$search"] != "wedding catering" {
		t.Errorf("$search = %v, want the raw phrase", text["$search"])
	}
}

func TestListServicesSort(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		wantKey   string
		wantValue int
	}{
		{"default newest first", "", "", "created_at", -1},
		{"price ascending", "price", "asc", "price", 1},
		{"rating maps to average", "rating", "desc", "rating.average", -1},
		{"popularity maps to bookings", "popularity", "desc", "metadata.bookings", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			if tt.sortBy != "" {
				values.Set("sortBy", tt.sortBy)
			}
			if tt.sortOrder != "" {
				values.Set("sortOrder", tt.sortOrder)
			}
			q, errs := parseListServicesQuery(values)
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			sort := q.Sort()
			if len(sort) != 1 {
				t.Fatalf("sort = %v, want one key", sort)
			}
			if sort[0].Key != tt.wantKey || sort[0].Value != tt.wantValue {
				t.Errorf("sort = %v, want {%s %d}", sort, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestListServicesSkip(t *testing.T) {
	q, _ := parseListServicesQuery(url.Values{"page": {"3"}, "limit": {"20"}})
	if got := q.Skip(); got != 40 {
		t.Errorf("Skip() = %d, want 40", got)
	}
}

func TestPaginationMeta(t *testing.T) {
	tests := []struct {
		name           string
		page, limit    int
		total          int64
		wantPages      int
		wantHasNext    bool
		wantHasPrev    bool
	}{
		{"empty result", 1, 12, 0, 0, false, false},
		{"partial last page", 1, 12, 25, 3, true, false},
		{"middle page", 2, 12, 25, 3, true, true},
		{"last page", 3, 12, 25, 3, false, true},
		{"exact multiple", 1, 10, 20, 2, true, false},
		{"page past the end", 5, 12, 25, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paginationMeta(tt.page, tt.limit, tt.total)
			if p.CurrentPage != tt.page {
				t.Errorf("CurrentPage = %d, want %d", p.CurrentPage, tt.page)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.Total != tt.total {
				t.Errorf("Total = %d, want %d", p.Total, tt.total)
			}
			if p.HasNext != tt.wantHasNext {
				t.Errorf("HasNext = %v, want %v", p.HasNext, tt.wantHasNext)
			}
			if p.HasPrev != tt.wantHasPrev {
				t.Errorf("HasPrev = %v, want %v", p.HasPrev, tt.wantHasPrev)
			}
		})
	}
}
