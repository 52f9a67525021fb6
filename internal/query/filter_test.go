package query

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseTaskFilter_Defaults(t *testing.T) {
	f := ParseTaskFilter(url.Values{})

	if f.Search != "" || f.Status != "" {
		t.Errorf("zero params should yield empty search/status, got %q/%q", f.Search, f.Status)
	}
	if f.HasFrom || f.HasTo {
		t.Error("zero params should not set date bounds")
	}
	if f.Ordering != DefaultOrdering {
		t.Errorf("Ordering = %q, want %q", f.Ordering, DefaultOrdering)
	}
}

func TestParseTaskFilter_Dates(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantSet bool
	}{
		{name: "valid date", raw: "2024-03-01", wantSet: true},
		{name: "not a date", raw: "not-a-date", wantSet: false},
		{name: "wrong layout", raw: "01/03/2024", wantSet: false},
		{name: "partial date", raw: "2024-03", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{"date_from": {tt.raw}}
			f := ParseTaskFilter(values)
			if f.HasFrom != tt.wantSet {
				t.Errorf("HasFrom = %v, want %v", f.HasFrom, tt.wantSet)
			}
			if tt.wantSet {
				want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
				if !f.DateFrom.Equal(want) {
					t.Errorf("DateFrom = %v, want %v", f.DateFrom, want)
				}
			}
		})
	}
}

func TestParseTaskFilter_MalformedDateMatchesAbsent(t *testing.T) {
	plain := ParseTaskFilter(url.Values{})
	malformed := ParseTaskFilter(url.Values{"date_from": {"yesterday"}, "date_to": {"2024-13-45"}})

	if malformed != plain {
		t.Errorf("malformed dates should behave as absent: got %+v, want %+v", malformed, plain)
	}
}

func TestParseTaskFilter_Ordering(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "created_at", want: "created_at"},
		{raw: "-created_at", want: "-created_at"},
		{raw: "title", want: "title"},
		{raw: "-title", want: "-title"},
		{raw: "status", want: "status"},
		{raw: "-status", want: "-status"},
		{raw: "owner_id", want: DefaultOrdering},
		{raw: "id; DROP TABLE tasks", want: DefaultOrdering},
		{raw: "", want: DefaultOrdering},
	}

	for _, tt := range tests {
		values := url.Values{}
		if tt.raw != "" {
			values.Set("ordering", tt.raw)
		}
		f := ParseTaskFilter(values)
		if f.Ordering != tt.want {
			t.Errorf("ordering %q: got %q, want %q", tt.raw, f.Ordering, tt.want)
		}
	}
}

func TestWhereClause_OwnerAlwaysFirst(t *testing.T) {
	f := TaskFilter{Search: "report", Status: "pending"}
	clause, args := f.WhereClause("user-1")

	if !strings.HasPrefix(clause, "owner_id = ?") {
		t.Errorf("clause must start with the owner predicate, got %q", clause)
	}
	if len(args) == 0 || args[0] != "user-1" {
		t.Errorf("first arg must be the owner id, got %v", args)
	}
}

func TestWhereClause_AllPredicates(t *testing.T) {
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	f := TaskFilter{
		Search:   "Gym",
		Status:   "completed",
		DateFrom: from,
		HasFrom:  true,
		DateTo:   to,
		HasTo:    true,
	}

	clause, args := f.WhereClause("u")
	if got := strings.Count(clause, "?"); got != 6 {
		t.Fatalf("placeholder count = %d, want 6 (clause %q)", got, clause)
	}
	if len(args) != 6 {
		t.Fatalf("args = %v, want 6 values", args)
	}
	if args[1] != "%gym%" || args[2] != "%gym%" {
		t.Errorf("search args should be lowercased patterns, got %v", args[1:3])
	}
	if args[4] != "2024-01-02" || args[5] != "2024-02-03" {
		t.Errorf("date args = %v, want formatted dates", args[4:])
	}
}

func TestWhereClause_EscapesLikeMetacharacters(t *testing.T) {
	f := TaskFilter{Search: "100%_done"}
	_, args := f.WhereClause("u")

	want := `%100\%\_done%`
	if args[1] != want {
		t.Errorf("pattern = %q, want %q", args[1], want)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		ordering string
		want     string
	}{
		{ordering: "-created_at", want: "created_at DESC, id DESC"},
		{ordering: "title", want: "title ASC, id ASC"},
		{ordering: "", want: "created_at DESC, id DESC"},
		{ordering: "bogus", want: "created_at DESC, id DESC"},
	}

	for _, tt := range tests {
		f := TaskFilter{Ordering: tt.ordering}
		if got := f.OrderClause(); got != tt.want {
			t.Errorf("OrderClause(%q) = %q, want %q", tt.ordering, got, tt.want)
		}
	}
}
