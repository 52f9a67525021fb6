package query

import (
	"net/url"
	"strings"
	"time"
)

// DefaultOrdering sorts newest tasks first.
const DefaultOrdering = "-created_at"

const dateLayout = "2006-01-02"

// orderClauses whitelists the orderings a caller may request. The id column
// breaks ties so repeated listings come back in the same order.
var orderClauses = map[string]string{
	"created_at":  "created_at ASC, id ASC",
	"-created_at": "created_at DESC, id DESC",
	"title":       "title ASC, id ASC",
	"-title":      "title DESC, id DESC",
	"status":      "status ASC, id ASC",
	"-status":     "status DESC, id DESC",
}

// TaskFilter captures the optional refinements applied on top of the owner
// scope. The zero value matches everything the caller owns, ordered newest
// first.
type TaskFilter struct {
	Search   string
	Status   string
	DateFrom time.Time
	HasFrom  bool
	DateTo   time.Time
	HasTo    bool
	Ordering string
}

// ParseTaskFilter reads the supported query parameters. Malformed dates and
// unrecognized ordering keys are dropped silently, they are never an error.
func ParseTaskFilter(values url.Values) TaskFilter {
	f := TaskFilter{
		Search:   values.Get("search"),
		Status:   values.Get("status"),
		Ordering: DefaultOrdering,
	}

	if raw := values.Get("date_from"); raw != "" {
		if d, err := time.Parse(dateLayout, raw); err == nil {
			f.DateFrom = d
			f.HasFrom = true
		}
	}
	if raw := values.Get("date_to"); raw != "" {
		if d, err := time.Parse(dateLayout, raw); err == nil {
			f.DateTo = d
			f.HasTo = true
		}
	}

	if ordering := values.Get("ordering"); ordering != "" {
		if _, ok := orderClauses[ordering]; ok {
			f.Ordering = ordering
		}
	}

	return f
}

// WhereClause renders the filter as a parameterized WHERE body. The owner
// predicate always comes first; every task query goes through it.
func (f TaskFilter) WhereClause(ownerID string) (string, []any) {
	conds := []string{"owner_id = ?"}
	args := []any{ownerID}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		conds = append(conds, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.HasFrom {
		conds = append(conds, "date(created_at) >= ?")
		args = append(args, f.DateFrom.Format(dateLayout))
	}
	if f.HasTo {
		conds = append(conds, "date(created_at) <= ?")
		args = append(args, f.DateTo.Format(dateLayout))
	}

	return strings.Join(conds, " AND "), args
}

// OrderClause renders the ORDER BY body for the active ordering.
func (f TaskFilter) OrderClause() string {
	if clause, ok := orderClauses[f.Ordering]; ok {
		return clause
	}
	return orderClauses[DefaultOrdering]
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
