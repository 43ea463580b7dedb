package shared

import (
	"net/http"
	"strconv"

	"ems/internal/transport/http/api"
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads ?limit and ?offset. Malformed values fall back to
// the defaults and limit is capped at maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Limit: defaultLimit}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = min(v, maxLimit)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		p.Offset = v
	}
	return p
}

func (p Pagination) Page(items any, total int) api.Page {
	return api.Page{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}
