package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Params encodes s for a server-paginated GET /games. Both spellings of the
// page size and search keys are sent since deployed servers read either.
func Params(s State) url.Values {
	s = s.Normalized()

	params := url.Values{}
	params.Set("page", strconv.Itoa(s.Page))
	params.Set("page_size", strconv.Itoa(s.PageSize))
	params.Set("size", strconv.Itoa(s.PageSize))

	if q := strings.TrimSpace(s.Search); q != "" {
		params.Set("q", q)
		params.Set("search", q)
	}
	if s.Result != All {
		params.Set("result", string(s.Result))
	}
	params.Set("sort", string(s.SortField))
	params.Set("order", string(s.SortDir))

	return params
}

// ParseParams decodes a GET /games query string. The boolean reports whether
// the caller asked for a page at all; without it the whole collection is wanted.
func ParseParams(values url.Values) (State, bool) {
	s := DefaultState()

	paged := false
	if v := values.Get("page"); v != "" {
		paged = true
		if n, err := strconv.Atoi(v); err == nil {
			s.Page = n
		}
	}
	if v := firstOf(values, "page_size", "size", "pageSize"); v != "" {
		paged = true
		if n, err := strconv.Atoi(v); err == nil {
			s.PageSize = n
		}
	}

	s.Search = strings.TrimSpace(firstOf(values, "q", "search"))
	s.Result = ParseResultFilter(values.Get("result"))
	if v := values.Get("sort"); v != "" {
		s.SortField = ParseSortField(v)
	}
	if v := firstOf(values, "order", "dir"); v != "" {
		s.SortDir = ParseDirection(v)
	}

	return s.Normalized(), paged
}

func firstOf(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := values.Get(key); v != "" {
			return v
		}
	}
	return ""
}
