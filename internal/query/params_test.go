package query

import (
	"net/url"
	"testing"
)

func TestParams_EncodesState(t *testing.T) {
	s := State{Search: "  tex ", Result: OnlyW, SortField: SortTeam, SortDir: Desc, Page: 2, PageSize: 25}

	params := Params(s)

	expect := map[string]string{
		"page":      "2",
		"page_size": "25",
		"size":      "25",
		"q":         "tex",
		"search":    "tex",
		"result":    "W",
		"sort":      "team",
		"order":     "desc",
	}
	for key, want := range expect {
		if got := params.Get(key); got != want {
			t.Errorf("param %s = %q, want %q", key, got, want)
		}
	}
}

func TestParams_OmitsEmptyFilters(t *testing.T) {
	params := Params(DefaultState())

	for _, key := range []string{"q", "search", "result"} {
		if params.Has(key) {
			t.Errorf("expected %s to be omitted, got %q", key, params.Get(key))
		}
	}
	if params.Get("page") != "1" || params.Get("page_size") != "10" {
		t.Errorf("unexpected defaults: %v", params)
	}
}

func TestParseParams_RoundTrip(t *testing.T) {
	s := State{Search: "ohio", Result: OnlyL, SortField: SortPointsAgainst, SortDir: Desc, Page: 3, PageSize: 5}

	got, paged := ParseParams(Params(s))

	if !paged {
		t.Fatalf("expected paged request")
	}
	if got != s {
		t.Fatalf("round trip mismatch\nwant %+v\ngot  %+v", s, got)
	}
}

func TestParseParams_AliasesAndDefaults(t *testing.T) {
	values, _ := url.ParseQuery("size=15&search=bama&result=w&sort=team_score&dir=DESC")

	got, paged := ParseParams(values)

	if !paged {
		t.Errorf("size alone should request a page")
	}
	if got.PageSize != 15 || got.Page != 1 {
		t.Errorf("unexpected paging: %+v", got)
	}
	if got.Search != "bama" || got.Result != OnlyW {
		t.Errorf("unexpected filters: %+v", got)
	}
	if got.SortField != SortPointsFor || got.SortDir != Desc {
		t.Errorf("unexpected sort: %+v", got)
	}
}

func TestParseParams_Unpaged(t *testing.T) {
	got, paged := ParseParams(url.Values{})
	if paged {
		t.Fatalf("empty query must not be paged")
	}
	if got != DefaultState() {
		t.Fatalf("expected default state, got %+v", got)
	}
}

func TestParseParams_InvalidNumbersFallBack(t *testing.T) {
	values, _ := url.ParseQuery("page=-4&page_size=zero")
	got, _ := ParseParams(values)
	if got.Page != 1 || got.PageSize != DefaultPageSize {
		t.Fatalf("expected defaults for invalid paging, got %+v", got)
	}
}
