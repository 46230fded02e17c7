package query

import "strings"

// ResultFilter restricts the list to wins, losses or everything
type ResultFilter string

const (
	All   ResultFilter = "ALL"
	OnlyW ResultFilter = "W"
	OnlyL ResultFilter = "L"
)

// SortField names a sortable column of a game
type SortField string

const (
	SortWeek          SortField = "week"
	SortTeam          SortField = "team"
	SortOpponent      SortField = "opponent"
	SortHomeAway      SortField = "homeAway"
	SortPointsFor     SortField = "pointsFor"
	SortPointsAgainst SortField = "pointsAgainst"
	SortResult        SortField = "result"
)

// Direction is the sort order
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultPageSize applies when no preference has been stored
const DefaultPageSize = 10

// State is the search/filter/sort/page selection driving the list view
type State struct {
	Search    string       `json:"search"`
	Result    ResultFilter `json:"result"`
	SortField SortField    `json:"sortField"`
	SortDir   Direction    `json:"sortDir"`
	Page      int          `json:"page"`
	PageSize  int          `json:"pageSize"`
}

// DefaultState is the selection a fresh list view starts from
func DefaultState() State {
	return State{
		Result:    All,
		SortField: SortWeek,
		SortDir:   Asc,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

// Normalized returns s with every unset or invalid field replaced by its default
func (s State) Normalized() State {
	s.Result = ParseResultFilter(string(s.Result))
	s.SortField = ParseSortField(string(s.SortField))
	s.SortDir = ParseDirection(string(s.SortDir))
	if s.Page < 1 {
		s.Page = 1
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	return s
}

// ParseResultFilter accepts W/L in any case, anything else means ALL
func ParseResultFilter(v string) ResultFilter {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "W":
		return OnlyW
	case "L":
		return OnlyL
	default:
		return All
	}
}

var sortFields = map[string]SortField{
	"week":           SortWeek,
	"team":           SortTeam,
	"opponent":       SortOpponent,
	"homeaway":       SortHomeAway,
	"home_away":      SortHomeAway,
	"pointsfor":      SortPointsFor,
	"points_for":     SortPointsFor,
	"team_score":     SortPointsFor,
	"pf":             SortPointsFor,
	"pointsagainst":  SortPointsAgainst,
	"points_against": SortPointsAgainst,
	"opponent_score": SortPointsAgainst,
	"pa":             SortPointsAgainst,
	"result":         SortResult,
}

// ParseSortField resolves column names case-insensitively, falling back to week
func ParseSortField(v string) SortField {
	if f, ok := sortFields[strings.ToLower(strings.TrimSpace(v))]; ok {
		return f
	}
	return SortWeek
}

// ParseDirection falls back to ascending for anything but "desc"
func ParseDirection(v string) Direction {
	if strings.EqualFold(strings.TrimSpace(v), string(Desc)) {
		return Desc
	}
	return Asc
}
