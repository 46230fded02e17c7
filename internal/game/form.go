package game

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Score and week bounds accepted from the edit form
const (
	MinWeek   = 1
	MaxWeek   = 20
	MinPoints = 0
	MaxPoints = 100
)

// Form holds raw edit-form values, before title-casing and validation
type Form struct {
	ID            string
	Team          string
	Opponent      string
	HomeAway      string
	Week          string
	PointsFor     string
	PointsAgainst string
}

// FormFrom fills a form from an existing record for editing
func FormFrom(g Game) Form {
	f := Form{
		ID:            g.ID,
		Team:          g.Team,
		Opponent:      g.Opponent,
		Week:          strconv.Itoa(g.Week),
		PointsFor:     strconv.Itoa(g.PointsFor),
		PointsAgainst: strconv.Itoa(g.PointsAgainst),
	}
	if g.HomeAway != UnknownVenue {
		f.HomeAway = string(g.HomeAway)
	}
	return f
}

// FieldErrors maps a canonical field name to a user-facing message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ParseForm title-cases and validates the raw form values. On failure the
// returned error is a FieldErrors and no record should be sent anywhere.
func ParseForm(f Form) (Game, error) {
	errs := FieldErrors{}

	g := Game{
		ID:       strings.TrimSpace(f.ID),
		Team:     TitleCase(f.Team),
		Opponent: TitleCase(f.Opponent),
		HomeAway: ParseHomeAway(f.HomeAway),
		ImageURL: PlaceholderURL,
	}

	week, ok := parseFormInt(f.Week)
	if !ok {
		errs[FieldWeek] = weekMessage
	}
	g.Week = week

	pf, ok := parseFormInt(f.PointsFor)
	if !ok {
		errs[FieldPointsFor] = pointsForMessage
	}
	g.PointsFor = pf

	pa, ok := parseFormInt(f.PointsAgainst)
	if !ok {
		errs[FieldPointsAgainst] = pointsAgainstMessage
	}
	g.PointsAgainst = pa

	for field, msg := range Validate(g) {
		if _, seen := errs[field]; !seen {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		return Game{}, errs
	}

	return g.WithDerivedResult(), nil
}

const (
	teamMessage          = "Team is required."
	opponentMessage      = "Opponent is required."
	homeAwayMessage      = "Choose Home or Away."
	weekMessage          = "Week must be 1-20."
	pointsForMessage     = "PF must be 0-100."
	pointsAgainstMessage = "PA must be 0-100."
)

// Validate applies the range rules to a canonical record. It returns nil
// when the record is acceptable.
func Validate(g Game) FieldErrors {
	errs := FieldErrors{}

	if utf8.RuneCountInString(g.Team) < 2 {
		errs[FieldTeam] = teamMessage
	}
	if utf8.RuneCountInString(g.Opponent) < 2 {
		errs[FieldOpponent] = opponentMessage
	}
	if g.HomeAway != Home && g.HomeAway != Away {
		errs[FieldHomeAway] = homeAwayMessage
	}
	if g.Week < MinWeek || g.Week > MaxWeek {
		errs[FieldWeek] = weekMessage
	}
	if g.PointsFor < MinPoints || g.PointsFor > MaxPoints {
		errs[FieldPointsFor] = pointsForMessage
	}
	if g.PointsAgainst < MinPoints || g.PointsAgainst > MaxPoints {
		errs[FieldPointsAgainst] = pointsAgainstMessage
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TitleCase trims s, collapses whitespace and capitalizes each word:
// "  ohio   STATE " becomes "Ohio State".
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func parseFormInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
