package game

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Canonical field names used as keys of the alias table
const (
	FieldID            = "id"
	FieldWeek          = "week"
	FieldTeam          = "team"
	FieldOpponent      = "opponent"
	FieldHomeAway      = "homeAway"
	FieldPointsFor     = "pointsFor"
	FieldPointsAgainst = "pointsAgainst"
	FieldImageURL      = "imageUrl"
)

// fieldAliases lists, per canonical field, the raw keys servers have been seen
// to send. Earlier keys win. Adding a new alias is a one-line edit here.
var fieldAliases = map[string][]string{
	FieldID:            {"id"},
	FieldWeek:          {"week"},
	FieldTeam:          {"team"},
	FieldOpponent:      {"opponent"},
	FieldHomeAway:      {"home_away", "homeAway", "homeaway", "home", "ha"},
	FieldPointsFor:     {"team_score", "teamScore", "pointsfor", "pointsFor", "pf"},
	FieldPointsAgainst: {"opponent_score", "opponentScore", "pointsagainst", "pointsAgainst", "pa"},
	FieldImageURL:      {"imageurl", "image_url", "imageUrl"},
}

// Aliases returns the ordered raw keys accepted for a canonical field
func Aliases(field string) []string {
	return append([]string(nil), fieldAliases[field]...)
}

// Normalize maps a raw server record of any naming variant to a canonical Game.
// It never fails: missing or malformed fields fall back to their defaults.
func Normalize(raw map[string]interface{}) Game {
	g := Game{
		ID:            toID(lookup(raw, FieldID)),
		Week:          toInt(lookup(raw, FieldWeek)),
		Team:          toText(lookup(raw, FieldTeam)),
		Opponent:      toText(lookup(raw, FieldOpponent)),
		HomeAway:      ParseHomeAway(lookup(raw, FieldHomeAway)),
		PointsFor:     toScore(lookup(raw, FieldPointsFor)),
		PointsAgainst: toScore(lookup(raw, FieldPointsAgainst)),
		ImageURL:      toText(lookup(raw, FieldImageURL)),
	}
	if g.ImageURL == "" {
		g.ImageURL = PlaceholderURL
	}
	return g.WithDerivedResult()
}

// NormalizeAll normalizes every element of a decoded JSON array, skipping
// entries that are not objects
func NormalizeAll(items []interface{}) []Game {
	games := make([]Game, 0, len(items))
	for _, item := range items {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		games = append(games, Normalize(raw))
	}
	return games
}

// lookup returns the value of the first alias key present in raw.
// A present key holding null, 0 or "" still counts as present.
func lookup(raw map[string]interface{}, field string) interface{} {
	for _, key := range fieldAliases[field] {
		if v, ok := raw[key]; ok {
			return v
		}
	}
	return nil
}

// ParseHomeAway accepts the string and boolean spellings seen in payloads and forms
func ParseHomeAway(v interface{}) HomeAway {
	switch val := v.(type) {
	case bool:
		if val {
			return Home
		}
		return Away
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "home", "h", "vs", "true":
			return Home
		case "away", "a", "@", "false":
			return Away
		}
	}
	return UnknownVenue
}

func toID(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

func toText(v interface{}) string {
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str)
	}
	return ""
}

func toInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return floatToInt(val)
	case json.Number:
		return parseNumber(val.String())
	case string:
		return parseNumber(val)
	case int:
		return val
	case int64:
		return int(val)
	default:
		return 0
	}
}

func toScore(v interface{}) int {
	if n := toInt(v); n > 0 {
		return n
	}
	return 0
}

func parseNumber(s string) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return floatToInt(f)
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
