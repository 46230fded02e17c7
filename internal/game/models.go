package game

import "strconv"

// Result is the outcome of a game from the tracked team's side
type Result string

const (
	Win  Result = "W"
	Loss Result = "L"
)

// HomeAway records where the tracked team played
type HomeAway string

const (
	Home           HomeAway = "Home"
	Away           HomeAway = "Away"
	UnknownVenue   HomeAway = "-"
	PlaceholderURL          = "img/placeholder.png"
)

// Game is the canonical in-memory record every other package works with.
// Records are values: an edit replaces the whole record.
type Game struct {
	ID            string   `json:"id"`
	Week          int      `json:"week"`
	Team          string   `json:"team"`
	Opponent      string   `json:"opponent"`
	HomeAway      HomeAway `json:"homeAway"`
	PointsFor     int      `json:"pointsFor"`
	PointsAgainst int      `json:"pointsAgainst"`
	Result        Result   `json:"result"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// DeriveResult returns W only when the team outscored the opponent.
// A tie counts as a loss.
func DeriveResult(pointsFor, pointsAgainst int) Result {
	if pointsFor > pointsAgainst {
		return Win
	}
	return Loss
}

// WithDerivedResult returns a copy of g whose Result agrees with its score
func (g Game) WithDerivedResult() Game {
	g.Result = DeriveResult(g.PointsFor, g.PointsAgainst)
	return g
}

// Matchup is a short display label, e.g. "Georgia vs Clemson (Week 1)"
func (g Game) Matchup() string {
	label := g.Team + " vs " + g.Opponent
	if g.Week > 0 {
		label += " (Week " + strconv.Itoa(g.Week) + ")"
	}
	return label
}
