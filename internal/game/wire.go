package game

// Wire is the JSON body written to the API. Servers in the field disagree on
// snake_case vs camelCase, so every observed alias is sent.
type Wire struct {
	ID                 string   `json:"id,omitempty"`
	Week               int      `json:"week"`
	Team               string   `json:"team"`
	Opponent           string   `json:"opponent"`
	HomeAway           HomeAway `json:"homeAway"`
	HomeAwaySnake      HomeAway `json:"home_away"`
	PointsFor          int      `json:"pointsFor"`
	TeamScore          int      `json:"team_score"`
	TeamScoreCamel     int      `json:"teamScore"`
	PointsAgainst      int      `json:"pointsAgainst"`
	OpponentScore      int      `json:"opponent_score"`
	OpponentScoreCamel int      `json:"opponentScore"`
	Result             Result   `json:"result"`
	ImageURL           string   `json:"imageUrl,omitempty"`
	ImageURLSnake      string   `json:"image_url,omitempty"`
}

// ToWire builds the redundant write body for g. The result is always derived
// from the score before it leaves the client.
func ToWire(g Game) Wire {
	g = g.WithDerivedResult()
	image := g.ImageURL
	if image == PlaceholderURL {
		image = ""
	}
	return Wire{
		ID:                 g.ID,
		Week:               g.Week,
		Team:               g.Team,
		Opponent:           g.Opponent,
		HomeAway:           g.HomeAway,
		HomeAwaySnake:      g.HomeAway,
		PointsFor:          g.PointsFor,
		TeamScore:          g.PointsFor,
		TeamScoreCamel:     g.PointsFor,
		PointsAgainst:      g.PointsAgainst,
		OpponentScore:      g.PointsAgainst,
		OpponentScoreCamel: g.PointsAgainst,
		Result:             g.Result,
		ImageURL:           image,
		ImageURLSnake:      image,
	}
}

// WireAll converts a slice of records for list responses
func WireAll(games []Game) []Wire {
	out := make([]Wire, 0, len(games))
	for _, g := range games {
		out = append(out, ToWire(g))
	}
	return out
}
