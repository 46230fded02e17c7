package stats

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fortuna/gridiron/internal/game"
)

// Summary is the aggregate shown on the stats panel
type Summary struct {
	TotalGames         int        `json:"totalGames"`
	Wins               int        `json:"wins"`
	Losses             int        `json:"losses"`
	AvgPointsFor       float64    `json:"avgPF"`
	HighestScoringGame *game.Game `json:"highPFGame"`
}

// Compute aggregates the whole collection. Callers must pass the unfiltered,
// unpaginated set: stats describe everything, not the current view.
func Compute(games []game.Game) Summary {
	var s Summary
	total := 0

	for i := range games {
		g := games[i].WithDerivedResult()
		s.TotalGames++
		if g.Result == game.Win {
			s.Wins++
		} else {
			s.Losses++
		}
		total += g.PointsFor

		// strict comparison keeps the first game on ties
		if s.HighestScoringGame == nil || g.PointsFor > s.HighestScoringGame.PointsFor {
			high := g
			s.HighestScoringGame = &high
		}
	}

	if s.TotalGames > 0 {
		s.AvgPointsFor = RoundTenth(float64(total) / float64(s.TotalGames))
	}
	return s
}

// RoundTenth rounds half away from zero to one decimal place
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatAvg renders the average the way the stats panel shows it
func FormatAvg(v float64) string {
	return strconv.FormatFloat(RoundTenth(v), 'f', 1, 64)
}

// Matches reports whether two summaries agree on every aggregate. The high
// game is compared by points only since servers pick ties differently.
func (s Summary) Matches(other Summary) bool {
	if s.TotalGames != other.TotalGames || s.Wins != other.Wins || s.Losses != other.Losses {
		return false
	}
	if RoundTenth(s.AvgPointsFor) != RoundTenth(other.AvgPointsFor) {
		return false
	}
	if (s.HighestScoringGame == nil) != (other.HighestScoringGame == nil) {
		return false
	}
	if s.HighestScoringGame != nil && s.HighestScoringGame.PointsFor != other.HighestScoringGame.PointsFor {
		return false
	}
	return true
}

var (
	totalKeys  = []string{"totalGames", "total", "total_games"}
	winsKeys   = []string{"wins", "w"}
	lossesKeys = []string{"losses", "l"}
	avgKeys    = []string{"avgPF", "avg_pf", "avgPointsFor", "avg_points_for"}
	highKeys   = []string{"highPFGame", "high_pf_game", "highestScoringGame"}
)

// FromPayload reads a GET /stats response of any naming variant. Missing
// fields default to zero; losses are derived when only wins are sent.
func FromPayload(raw map[string]interface{}) Summary {
	s := Summary{
		TotalGames:   int(number(raw, totalKeys)),
		Wins:         int(number(raw, winsKeys)),
		AvgPointsFor: RoundTenth(number(raw, avgKeys)),
	}

	if _, ok := first(raw, lossesKeys); ok {
		s.Losses = int(number(raw, lossesKeys))
	} else if s.TotalGames >= s.Wins {
		s.Losses = s.TotalGames - s.Wins
	}
	if _, ok := first(raw, totalKeys); !ok {
		s.TotalGames = s.Wins + s.Losses
	}

	if v, ok := first(raw, highKeys); ok {
		if high, ok := v.(map[string]interface{}); ok {
			g := game.Normalize(high)
			s.HighestScoringGame = &g
		}
	}
	return s
}

func first(raw map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func number(raw map[string]interface{}, keys []string) float64 {
	v, _ := first(raw, keys)
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return val
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case int:
		return float64(val)
	default:
		return 0
	}
}
