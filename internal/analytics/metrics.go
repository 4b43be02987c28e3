package analytics

import (
	"math"
	"sort"

	"asiacup/pkg/contracts/domain"
)

// ComputeKPIs derives the headline metrics of a filtered subset.
//
// toss_win_rate counts rows whose toss label equals their result label. The
// comparison is literal: it only means "won the toss and the match" when
// both columns use the same vocabulary. A row missing either label never
// counts, but stays in the denominator.
func ComputeKPIs(records []domain.MatchRecord) domain.KPIs {
	total := len(records)
	if total == 0 {
		return domain.KPIs{}
	}

	wins := 0
	tossMatches := 0
	for i := range records {
		wins += records[i].WinBinary
		r := &records[i]
		if r.Toss != "" && r.Result != "" && r.Toss == r.Result {
			tossMatches++
		}
	}

	return domain.KPIs{
		TotalMatches: total,
		WinRate:      percentage(wins, total),
		TossWinRate:  percentage(tossMatches, total),
	}
}

// GroupedWinRate groups records by (year, team) and returns the mean of
// win_binary for each group, ordered by year then team.
func GroupedWinRate(records []domain.MatchRecord) []domain.WinRatePoint {
	type key struct {
		year int
		team string
	}
	type acc struct {
		wins    int
		matches int
	}

	groups := make(map[key]*acc)
	for i := range records {
		k := key{year: records[i].Year, team: records[i].Team}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.wins += records[i].WinBinary
		a.matches++
	}

	points := make([]domain.WinRatePoint, 0, len(groups))
	for k, a := range groups {
		points = append(points, domain.WinRatePoint{
			Year:    k.year,
			Team:    k.team,
			WinRate: float64(a.wins) / float64(a.matches),
			Matches: a.matches,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Team < points[j].Team
	})
	return points
}

// Options returns the distinct non-empty years, teams and opponents present
// in records, each sorted ascending.
func Options(records []domain.MatchRecord) domain.FilterOptions {
	years := make(map[int]struct{})
	teams := make(map[string]struct{})
	opponents := make(map[string]struct{})

	for i := range records {
		r := &records[i]
		if r.Year > 0 {
			years[r.Year] = struct{}{}
		}
		if r.Team != "" {
			teams[r.Team] = struct{}{}
		}
		if r.Opponent != "" {
			opponents[r.Opponent] = struct{}{}
		}
	}

	opts := domain.FilterOptions{
		Years:     make([]int, 0, len(years)),
		Teams:     sortedKeys(teams),
		Opponents: sortedKeys(opponents),
	}
	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Ints(opts.Years)
	return opts
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
