package analytics

import (
	"asiacup/pkg/contracts/domain"
)

// Filter returns the records whose year, team and opponent are all in the
// selection. Values within a dimension are OR-combined, dimensions are
// AND-combined, and an empty dimension matches nothing. Source order is
// preserved and the input slice is never modified.
func Filter(records []domain.MatchRecord, sel domain.Selection) []domain.MatchRecord {
	out := make([]domain.MatchRecord, 0)
	if len(sel.Years) == 0 || len(sel.Teams) == 0 || len(sel.Opponents) == 0 {
		return out
	}

	m := newMatcher(sel)
	for i := range records {
		if m.match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// matcher holds a selection as sets, one per dimension.
type matcher struct {
	years     map[int]struct{}
	teams     map[string]struct{}
	opponents map[string]struct{}
}

func newMatcher(sel domain.Selection) matcher {
	years := make(map[int]struct{}, len(sel.Years))
	for _, y := range sel.Years {
		years[y] = struct{}{}
	}
	return matcher{
		years:     years,
		teams:     toSet(sel.Teams),
		opponents: toSet(sel.Opponents),
	}
}

func (m matcher) match(r *domain.MatchRecord) bool {
	if _, ok := m.years[r.Year]; !ok {
		return false
	}
	if _, ok := m.teams[r.Team]; !ok {
		return false
	}
	_, ok := m.opponents[r.Opponent]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
