package http

import (
	"net/url"
	"strconv"
	"strings"

	apierrors "asiacup/internal/errors"
	api "asiacup/pkg/contracts/api/v1"
)

// Query parameter names. Each accepts a singular and a plural spelling.
var (
	yearParams     = []string{"year", "years"}
	teamParams     = []string{"team", "teams"}
	opponentParams = []string{"opponent", "opponents"}
)

// parseFilterQuery reads a FilterRequest from the query string. Years may be
// repeated (?year=2018&year=2023) or comma separated (?year=2018,2023). Team
// and opponent names are only ever repeated (?team=India&team=Nepal) and are
// taken verbatim apart from surrounding spaces, so a name may contain a comma.
// An absent parameter leaves the dimension unspecified; a present but empty
// one (?team=) selects nothing.
func parseFilterQuery(q url.Values) (api.FilterRequest, error) {
	var req api.FilterRequest

	if raw, ok := lookup(q, yearParams, true); ok {
		req.Years = make([]int, 0, len(raw))
		for _, v := range raw {
			year, err := strconv.Atoi(v)
			if err != nil {
				return api.FilterRequest{}, apierrors.InvalidParameter("year", v)
			}
			req.Years = append(req.Years, year)
		}
	}
	if raw, ok := lookup(q, teamParams, false); ok {
		req.Teams = raw
	}
	if raw, ok := lookup(q, opponentParams, false); ok {
		req.Opponents = raw
	}
	return req, nil
}

// lookup collects the trimmed, non-empty values of every spelling in names.
// split additionally breaks each value on commas.
func lookup(q url.Values, names []string, split bool) ([]string, bool) {
	var (
		found  bool
		values = []string{}
	)
	for _, name := range names {
		raw, ok := q[name]
		if !ok {
			continue
		}
		found = true
		for _, v := range raw {
			parts := []string{v}
			if split {
				parts = strings.Split(v, ",")
			}
			for _, part := range parts {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, part)
				}
			}
		}
	}
	return values, found
}
