package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	api "asiacup/pkg/contracts/api/v1"
)

// filterFlags are the selection flags shared by summary and export. A flag
// that is not given selects every value; a flag given an empty value selects
// nothing.
type filterFlags struct {
	years     []string
	teams     []string
	opponents []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.years, "year", nil, "years to include (repeat or comma separate)")
	cmd.Flags().StringSliceVar(&f.teams, "team", nil, "teams to include")
	cmd.Flags().StringSliceVar(&f.opponents, "opponent", nil, "opponents to include")
}

func (f *filterFlags) request(cmd *cobra.Command) (api.FilterRequest, error) {
	var req api.FilterRequest

	if cmd.Flags().Changed("year") {
		req.Years = make([]int, 0, len(f.years))
		for _, raw := range f.years {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			year, err := strconv.Atoi(raw)
			if err != nil {
				return api.FilterRequest{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --year value %q", raw))
			}
			req.Years = append(req.Years, year)
		}
	}
	if cmd.Flags().Changed("team") {
		req.Teams = nonEmpty(f.teams)
	}
	if cmd.Flags().Changed("opponent") {
		req.Opponents = nonEmpty(f.opponents)
	}
	return req, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
