package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"asiacup/internal/services"
	"asiacup/pkg/contracts/domain"
)

// SummaryResult is the JSON payload of the summary command.
type SummaryResult struct {
	Selection domain.Selection      `json:"selection"`
	KPIs      domain.KPIs           `json:"kpis"`
	WinRate   []domain.WinRatePoint `json:"win_rate"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs and win rate by year and team",
		Long: `Print the headline metrics and the win rate per (year, team) group for
the selected matches.

  asiacup summary --year 2022,2023 --team India`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, rootOpts, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runSummary(cmd *cobra.Command, opts *RootOptions, flags *filterFlags) error {
	req, err := flags.request(cmd)
	if err != nil {
		return err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.commandLogger(cfg.Logging, cmd.ErrOrStderr())

	ctx := cmd.Context()
	service, _, err := openService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	view, err := service.View(ctx, req, services.SourceCLI)
	if err != nil {
		return serviceError(err)
	}

	out := opts.formatter(cmd)
	result := SummaryResult{Selection: view.Selection, KPIs: view.KPIs, WinRate: view.WinRate}
	if out.JSON() {
		return out.Success(result)
	}
	printSummary(out, result)
	return nil
}

func printSummary(out *OutputFormatter, result SummaryResult) {
	out.Table("", []string{"Metric", "Value"}, [][]string{
		{"Total Matches", strconv.Itoa(result.KPIs.TotalMatches)},
		{"Win Rate", formatPercent(result.KPIs.WinRate)},
		{"Toss Win Rate", formatPercent(result.KPIs.TossWinRate)},
	})

	if len(result.WinRate) == 0 {
		fmt.Fprintln(out.Writer, "No matches for the selected filters.")
		return
	}

	rows := make([][]string, len(result.WinRate))
	for i, p := range result.WinRate {
		rows[i] = []string{strconv.Itoa(p.Year), p.Team, strconv.Itoa(p.Matches), formatPercent(p.WinRate * 100)}
	}
	out.Table("Win rate by year and team", []string{"Year", "Team", "Matches", "Win Rate"}, rows)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
