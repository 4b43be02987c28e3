package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asiacup/pkg/contracts"
)

const testDataset = `year,team,opponent,ground,toss,selection,result,win_binary,run_scored,wicket_lost,wicket_taken,fours,sixes,avg_bat_strike_rate,batting_margin,bowling_effectiveness
2018,India,Pakistan,Dubai,Lose,field,Win,1,164.0,2.0,10.0,17.0,4.0,93.15,26.0,6.0
2018,Pakistan,India,Dubai,Win,bat,Lose,0,162.0,10.0,2.0,13.0,2.0,66.12,-26.0,0.53
2023,India,Nepal,Pallekele,Win,bat,Win,1,230.0,3.0,10.0,20.0,5.0,101.2,120.0,4.1
2023,India,Pakistan,Colombo (RPS),Lose,bat,Win,1,356.0,2.0,10.0,32.0,9.0,104.55,228.0,5.0
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asiacup.csv")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o644))
	return path
}

// execute runs the root command and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "asiacup", cmd.Use)

	for _, name := range []string{"serve", "summary", "export"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("data"))
}

func TestRootCommand_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "v"+contracts.Version)
	assert.Contains(t, stdout, "commit:")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "summary", "--format", "yaml", "--data", writeDataset(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSummaryCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "summary", "--format", "json", "--data", writeDataset(t), "--team", "India")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   SummaryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, []string{"India"}, resp.Data.Selection.Teams)
	assert.Equal(t, 3, resp.Data.KPIs.TotalMatches)
	assert.Equal(t, float64(100), resp.Data.KPIs.WinRate)
	require.Len(t, resp.Data.WinRate, 2)
	assert.Equal(t, 2018, resp.Data.WinRate[0].Year)
}

func TestSummaryCommand_Text(t *testing.T) {
	stdout, _, err := execute(t, "summary", "--data", writeDataset(t), "--year", "2018")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Total Matches")
	assert.Contains(t, stdout, "50.00%")
	assert.Contains(t, stdout, "Pakistan")
	assert.Contains(t, stdout, "Win rate by year and team")
}

func TestSummaryCommand_EmptySelection(t *testing.T) {
	stdout, _, err := execute(t, "summary", "--data", writeDataset(t), "--team=")
	require.NoError(t, err)

	assert.Contains(t, stdout, "0.00%")
	assert.Contains(t, stdout, "No matches for the selected filters.")
}

func TestSummaryCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "bad year", args: []string{"summary", "--data", "unused.csv", "--year", "twenty"}, wantCode: ExitCommandError},
		{name: "missing dataset", args: []string{"summary", "--data", filepath.Join(t.TempDir(), "missing.csv")}, wantCode: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
		})
	}
}

func TestExportCommand(t *testing.T) {
	out := t.TempDir()
	stdout, _, err := execute(t, "export", "--format", "json", "--data", writeDataset(t), "--opponent", "Pakistan", "--out", out)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Kind string `json:"kind"`
			Path string `json:"path"`
			Rows int    `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 3)

	rows := map[string]int{}
	for _, f := range resp.Data {
		rows[f.Kind] = f.Rows
		assert.FileExists(t, f.Path)
		assert.Equal(t, out, filepath.Dir(f.Path))
	}
	assert.Equal(t, 2, rows["filtered_csv"])
	assert.Equal(t, 4, rows["full_csv"])
	assert.Equal(t, 2, rows["filtered_xlsx"])
}
