package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names a field of the match dataset. The string value is the
// CSV header name.
type Column string

const (
	ColumnYear                 Column = "year"
	ColumnTeam                 Column = "team"
	ColumnOpponent             Column = "opponent"
	ColumnGround               Column = "ground"
	ColumnToss                 Column = "toss"
	ColumnSelection            Column = "selection"
	ColumnResult               Column = "result"
	ColumnWinBinary            Column = "win_binary"
	ColumnRunScored            Column = "run_scored"
	ColumnWicketLost           Column = "wicket_lost"
	ColumnWicketTaken          Column = "wicket_taken"
	ColumnFours                Column = "fours"
	ColumnSixes                Column = "sixes"
	ColumnAvgBatStrikeRate     Column = "avg_bat_strike_rate"
	ColumnBattingMargin        Column = "batting_margin"
	ColumnBowlingEffectiveness Column = "bowling_effectiveness"
)

// Columns is the canonical column layout of the dataset.
var Columns = []Column{
	ColumnYear,
	ColumnTeam,
	ColumnOpponent,
	ColumnGround,
	ColumnToss,
	ColumnSelection,
	ColumnResult,
	ColumnWinBinary,
	ColumnRunScored,
	ColumnWicketLost,
	ColumnWicketTaken,
	ColumnFours,
	ColumnSixes,
	ColumnAvgBatStrikeRate,
	ColumnBattingMargin,
	ColumnBowlingEffectiveness,
}

// ParseColumn maps a header cell to a known column. Matching ignores case
// and surrounding whitespace.
func ParseColumn(header string) (Column, bool) {
	name := Column(strings.ToLower(strings.TrimSpace(header)))
	for _, c := range Columns {
		if c == name {
			return c, true
		}
	}
	return "", false
}

// IsMeasure reports whether the column holds a nullable numeric measure.
func (c Column) IsMeasure() bool {
	switch c {
	case ColumnRunScored, ColumnWicketLost, ColumnWicketTaken, ColumnFours, ColumnSixes,
		ColumnAvgBatStrikeRate, ColumnBattingMargin, ColumnBowlingEffectiveness:
		return true
	}
	return false
}

// OptionalFloat is a numeric cell that may be absent. An empty CSV cell and a
// JSON null both decode to an invalid value.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float returns a present OptionalFloat.
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// ParseOptionalFloat parses a CSV cell. Empty cells and the usual spellings of
// a missing value yield an invalid OptionalFloat.
func ParseOptionalFloat(raw string) (OptionalFloat, error) {
	s := strings.TrimSpace(raw)
	if isNullToken(s) {
		return OptionalFloat{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return OptionalFloat{}, err
	}
	if math.IsNaN(v) {
		return OptionalFloat{}, nil
	}
	if math.IsInf(v, 0) {
		return OptionalFloat{}, fmt.Errorf("infinite value %q", raw)
	}
	return Float(v), nil
}

// String formats the value with the shortest representation that parses
// back to the same float64. Missing values format as the empty string.
func (f OptionalFloat) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler
func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// MatchRecord is one team's participation in one Asia Cup match.
//
// String fields use the empty string for "not recorded". Records are never
// modified after the dataset is loaded.
type MatchRecord struct {
	Year      int    `json:"year" validate:"min=1"`
	Team      string `json:"team" validate:"required"`
	Opponent  string `json:"opponent" validate:"required"`
	Ground    string `json:"ground"`
	Toss      string `json:"toss"`
	Selection string `json:"selection" validate:"omitempty,oneof=bat field"`
	Result    string `json:"result"`
	WinBinary int    `json:"win_binary" validate:"oneof=0 1"`

	RunScored            OptionalFloat `json:"run_scored"`
	WicketLost           OptionalFloat `json:"wicket_lost"`
	WicketTaken          OptionalFloat `json:"wicket_taken"`
	Fours                OptionalFloat `json:"fours"`
	Sixes                OptionalFloat `json:"sixes"`
	AvgBatStrikeRate     OptionalFloat `json:"avg_bat_strike_rate"`
	BattingMargin        OptionalFloat `json:"batting_margin"`
	BowlingEffectiveness OptionalFloat `json:"bowling_effectiveness"`
}

// Measure returns the numeric measure stored under col. The second result is
// false when col is not a measure column.
func (m *MatchRecord) Measure(col Column) (OptionalFloat, bool) {
	switch col {
	case ColumnRunScored:
		return m.RunScored, true
	case ColumnWicketLost:
		return m.WicketLost, true
	case ColumnWicketTaken:
		return m.WicketTaken, true
	case ColumnFours:
		return m.Fours, true
	case ColumnSixes:
		return m.Sixes, true
	case ColumnAvgBatStrikeRate:
		return m.AvgBatStrikeRate, true
	case ColumnBattingMargin:
		return m.BattingMargin, true
	case ColumnBowlingEffectiveness:
		return m.BowlingEffectiveness, true
	}
	return OptionalFloat{}, false
}

// Value returns the typed value of col for JSON projection: int for year and
// win_binary, string for categorical fields, float64 for measures. Missing
// values are nil.
func (m *MatchRecord) Value(col Column) any {
	switch col {
	case ColumnYear:
		return m.Year
	case ColumnWinBinary:
		return m.WinBinary
	}
	if col.IsMeasure() {
		v, _ := m.Measure(col)
		if !v.Valid {
			return nil
		}
		return v.Value
	}
	s := m.text(col)
	if s == "" {
		return nil
	}
	return s
}

// Format renders col as a CSV cell.
func (m *MatchRecord) Format(col Column) string {
	switch col {
	case ColumnYear:
		return strconv.Itoa(m.Year)
	case ColumnWinBinary:
		return strconv.Itoa(m.WinBinary)
	}
	if col.IsMeasure() {
		v, _ := m.Measure(col)
		return v.String()
	}
	return m.text(col)
}

// Set parses raw into the field named by col.
func (m *MatchRecord) Set(col Column, raw string) error {
	s := strings.TrimSpace(raw)
	switch col {
	case ColumnYear:
		year, err := parseWholeNumber(s)
		if err != nil {
			return fmt.Errorf("year: %w", err)
		}
		m.Year = year
	case ColumnWinBinary:
		win, err := parseWholeNumber(s)
		if err != nil {
			return fmt.Errorf("win_binary: %w", err)
		}
		m.WinBinary = win
	case ColumnTeam:
		m.Team = nullableText(s)
	case ColumnOpponent:
		m.Opponent = nullableText(s)
	case ColumnGround:
		m.Ground = nullableText(s)
	case ColumnToss:
		m.Toss = nullableText(s)
	case ColumnSelection:
		m.Selection = strings.ToLower(nullableText(s))
	case ColumnResult:
		m.Result = nullableText(s)
	default:
		if !col.IsMeasure() {
			return fmt.Errorf("unknown column %q", col)
		}
		v, err := ParseOptionalFloat(s)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", col, raw)
		}
		m.setMeasure(col, v)
	}
	return nil
}

func (m *MatchRecord) setMeasure(col Column, v OptionalFloat) {
	switch col {
	case ColumnRunScored:
		m.RunScored = v
	case ColumnWicketLost:
		m.WicketLost = v
	case ColumnWicketTaken:
		m.WicketTaken = v
	case ColumnFours:
		m.Fours = v
	case ColumnSixes:
		m.Sixes = v
	case ColumnAvgBatStrikeRate:
		m.AvgBatStrikeRate = v
	case ColumnBattingMargin:
		m.BattingMargin = v
	case ColumnBowlingEffectiveness:
		m.BowlingEffectiveness = v
	}
}

func (m *MatchRecord) text(col Column) string {
	switch col {
	case ColumnTeam:
		return m.Team
	case ColumnOpponent:
		return m.Opponent
	case ColumnGround:
		return m.Ground
	case ColumnToss:
		return m.Toss
	case ColumnSelection:
		return m.Selection
	case ColumnResult:
		return m.Result
	}
	return ""
}

// parseWholeNumber accepts "2023" as well as "2023.0", the form dataframe
// exports use for integer columns that once held a missing value.
func parseWholeNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(f), nil
}

func nullableText(s string) string {
	if isNullToken(s) {
		return ""
	}
	return s
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null", "none":
		return true
	}
	return false
}
