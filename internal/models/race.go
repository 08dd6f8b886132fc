package models

import (
	"fmt"
	"strings"
)

// Line is an ordered group of riders cooperating tactically. The first
// member leads, the rest follow in marking order.
type Line struct {
	Members []int `json:"members"`
}

// Length returns the number of riders in the line
func (l Line) Length() int {
	return len(l.Members)
}

// PositionOf returns the 1-based position of a car within the line, or 0
func (l Line) PositionOf(car int) int {
	for i, m := range l.Members {
		if m == car {
			return i + 1
		}
	}
	return 0
}

// Leader returns the car number at the head of the line, or 0 when empty
func (l Line) Leader() int {
	if len(l.Members) == 0 {
		return 0
	}
	return l.Members[0]
}

// ParseLineComposition parses a space-separated line composition string
// such as "123 45 67" into ordered lines. Non-digit characters are
// ignored; empty groups are dropped. Missing or blank input yields nil,
// which downstream scoring treats as "no line data".
func ParseLineComposition(s string) []Line {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	lines := make([]Line, 0, len(fields))
	for _, f := range fields {
		var members []int
		for _, ch := range f {
			if ch >= '1' && ch <= '9' {
				members = append(members, int(ch-'0'))
			}
		}
		if len(members) > 0 {
			lines = append(lines, Line{Members: members})
		}
	}
	return lines
}

// Race represents one race on a day's card at a velodrome
type Race struct {
	Place      string    `db:"place" json:"place" validate:"required"`
	Date       string    `db:"date" json:"date" validate:"required"` // YYYY-MM-DD
	Number     int       `db:"race_number" json:"race_number" validate:"required,min=1,max=12"`
	Tier       ClassTier `db:"tier" json:"tier"`
	Region     string    `db:"region" json:"region"` // prefecture the track belongs to

	// Track geometry
	StraightLength float64 `db:"straight_length" json:"straight_length"` // metres
	BankingAngle   float64 `db:"banking_angle" json:"banking_angle"`     // degrees
	TrackLength    int     `db:"track_length" json:"track_length"`       // metres per lap

	Riders          []Rider `json:"riders"`
	LineComposition string  `db:"line_composition" json:"line_composition"`
	LongShots       []int   `json:"long_shots,omitempty"` // optional override targets
}

// Key returns the canonical race identifier "place_date_NR"
func (r *Race) Key() string {
	return RaceKey(r.Place, r.Date, r.Number)
}

// RaceKey builds the canonical race identifier used across persistence
func RaceKey(place, date string, number int) string {
	return fmt.Sprintf("%s_%s_%dR", place, date, number)
}

// Lines returns the parsed line composition
func (r *Race) Lines() []Line {
	return ParseLineComposition(r.LineComposition)
}

// LineOf returns the line containing the given car, or an empty line
func (r *Race) LineOf(car int) Line {
	for _, l := range r.Lines() {
		if l.PositionOf(car) > 0 {
			return l
		}
	}
	return Line{}
}

// IsShortStraight reports whether the finishing straight favours escape
// riders; the threshold is the conventional 50m split.
func (r *Race) IsShortStraight(threshold float64) bool {
	return r.StraightLength > 0 && r.StraightLength < threshold
}

// ComputeTopTacticFlags sets the race-wide TopEscape/TopChaseJump/TopCloser
// flags on every rider by comparing per-tactic counts across the field.
// A flag is only set when the maximum count is positive.
func (r *Race) ComputeTopTacticFlags() {
	maxEscape, maxChase, maxCloser := 0, 0, 0
	for _, rd := range r.Riders {
		if rd.EscapeCount > maxEscape {
			maxEscape = rd.EscapeCount
		}
		if rd.ChaseJumpCount > maxChase {
			maxChase = rd.ChaseJumpCount
		}
		if rd.CloserCount > maxCloser {
			maxCloser = rd.CloserCount
		}
	}
	for i := range r.Riders {
		rd := &r.Riders[i]
		rd.TopEscape = maxEscape > 0 && rd.EscapeCount == maxEscape
		rd.TopChaseJump = maxChase > 0 && rd.ChaseJumpCount == maxChase
		rd.TopCloser = maxCloser > 0 && rd.CloserCount == maxCloser
	}
}
