package classify

// Config holds the classifier thresholds. Gap thresholds compare raw
// score differences; share thresholds compare percentages of the race
// score total.
type Config struct {
	ShortStraight float64 `mapstructure:"short_straight"` // metres

	// Line-trust mode
	FixLongestLine int     `mapstructure:"fix_longest_line"`
	FixGap         float64 `mapstructure:"fix_gap"`
	LeadGapElite   float64 `mapstructure:"lead_gap_elite"`
	LeadGapOther   float64 `mapstructure:"lead_gap_other"`
	BreakLineCount int     `mapstructure:"break_line_count"`
	BreakGap       float64 `mapstructure:"break_gap"`

	// Strict sub-flag
	StrictEliteLines    int     `mapstructure:"strict_elite_lines"`
	StrictEliteTrackLen float64 `mapstructure:"strict_elite_track_len"`
	StrictEliteGap      float64 `mapstructure:"strict_elite_gap"`
	StrictFirstLines    int     `mapstructure:"strict_first_lines"`
	StrictFirstStraight float64 `mapstructure:"strict_first_straight"`
	StrictFirstGap      float64 `mapstructure:"strict_first_gap"`
	StrictRookieGap     float64 `mapstructure:"strict_rookie_gap"`

	// Score-gap fallback
	NormalizeAbove  float64 `mapstructure:"normalize_above"` // raw scores above this are ability ratings
	SkipShare       float64 `mapstructure:"skip_share"`
	TeppanGap       float64 `mapstructure:"teppan_gap"`
	TeppanShare     float64 `mapstructure:"teppan_share"`
	TwoStrongTop    float64 `mapstructure:"two_strong_top"`
	TwoStrongSecond float64 `mapstructure:"two_strong_second"`
	ChaosGap        float64 `mapstructure:"chaos_gap"`

	// Reversed-pairing trigger, consumed by the ticket generator
	ReverseGap          float64 `mapstructure:"reverse_gap"`
	ReverseGapLongTrack float64 `mapstructure:"reverse_gap_long_track"`
}

// DefaultConfig returns the tuned production thresholds
func DefaultConfig() Config {
	return Config{
		ShortStraight: 50.0,

		FixLongestLine: 4,
		FixGap:         10.0,
		LeadGapElite:   10.0,
		LeadGapOther:   15.0,
		BreakLineCount: 4,
		BreakGap:       20.0,

		StrictEliteLines:    3,
		StrictEliteTrackLen: 335.0,
		StrictEliteGap:      5.0,
		StrictFirstLines:    3,
		StrictFirstStraight: 50.0,
		StrictFirstGap:      10.0,
		StrictRookieGap:     10.0,

		NormalizeAbove:  50.0,
		SkipShare:       12.0,
		TeppanGap:       10.0,
		TeppanShare:     30.0,
		TwoStrongTop:    25.0,
		TwoStrongSecond: 20.0,
		ChaosGap:        5.0,

		ReverseGap:          4.0,
		ReverseGapLongTrack: 8.0,
	}
}
