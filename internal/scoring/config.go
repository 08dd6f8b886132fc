package scoring

// Config holds every tunable constant of the scoring engine. The tables
// were previously implicit in the heuristics; injecting them keeps the
// engine free of hidden global state.
type Config struct {
	// Rule 2: residency
	ResidencyBonus float64 `mapstructure:"residency_bonus"`

	// Rule 3: tactic tag bonus for escape and chase-jump
	TacticBonus float64 `mapstructure:"tactic_bonus"`

	// Rule 4: geometry thresholds and bonus
	ShortStraight float64 `mapstructure:"short_straight"` // metres
	LongStraight  float64 `mapstructure:"long_straight"`  // metres
	ShallowBank   float64 `mapstructure:"shallow_bank"`   // degrees
	SteepBank     float64 `mapstructure:"steep_bank"`     // degrees
	GeometryBonus float64 `mapstructure:"geometry_bonus"`

	// Rule 5: line bonuses
	ThirdPosBonusTop    float64 `mapstructure:"third_pos_bonus_top"`
	ThirdPosBonusOther  float64 `mapstructure:"third_pos_bonus_other"`
	LongestLine4Bonus   float64 `mapstructure:"longest_line4_bonus"`
	LongestLine3Front   float64 `mapstructure:"longest_line3_front"`
	LongestLine3Third   float64 `mapstructure:"longest_line3_third"`
	// Per-track adjustment applied on top of the unique-longest-line
	// bonuses, keyed by place name. Range observed in practice: -1.0..+0.5.
	LineBonusAdjust map[string]float64 `mapstructure:"line_bonus_adjust"`

	// Rule 6: class-tier lift for the single highest-base rider
	RookieLift          float64 `mapstructure:"rookie_lift"`
	FirstEscapeLift     float64 `mapstructure:"first_escape_lift"`
	FirstChaseJumpLift  float64 `mapstructure:"first_chase_jump_lift"`
	EliteEscapeLift     float64 `mapstructure:"elite_escape_lift"`
	EliteCloserLift     float64 `mapstructure:"elite_closer_lift"`

	// Rule 7: dominance detection and overlay
	DominanceMinCount int     `mapstructure:"dominance_min_count"`
	DominanceMargin   int     `mapstructure:"dominance_margin"`
	DominanceRatio    float64 `mapstructure:"dominance_ratio"`
	ChaseJumpDomBonus float64 `mapstructure:"chase_jump_dom_bonus"`
	EscapeDomShort    float64 `mapstructure:"escape_dom_short"`
	EscapeDomOther    float64 `mapstructure:"escape_dom_other"`
	CloserDomBonus    float64 `mapstructure:"closer_dom_bonus"`
	BackLeaderShort   float64 `mapstructure:"back_leader_short"`
	BackLeaderLong    float64 `mapstructure:"back_leader_long"`
	BackLeaderNeutral float64 `mapstructure:"back_leader_neutral"`

	// Rule 8: contested escape
	ContestedEscapeCount   int     `mapstructure:"contested_escape_count"` // riders needed
	ContestedEscapeForm    int     `mapstructure:"contested_escape_form"`  // per-rider escape count
	ContestedCloserPenalty float64 `mapstructure:"contested_closer_penalty"`
	ContestedEscapeBonus   float64 `mapstructure:"contested_escape_bonus"`
}

// DefaultConfig returns the tuned production constants
func DefaultConfig() Config {
	return Config{
		ResidencyBonus: 3.0,
		TacticBonus:    2.0,

		ShortStraight: 50.0,
		LongStraight:  58.0,
		ShallowBank:   30.0,
		SteepBank:     33.0,
		GeometryBonus: 2.0,

		ThirdPosBonusTop:   2.0,
		ThirdPosBonusOther: 1.0,
		LongestLine4Bonus:  2.5,
		LongestLine3Front:  1.5,
		LongestLine3Third:  0.5,
		LineBonusAdjust:    map[string]float64{},

		RookieLift:         4.0,
		FirstEscapeLift:    2.5,
		FirstChaseJumpLift: 2.0,
		EliteEscapeLift:    1.5,
		EliteCloserLift:    0.5,

		DominanceMinCount: 5,
		DominanceMargin:   5,
		DominanceRatio:    3.0,
		ChaseJumpDomBonus: 6.0,
		EscapeDomShort:    5.0,
		EscapeDomOther:    3.0,
		CloserDomBonus:    2.0,
		BackLeaderShort:   3.0,
		BackLeaderLong:    1.0,
		BackLeaderNeutral: 2.0,

		ContestedEscapeCount:   3,
		ContestedEscapeForm:    3,
		ContestedCloserPenalty: 1.0,
		ContestedEscapeBonus:   2.0,
	}
}
