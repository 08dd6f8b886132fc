package models

// Tactic represents a rider's canonical tactical style
type Tactic string

const (
	TacticEscape    Tactic = "escape"
	TacticChaseJump Tactic = "chase-jump"
	TacticCloser    Tactic = "closer"
	TacticMarker    Tactic = "marker"
)

// ClassTier represents the competitive tier of a race or rider
type ClassTier string

const (
	TierRookie ClassTier = "rookie"
	TierFirst  ClassTier = "first"
	TierElite  ClassTier = "elite"
)

// Rider represents a single competitor within one race
type Rider struct {
	CarNumber  int      `db:"car_number" json:"car_number" validate:"required,min=1,max=9"`
	Name       string   `db:"name" json:"name"`
	BaseScore  float64  `db:"base_score" json:"base_score"` // ability rating, 0 means unknown
	Tactics    []Tactic `db:"tactics" json:"tactics"`
	HomeRegion string   `db:"home_region" json:"home_region"`
	Tier       ClassTier `db:"tier" json:"tier"`

	// Recent-form counts from the race card
	EscapeCount    int `db:"escape_count" json:"escape_count"`
	ChaseJumpCount int `db:"chase_jump_count" json:"chase_jump_count"`
	CloserCount    int `db:"closer_count" json:"closer_count"`
	MarkerCount    int `db:"marker_count" json:"marker_count"`
	BackCount      int `db:"back_count" json:"back_count"`

	// Race-wide flags, computed once per race from the counts above
	TopEscape    bool `db:"top_escape" json:"top_escape"`
	TopChaseJump bool `db:"top_chase_jump" json:"top_chase_jump"`
	TopCloser    bool `db:"top_closer" json:"top_closer"`
}

// DefaultBaseScore is used when the race card carries no ability rating.
const DefaultBaseScore = 80.0

// EffectiveBase returns the base ability rating, defaulting when missing
func (r *Rider) EffectiveBase() float64 {
	if r.BaseScore <= 0 {
		return DefaultBaseScore
	}
	return r.BaseScore
}

// HasTactic reports whether the rider carries the given tactic tag
func (r *Rider) HasTactic(t Tactic) bool {
	for _, tag := range r.Tactics {
		if tag == t {
			return true
		}
	}
	return false
}

// TacticCount returns the recent-form count for a tactic
func (r *Rider) TacticCount(t Tactic) int {
	switch t {
	case TacticEscape:
		return r.EscapeCount
	case TacticChaseJump:
		return r.ChaseJumpCount
	case TacticCloser:
		return r.CloserCount
	case TacticMarker:
		return r.MarkerCount
	}
	return 0
}

// ScoredRider is a rider annotated with the scoring engine's output.
// Tags are append-only and record every bonus applied.
type ScoredRider struct {
	Rider
	Score float64  `json:"score"`
	Tags  []string `json:"tags"`
}

// Bonus returns the cumulative bonus over the base rating
func (s *ScoredRider) Bonus() float64 {
	return s.Score - s.EffectiveBase()
}

// AddBonus applies an additive score adjustment and records its tag
func (s *ScoredRider) AddBonus(amount float64, tag string) {
	s.Score += amount
	s.Tags = append(s.Tags, tag)
}
